// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantCode      string
		wantCountries []string
		wantConf      float64
	}{
		{
			name:          "hangul",
			text:          "강남역 2번 출구",
			wantCode:      "kor",
			wantCountries: []string{"kr"},
			wantConf:      1.0,
		},
		{
			name:          "korean wins over mixed latin",
			text:          "서울 Station",
			wantCode:      "kor",
			wantCountries: []string{"kr"},
			wantConf:      1.0,
		},
		{
			name:          "chinese ideographs",
			text:          "北京市朝阳区",
			wantCode:      "cmn",
			wantCountries: []string{"cn", "tw", "hk"},
			wantConf:      0.9,
		},
		{
			name:          "french stopwords",
			text:          "rue de la Paix",
			wantCode:      "fra",
			wantCountries: []string{"fr", "be", "ch", "ca", "lu", "mc"},
			wantConf:      0.9,
		},
		{
			name:          "german accents",
			text:          "Königstraße",
			wantCode:      "deu",
			wantCountries: []string{"de", "at", "ch", "li"},
			wantConf:      0.9,
		},
		{
			name:          "spanish accents",
			text:          "Avenida Constitución",
			wantCode:      "spa",
			wantCountries: []string{"es", "mx", "ar", "co", "cl", "pe"},
			wantConf:      0.9,
		},
		{
			name:          "shared stopword resolves to first language in cascade",
			text:          "Avenida de la Constitucion",
			wantCode:      "fra",
			wantCountries: []string{"fr", "be", "ch", "ca", "lu", "mc"},
			wantConf:      0.9,
		},
		{
			name:          "cyrillic",
			text:          "Красная площадь",
			wantCode:      "rus",
			wantCountries: []string{"ru", "by", "kz", "kg"},
			wantConf:      0.9,
		},
		{
			name:          "arabic",
			text:          "شارع الملك فهد",
			wantCode:      "ara",
			wantCountries: []string{"sa", "ae", "eg", "iq", "jo", "kw", "lb", "ma", "om", "qa", "sy", "tn", "ye"},
			wantConf:      0.9,
		},
		{
			name:          "plain english default",
			text:          "Oxford Circus",
			wantCode:      "eng",
			wantCountries: []string{"us", "gb", "ca", "au", "nz", "ie"},
			wantConf:      0.7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectLanguage(tt.text)

			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantCountries, got.Countries)
			assert.InDelta(t, tt.wantConf, got.Confidence, 1e-9)
		})
	}
}

func TestCountryFromDisplayName(t *testing.T) {
	assert.Equal(t, "kr", countryFromDisplayName("강남역, 강남구, 서울, 대한민국"))
	assert.Equal(t, "fr", countryFromDisplayName("Tour Eiffel, Paris, France"))
	assert.Equal(t, "", countryFromDisplayName("Somewhere, Atlantis"))
	assert.Equal(t, "", countryFromDisplayName(""))
}
