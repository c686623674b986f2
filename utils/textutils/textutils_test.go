// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLowerASCIIFolding(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Avenida Brasil  ", "avenida brasil"},
		{"Champs-Élysées", "champs-elysees"},
		{"São Paulo", "sao paulo"},
		{"MONTEVIDEO", "montevideo"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LowerASCIIFolding(tt.in))
	}
}

func TestCleanRecognizedText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses whitespace",
			in:   "Seoul   Station \t  Exit 4",
			want: "Seoul Station Exit 4",
		},
		{
			name: "strips ocr noise symbols",
			in:   "Gangnam@@ Station##",
			want: "Gangnam Station",
		},
		{
			name: "separates hangul and latin",
			in:   "서울Station",
			want: "서울 Station",
		},
		{
			name: "separates digits and words",
			in:   "강남대로396",
			want: "강남대로 396",
		},
		{
			name: "capitalizes latin lines",
			in:   "tower bridge",
			want: "Tower bridge",
		},
		{
			name: "drops blank lines but keeps structure",
			in:   "First Ave\n\n  \nSecond St",
			want: "First Ave\nSecond St",
		},
		{
			name: "empty input",
			in:   "   ",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanRecognizedText(tt.in))
		})
	}
}
