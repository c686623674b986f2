// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package estimate

import (
	"regexp"
	"strings"
)

// LangInfo describes the likely language of a piece of recognized text and
// the countries where a place name in that language is most plausible.
type LangInfo struct {
	Code       string   `json:"code"`
	Name       string   `json:"name"`
	Countries  []string `json:"countries"`
	Confidence float64  `json:"confidence"`
}

var (
	reHangul        = regexp.MustCompile(`[가-힣]`)
	reCJK           = regexp.MustCompile(`[\x{4E00}-\x{9FFF}]`)
	reCyrillic      = regexp.MustCompile(`[\x{0400}-\x{04FF}]`)
	reArabic        = regexp.MustCompile(`[\x{0600}-\x{06FF}]`)
	reFrenchAcc     = regexp.MustCompile(`[àâçéèêëîïôùûü]`)
	reGermanAcc     = regexp.MustCompile(`[äöüß]`)
	reSpanishAcc    = regexp.MustCompile(`[áéíóúñ¿¡]`)
	reItalianAcc    = regexp.MustCompile(`[àèéìòù]`)
	rePortugueseAcc = regexp.MustCompile(`[ãõáéíóúâêôç]`)
)

// latinLanguages are checked in order once accented Latin text is seen. A
// match needs either an accent hit or a stopword hit.
var latinLanguages = []struct {
	code, name string
	accents    *regexp.Regexp
	stopwords  []string
	countries  []string
}{
	{"fra", "French", reFrenchAcc,
		[]string{" rue ", " de la ", " le ", " la ", " les ", " avenue ", " place "},
		[]string{"fr", "be", "ch", "ca", "lu", "mc"}},
	{"deu", "German", reGermanAcc,
		[]string{" straße ", " strasse ", " der ", " die ", " das ", " platz ", " gasse "},
		[]string{"de", "at", "ch", "li"}},
	{"spa", "Spanish", reSpanishAcc,
		[]string{" calle ", " avenida ", " el ", " la ", " los ", " plaza ", " paseo "},
		[]string{"es", "mx", "ar", "co", "cl", "pe"}},
	{"ita", "Italian", reItalianAcc,
		[]string{" via ", " piazza ", " corso ", " il ", " la ", " viale "},
		[]string{"it", "ch", "sm", "va"}},
	{"por", "Portuguese", rePortugueseAcc,
		[]string{" rua ", " avenida ", " praça ", " praca ", " largo ", " travessa "},
		[]string{"pt", "br", "ao", "mz"}},
}

// DetectLanguage guesses the language of recognized text from its script and
// a few high-frequency words. Korean is checked first: the product grew up on
// Korean street photos and a single Hangul syllable is decisive there, while
// every other script only lowers confidence to 0.9.
func DetectLanguage(text string) LangInfo {
	if reHangul.MatchString(text) {
		return LangInfo{Code: "kor", Name: "Korean", Countries: []string{"kr"}, Confidence: 1.0}
	}

	if reCJK.MatchString(text) {
		return LangInfo{Code: "cmn", Name: "Chinese", Countries: []string{"cn", "tw", "hk"}, Confidence: 0.9}
	}

	lower := " " + strings.ToLower(text) + " "
	for _, lang := range latinLanguages {
		if lang.accents.MatchString(lower) || containsAny(lower, lang.stopwords) {
			return LangInfo{Code: lang.code, Name: lang.name, Countries: lang.countries, Confidence: 0.9}
		}
	}

	if reCyrillic.MatchString(text) {
		return LangInfo{Code: "rus", Name: "Russian", Countries: []string{"ru", "by", "kz", "kg"}, Confidence: 0.9}
	}

	if reArabic.MatchString(text) {
		return LangInfo{
			Code: "ara", Name: "Arabic",
			Countries:  []string{"sa", "ae", "eg", "iq", "jo", "kw", "lb", "ma", "om", "qa", "sy", "tn", "ye"},
			Confidence: 0.9,
		}
	}

	return LangInfo{Code: "eng", Name: "English", Countries: []string{"us", "gb", "ca", "au", "nz", "ie"}, Confidence: 0.7}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}

// countryNames maps the trailing country segment of a geocoded display name
// to its ISO code, for results whose address details omit the country code.
var countryNames = map[string]string{
	"south korea":       "kr",
	"대한민국":              "kr",
	"republic of korea": "kr",
	"china":             "cn",
	"中国":                "cn",
	"taiwan":            "tw",
	"japan":             "jp",
	"france":            "fr",
	"germany":           "de",
	"deutschland":       "de",
	"spain":             "es",
	"españa":            "es",
	"italy":             "it",
	"italia":            "it",
	"portugal":          "pt",
	"brazil":            "br",
	"brasil":            "br",
	"russia":            "ru",
	"united states":     "us",
	"united kingdom":    "gb",
	"canada":            "ca",
	"australia":         "au",
	"new zealand":       "nz",
	"ireland":           "ie",
	"mexico":            "mx",
	"méxico":            "mx",
	"argentina":         "ar",
	"switzerland":       "ch",
	"austria":           "at",
	"belgium":           "be",
	"netherlands":       "nl",
}

// countryFromDisplayName extracts an ISO country code from the last
// comma-separated segment of a display name. Returns "" when unknown.
func countryFromDisplayName(displayName string) string {
	parts := strings.Split(displayName, ",")
	if len(parts) == 0 {
		return ""
	}

	last := strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))

	return countryNames[last]
}
