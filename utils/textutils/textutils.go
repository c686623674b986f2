// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils normalizes recognized text before it is matched or geocoded.
package textutils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LowerASCIIFolding normalizes a string by removing accents, lowercasing, and trimming spaces.
func LowerASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToLower(s)),
	)

	return s
}

var (
	reMultiSpace = regexp.MustCompile(`\s+`)
	// Characters worth keeping in OCR output: letters and digits in any
	// script, plus separators that carry address meaning.
	reNoise = regexp.MustCompile(`[^\p{L}\p{N}\s\-.,()]`)

	reHangulThenLatin = regexp.MustCompile(`([\x{AC00}-\x{D7A3}])([A-Za-z])`)
	reLatinThenHangul = regexp.MustCompile(`([A-Za-z])([\x{AC00}-\x{D7A3}])`)
	reDigitThenWord   = regexp.MustCompile(`(\d)([A-Za-z\x{AC00}-\x{D7A3}])`)
	reWordThenDigit   = regexp.MustCompile(`([A-Za-z\x{AC00}-\x{D7A3}])(\d)`)
)

// CleanRecognizedText repairs common OCR artifacts: stray symbols, missing
// word boundaries between scripts, and collapsed or duplicated whitespace.
// Line structure is preserved so callers can still split on newlines.
func CleanRecognizedText(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		line = reNoise.ReplaceAllString(line, " ")
		line = reHangulThenLatin.ReplaceAllString(line, "$1 $2")
		line = reLatinThenHangul.ReplaceAllString(line, "$1 $2")
		line = reDigitThenWord.ReplaceAllString(line, "$1 $2")
		line = reWordThenDigit.ReplaceAllString(line, "$1 $2")
		line = strings.TrimSpace(reMultiSpace.ReplaceAllString(line, " "))

		if line == "" {
			continue
		}

		// Latin-only lines starting lowercase are usually truncated place
		// names; capitalize so the place-name heuristics can see them.
		r := []rune(line)
		if unicode.IsLower(r[0]) && !containsHangul(line) {
			r[0] = unicode.ToUpper(r[0])
			line = string(r)
		}

		cleaned = append(cleaned, line)
	}

	return strings.Join(cleaned, "\n")
}

func containsHangul(s string) bool {
	for _, r := range s {
		if r >= 0xAC00 && r <= 0xD7A3 {
			return true
		}
	}

	return false
}
