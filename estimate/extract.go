// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package estimate

import (
	"context"
	"log"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/geolens/geolens/utils/textutils"
)

const maxCandidates = 8

// Extractor collects location candidates from a photo. Each capability is
// optional: a nil collaborator simply skips that lane, and a failing one is
// logged and ignored so a broken OCR install never blocks the vision lanes.
type Extractor struct {
	Recognizer TextRecognizer
	Detector   ObjectDetector
	Classifier ImageClassifier
	Analyzer   CompositionAnalyzer
}

// strongPlacePatterns accept strings that are almost certainly place names:
// Korean administrative and landmark suffixes, English street/landmark
// forms, and lot numbers.
var strongPlacePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[가-힣]+(시|도|군|구|동|리|로|길|가|면|읍)$`),
	regexp.MustCompile(`^[가-힣]+(궁|사|원|관|타워|빌딩|센터|공원|광장|다리|역|공항|박물관|미술관|성|문)$`),
	regexp.MustCompile(`(?i)^[A-Z][a-z]+( [A-Z][a-z]+)* ?(Street|Avenue|Road|Boulevard|Park|Tower|Building|Palace|Temple|Church|Bridge|Station|Airport|Square|Market)$`),
	regexp.MustCompile(`\d+번지|\d+호`),
}

// weakPlacePatterns accept strings that merely could be place names, like
// any short Hangul run or a lone capitalized word.
var weakPlacePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[가-힣]{2,10}$`),
	regexp.MustCompile(`^[A-Z][a-z]{2,}$`),
}

// exclusionPatterns reject strings OCR likes to produce that never name a
// place: bare numbers, short uppercase runs (sign codes), and function words.
var exclusionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[\d\s\-.,]+$`),
	regexp.MustCompile(`^[A-Z]{1,2}$`),
	regexp.MustCompile(`(?i)^(the|and|for|with|from|this|that|open|close|closed|sale|menu|stop|exit|push|pull)$`),
	regexp.MustCompile(`^(이|그|저|것|수|때|및|등|약)$`),
	regexp.MustCompile(`^(시|도|군|구|동|리|로|길)$`),
}

var placeKeywords = []string{
	"역", "공원", "시장", "학교", "병원", "은행", "호텔", "식당",
	"station", "park", "market", "school", "hospital", "hotel", "museum",
}

// placeObjects maps detector labels that anchor a photo to a kind of place.
var placeObjects = map[string]bool{
	"traffic light": true,
	"stop sign":     true,
	"street sign":   true,
	"bus":           true,
	"train":         true,
	"bench":         true,
	"fire hydrant":  true,
	"parking meter": true,
	"bicycle":       true,
	"boat":          true,
	"clock":         true,
}

// placeCategories are classifier label substrings that describe a scene type
// worth geocoding.
var placeCategories = []string{
	"palace", "castle", "monastery", "church", "mosque", "temple",
	"bridge", "pier", "dock", "fountain", "lighthouse", "obelisk",
	"museum", "library", "restaurant", "cinema", "stadium",
	"street", "plaza", "promenade", "boathouse", "station",
}

// landmarkKeywords trigger the high-confidence landmark post-pass when they
// appear inside an already-extracted text candidate.
var landmarkKeywords = []string{
	"경복궁", "남산타워", "롯데타워", "한강", "광화문", "동대문", "명동", "홍대", "강남역",
	"tower", "palace", "temple", "bridge", "cathedral", "pagoda", "shrine",
}

// Extract runs the text, vision, and composition lanes concurrently and
// merges their candidates, highest confidence first, capped at 8. Lane
// failures degrade to an empty lane rather than failing the whole pass.
func (e *Extractor) Extract(ctx context.Context, image []byte) []Candidate {
	var (
		wg                                sync.WaitGroup
		textCands, visionCands, compCands []Candidate
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		textCands = e.textLane(ctx, image)
	}()
	go func() {
		defer wg.Done()
		visionCands = e.visionLane(ctx, image)
	}()
	go func() {
		defer wg.Done()
		compCands = e.compositionLane(image)
	}()

	wg.Wait()

	candidates := make([]Candidate, 0, len(textCands)+len(visionCands)+len(compCands))
	candidates = append(candidates, textCands...)
	candidates = append(candidates, visionCands...)
	candidates = append(candidates, compCands...)
	candidates = append(candidates, landmarkPass(textCands)...)

	fillLanguageHints(candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	return candidates
}

func (e *Extractor) textLane(ctx context.Context, image []byte) []Candidate {
	if e.Recognizer == nil {
		return nil
	}

	raw, err := e.Recognizer.RecognizeText(ctx, image)
	if err != nil {
		log.Printf("text recognition failed: %v", err)

		return nil
	}

	text := textutils.CleanRecognizedText(raw)
	if text == "" {
		return nil
	}

	lang := DetectLanguage(text)

	var candidates []Candidate

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len([]rune(line)) < 2 || !lineQualifies(line) {
			continue
		}

		n := len([]rune(line))
		if n < 3 || n > 40 || excluded(line) {
			continue
		}

		confidence, source := 0.3, "ocr"
		if isPlaceName(line) {
			confidence, source = 0.85, "ocr-place"
		}

		candidates = append(candidates, Candidate{
			Query:        line,
			Kind:         KindText,
			Confidence:   confidence,
			Source:       source,
			Language:     lang.Code,
			CountryHints: lang.Countries,
		})
	}

	// Individual words still carry signal when whole lines did not parse:
	// a lone "강남역" on a shop sign is enough to anchor a search.
	words := strings.Fields(strings.ReplaceAll(text, "\n", " "))
	if len(words) > 10 {
		words = words[:10]
	}

	for _, w := range words {
		if len([]rune(w)) < 2 || excluded(w) || !wordQualifies(w) || !isPlaceName(w) {
			continue
		}

		confidence := 0.7
		if isStrongPlaceName(w) {
			// An unambiguous suffix like 구 or 역 is as good as a whole
			// matching line.
			confidence = 0.85
		}

		candidates = append(candidates, Candidate{
			Query:        w,
			Kind:         KindText,
			Confidence:   confidence,
			Source:       "ocr-keyword",
			Language:     lang.Code,
			CountryHints: lang.Countries,
		})
	}

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	return candidates
}

func (e *Extractor) visionLane(ctx context.Context, image []byte) []Candidate {
	var candidates []Candidate

	if e.Detector != nil {
		labels, err := e.Detector.DetectObjects(ctx, image)
		if err != nil {
			log.Printf("object detection failed: %v", err)
		}

		for _, l := range labels {
			if l.Score > 0.5 && placeObjects[strings.ToLower(l.Name)] {
				candidates = append(candidates, Candidate{
					Query:      l.Name,
					Kind:       KindObject,
					Confidence: l.Score * 0.7,
					Source:     "object-detection",
				})
			}
		}
	}

	if e.Classifier != nil {
		labels, err := e.Classifier.ClassifyImage(ctx, image)
		if err != nil {
			log.Printf("image classification failed: %v", err)
		}

		if len(labels) > 3 {
			labels = labels[:3]
		}

		for _, l := range labels {
			if l.Score > 0.3 && matchesPlaceCategory(l.Name) {
				candidates = append(candidates, Candidate{
					Query:      l.Name,
					Kind:       KindCategory,
					Confidence: l.Score * 0.6,
					Source:     "image-classification",
				})
			}
		}
	}

	return candidates
}

func (e *Extractor) compositionLane(image []byte) []Candidate {
	if e.Analyzer == nil {
		return nil
	}

	comp, err := e.Analyzer.AnalyzeComposition(image)
	if err != nil {
		log.Printf("composition analysis failed: %v", err)

		return nil
	}

	switch {
	case comp.SkyRatio < 0.3 && comp.GreenRatio < 0.3:
		return []Candidate{{Query: "도시 건물", Kind: KindVisual, Confidence: 0.5, Source: "composition"}}
	case comp.GreenRatio > 0.2:
		return []Candidate{{Query: "자연 풍경", Kind: KindVisual, Confidence: 0.4, Source: "composition"}}
	}

	return nil
}

// landmarkPass promotes text candidates that mention a known landmark.
func landmarkPass(textCands []Candidate) []Candidate {
	var out []Candidate

	for _, c := range textCands {
		lower := strings.ToLower(c.Query)
		for _, kw := range landmarkKeywords {
			if strings.Contains(lower, kw) {
				out = append(out, Candidate{
					Query:        c.Query,
					Kind:         KindLandmark,
					Confidence:   0.9,
					Source:       "landmark",
					Language:     c.Language,
					CountryHints: c.CountryHints,
				})

				break
			}
		}
	}

	return out
}

// fillLanguageHints copies the first detected language onto candidates that
// have none, so vision-only candidates still narrow the geocoder by country.
func fillLanguageHints(candidates []Candidate) {
	var donor *Candidate

	for i := range candidates {
		if candidates[i].Language != "" {
			donor = &candidates[i]

			break
		}
	}

	if donor == nil {
		return
	}

	for i := range candidates {
		if candidates[i].Language == "" {
			candidates[i].Language = donor.Language
			candidates[i].CountryHints = donor.CountryHints
		}
	}
}

func lineQualifies(line string) bool {
	if containsHangul(line) {
		return true
	}

	r := []rune(line)

	return len(r) > 2 && unicode.IsUpper(r[0])
}

func wordQualifies(w string) bool {
	if containsHangul(w) {
		return true
	}

	r := []rune(w)

	return unicode.IsUpper(r[0])
}

func isStrongPlaceName(s string) bool {
	for _, p := range strongPlacePatterns {
		if p.MatchString(s) {
			return true
		}
	}

	return false
}

func isPlaceName(s string) bool {
	if isStrongPlaceName(s) {
		return true
	}

	for _, p := range weakPlacePatterns {
		if p.MatchString(s) {
			return true
		}
	}

	lower := strings.ToLower(s)
	for _, kw := range placeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	return false
}

func excluded(s string) bool {
	for _, p := range exclusionPatterns {
		if p.MatchString(s) {
			return true
		}
	}

	return false
}

func matchesPlaceCategory(label string) bool {
	lower := strings.ToLower(label)
	for _, cat := range placeCategories {
		if strings.Contains(lower, cat) {
			return true
		}
	}

	return false
}

func containsHangul(s string) bool {
	for _, r := range s {
		if r >= 0xAC00 && r <= 0xD7A3 {
			return true
		}
	}

	return false
}
