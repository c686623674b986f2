// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package estimate

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/geolens/geolens/geocode"
	"github.com/geolens/geolens/utils/textutils"
)

const (
	maxResolvedCandidates = 5
	maxPlacesPerCandidate = 2
	maxRankedLocations    = 3
)

// RankedLocation is a geocoded place annotated with how well it matches the
// evidence that produced it.
type RankedLocation struct {
	geocode.Place

	Confidence          float64 `json:"confidence"`
	Source              string  `json:"source"`
	OriginalQuery       string  `json:"original_query"`
	AccuracyScore       float64 `json:"accuracy_score"`
	RecommendationScore float64 `json:"recommendation_score"`
}

// Ranker resolves candidates through a geocoder and orders the results.
type Ranker struct {
	Geocoder geocode.Geocoder
}

func NewRanker(g geocode.Geocoder) *Ranker {
	return &Ranker{Geocoder: g}
}

// Rank turns extracted candidates into at most 3 geocoded locations, best
// first. Candidates are deduplicated keeping the highest-confidence spelling,
// the top 5 are resolved concurrently, and each resolved place is scored for
// accuracy (does the result text echo the query?) and recommendation (country
// hint agreement, high accuracy, address completeness). When nothing resolves
// directly, a broadened per-word search runs before giving up.
func (r *Ranker) Rank(ctx context.Context, candidates []Candidate) ([]RankedLocation, error) {
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	deduped := dedupeCandidates(candidates)
	if len(deduped) > maxResolvedCandidates {
		deduped = deduped[:maxResolvedCandidates]
	}

	resolved := r.resolveAll(ctx, deduped)

	var locations []RankedLocation

	for i, cand := range deduped {
		places := resolved[i]
		if len(places) > maxPlacesPerCandidate {
			places = places[:maxPlacesPerCandidate]
		}

		for _, place := range places {
			locations = append(locations, scoreLocation(cand, place))
		}
	}

	if len(locations) == 0 {
		broad := r.broadSearch(ctx, deduped)
		if len(broad) == 0 {
			return nil, ErrNoResolution
		}

		locations = broad
	}

	sort.SliceStable(locations, func(i, j int) bool {
		return locations[i].RecommendationScore > locations[j].RecommendationScore
	})

	if len(locations) > maxRankedLocations {
		locations = locations[:maxRankedLocations]
	}

	return locations, nil
}

// dedupeCandidates drops near-duplicate queries, keeping the most confident
// occurrence of each, and discards queries too short to geocode.
func dedupeCandidates(candidates []Candidate) []Candidate {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	seen := make(map[string]bool, len(sorted))
	out := make([]Candidate, 0, len(sorted))

	for _, c := range sorted {
		c.Query = strings.TrimSpace(c.Query)

		key := strings.ToLower(c.Query)
		if len([]rune(key)) < 2 || seen[key] {
			continue
		}

		seen[key] = true
		out = append(out, c)
	}

	return out
}

// resolveAll geocodes every candidate concurrently. Each goroutine writes to
// its own slot, and a failed lookup just leaves its slot empty.
func (r *Ranker) resolveAll(ctx context.Context, candidates []Candidate) [][]geocode.Place {
	resolved := make([][]geocode.Place, len(candidates))

	var wg sync.WaitGroup

	for i, cand := range candidates {
		wg.Add(1)

		go func(i int, cand Candidate) {
			defer wg.Done()

			places, err := r.Geocoder.Search(ctx, cand.Query, cand.CountryHints)
			if err != nil {
				log.Printf("geocoding %q failed: %v", cand.Query, err)

				return
			}

			resolved[i] = places
		}(i, cand)
	}

	wg.Wait()

	return resolved
}

func scoreLocation(cand Candidate, place geocode.Place) RankedLocation {
	accuracy := cand.Confidence
	if queryEchoedInResult(cand.Query, place.DisplayName) {
		accuracy += 0.2
	}

	if accuracy > 1.0 {
		accuracy = 1.0
	}

	loc := RankedLocation{
		Place:         place,
		Confidence:    cand.Confidence,
		Source:        cand.Source,
		OriginalQuery: cand.Query,
		AccuracyScore: accuracy,
	}
	loc.RecommendationScore = recommendationScore(cand, loc)

	return loc
}

// queryEchoedInResult reports whether the geocoder result text repeats the
// query, either whole or through any word of 3+ runes. Both sides are
// accent-folded so an OCR'd "Café" still echoes the geocoder's "Cafe".
func queryEchoedInResult(query, displayName string) bool {
	q := textutils.LowerASCIIFolding(query)
	d := textutils.LowerASCIIFolding(displayName)

	if strings.Contains(d, q) {
		return true
	}

	for _, w := range strings.Fields(q) {
		if len([]rune(w)) >= 3 && strings.Contains(d, w) {
			return true
		}
	}

	return false
}

func recommendationScore(cand Candidate, loc RankedLocation) float64 {
	score := loc.AccuracyScore

	country := loc.CountryCode()
	if country == "" {
		country = countryFromDisplayName(loc.DisplayName)
	}

	for _, hint := range cand.CountryHints {
		if hint == country {
			score += 0.3

			break
		}
	}

	if loc.AccuracyScore > 0.7 {
		score += 0.2
	}

	if strings.Count(loc.DisplayName, ",") >= 2 {
		score += 0.1
	}

	return score
}

// broadSearch retries the best candidates word by word with reduced
// confidence. It trades precision for recall when no full query resolved.
func (r *Ranker) broadSearch(ctx context.Context, candidates []Candidate) []RankedLocation {
	if len(candidates) > maxRankedLocations {
		candidates = candidates[:maxRankedLocations]
	}

	var locations []RankedLocation

	for _, cand := range candidates {
		words := make([]string, 0, 2)
		for _, w := range strings.Fields(cand.Query) {
			if len([]rune(w)) >= 2 {
				words = append(words, w)
			}

			if len(words) == 2 {
				break
			}
		}

		for _, word := range words {
			places, err := r.Geocoder.Search(ctx, word, nil)
			if err != nil || len(places) == 0 {
				continue
			}

			partial := cand
			partial.Query = word
			partial.Confidence = cand.Confidence * 0.7
			partial.Source = cand.Source + " (partial search)"
			partial.CountryHints = nil

			locations = append(locations, scoreLocation(partial, places[0]))
		}
	}

	return locations
}
