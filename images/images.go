// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package images gathers openly licensed street-level photos around a
// coordinate from several providers and merges them into one list.
package images

// Source identifiers for merged results, so callers can tell a true
// nearby photo from a keyword match.
const (
	SourceWikimediaGeo  = "wikimedia-geo"
	SourceWikimediaText = "wikimedia-text"
	SourceOpenverse     = "openverse"
)

// Image is one photo found near or about a location.
type Image struct {
	URL            string   `json:"url"`
	FullURL        string   `json:"full_url"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	Lat            *float64 `json:"lat,omitempty"`
	Lon            *float64 `json:"lon,omitempty"`
	DistanceMeters *float64 `json:"distance_m,omitempty"`
	Source         string   `json:"source"`
}
