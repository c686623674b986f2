// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import "context"

// Place represents a resolved real-world location from any provider.
type Place struct {
	DisplayName string            `json:"display_name"`
	Lat         float64           `json:"lat"`
	Lon         float64           `json:"lon"`
	Address     map[string]string `json:"address,omitempty"`
}

// CountryCode returns the lowercased ISO country code of the place, or "" when unknown.
func (p *Place) CountryCode() string {
	if p.Address == nil {
		return ""
	}

	return p.Address["country_code"]
}

// Geocoder interface for different geocoding providers.
type Geocoder interface {
	// Search resolves a free-text query into places. countryCodes, when
	// non-empty, restricts the search to those ISO codes; providers retry
	// unfiltered when the restricted search comes back empty.
	Search(ctx context.Context, query string, countryCodes []string) ([]Place, error)

	// Reverse resolves coordinates into the closest described place.
	Reverse(ctx context.Context, lat, lon float64) (*Place, error)
}
