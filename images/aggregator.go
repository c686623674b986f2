// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package images

import (
	"context"
	"log"
	"math"
	"sort"
	"strings"

	"github.com/geolens/geolens/geocode"
)

// CommonsSearcher is the slice of the Wikimedia client the aggregator needs.
type CommonsSearcher interface {
	SearchNearby(ctx context.Context, lat, lon float64) ([]Image, error)
	SearchByText(ctx context.Context, query string) ([]Image, error)
}

// CatalogSearcher is a free-text image catalog such as Openverse.
type CatalogSearcher interface {
	Search(ctx context.Context, query string) ([]Image, error)
}

// Aggregator merges photos from three tiers: geotagged Commons photos near
// the coordinate, Commons text matches on street names around it, and an
// Openverse keyword search. Later tiers widen recall when the area has few
// geotagged photos.
type Aggregator struct {
	Commons  CommonsSearcher
	Catalog  CatalogSearcher
	Geocoder geocode.Geocoder
}

func NewAggregator(commons CommonsSearcher, catalog CatalogSearcher, geocoder geocode.Geocoder) *Aggregator {
	return &Aggregator{Commons: commons, Catalog: catalog, Geocoder: geocoder}
}

// Aggregate collects photos around the coordinate. Tier failures are logged
// and skipped; an all-tier failure yields an empty, non-nil slice so the API
// still answers with a valid list.
func (a *Aggregator) Aggregate(ctx context.Context, lat, lon float64) []Image {
	var geoCount, textCount, catalogCount int

	images := make([]Image, 0, geoSearchLimit)

	if a.Commons != nil {
		nearby, err := a.Commons.SearchNearby(ctx, lat, lon)
		if err != nil {
			log.Printf("commons geosearch failed: %v", err)
		}

		geoCount = len(nearby)
		images = append(images, nearby...)
	}

	keywords, locality := a.localityKeywords(ctx, lat, lon)

	if a.Commons != nil {
		for _, query := range streetQueries(keywords) {
			found, err := a.Commons.SearchByText(ctx, query)
			if err != nil {
				log.Printf("commons text search %q failed: %v", query, err)

				continue
			}

			textCount += len(found)
			images = append(images, tagRequestCoordinates(found, lat, lon)...)
		}
	}

	// The catalog tier prefers the first keyword but falls back to the
	// whole display name, so areas with unusable address segments still
	// reach it.
	catalogQuery := locality
	if len(keywords) > 0 {
		catalogQuery = keywords[0]
	}

	if a.Catalog != nil && catalogQuery != "" {
		found, err := a.Catalog.Search(ctx, catalogQuery+" street city")
		if err != nil {
			log.Printf("openverse search failed: %v", err)
		}

		catalogCount = len(found)
		images = append(images, tagRequestCoordinates(found, lat, lon)...)
	}

	images = dedupeImages(images)

	// Geotagged photos first, closest first. Untagged text matches keep
	// their discovery order at the tail.
	sort.SliceStable(images, func(i, j int) bool {
		return distanceOf(images[i]) < distanceOf(images[j])
	})

	log.Printf("street images for %.5f,%.5f: %d total (geo=%d text=%d catalog=%d)",
		lat, lon, len(images), geoCount, textCount, catalogCount)

	return images
}

// localityKeywords reverse-geocodes the coordinate and keeps the first two
// usable segments of the display name, usually the street and the district.
// The full display name comes back too, as a fallback query.
func (a *Aggregator) localityKeywords(ctx context.Context, lat, lon float64) ([]string, string) {
	if a.Geocoder == nil {
		return nil, ""
	}

	place, err := a.Geocoder.Reverse(ctx, lat, lon)
	if err != nil || place == nil {
		if err != nil {
			log.Printf("reverse geocoding %.5f,%.5f failed: %v", lat, lon, err)
		}

		return nil, ""
	}

	keywords := make([]string, 0, 2)

	for _, part := range strings.Split(place.DisplayName, ",") {
		part = strings.TrimSpace(part)
		if len([]rune(part)) > 1 {
			keywords = append(keywords, part)
		}

		if len(keywords) == 2 {
			break
		}
	}

	return keywords, strings.TrimSpace(place.DisplayName)
}

// tagRequestCoordinates stamps keyword-matched photos with the coordinate
// the user asked about. Their true location is unknown, so the distance
// stays nil and they sort after every geotagged photo.
func tagRequestCoordinates(found []Image, lat, lon float64) []Image {
	for i := range found {
		if found[i].Lat == nil {
			reqLat, reqLon := lat, lon
			found[i].Lat, found[i].Lon = &reqLat, &reqLon
		}
	}

	return found
}

// streetQueries builds at most 3 Commons text queries from the keywords.
func streetQueries(keywords []string) []string {
	var queries []string

	if len(keywords) > 0 {
		queries = append(queries, keywords[0]+" street", keywords[0]+" road")
	}

	if len(keywords) > 1 {
		queries = append(queries, keywords[1]+" street")
	}

	return queries
}

// dedupeImages drops repeated photos by their canonical URL, keeping the
// first occurrence so earlier tiers win.
func dedupeImages(images []Image) []Image {
	seen := make(map[string]bool, len(images))
	out := make([]Image, 0, len(images))

	for _, img := range images {
		key := img.FullURL
		if key == "" {
			key = img.URL
		}

		if key == "" || seen[key] {
			continue
		}

		seen[key] = true
		out = append(out, img)
	}

	return out
}

func distanceOf(img Image) float64 {
	if img.DistanceMeters == nil {
		return math.Inf(1)
	}

	return *img.DistanceMeters
}
