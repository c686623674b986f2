// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package route computes driving routes between two coordinates via an OSRM
// backend.
package route

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/geolens/geolens/spatial"
	"github.com/geolens/geolens/utils/httputils"
)

// DefaultOSRMURL is the public OSRM demo server.
const DefaultOSRMURL = "https://router.project-osrm.org"

const userAgent = "geolens/1.0 (+https://github.com/geolens/geolens)"

// Route is a drivable path between two points.
type Route struct {
	DistanceMeters  float64         `json:"distance_m"`
	DurationSeconds float64         `json:"duration_s"`
	Geometry        []spatial.Point `json:"geometry"`
}

// OSRMClient requests driving routes from an OSRM instance.
type OSRMClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOSRMClient creates a client for the given OSRM base URL. An empty
// baseURL selects the public demo server.
func NewOSRMClient(baseURL string) *OSRMClient {
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}

	return &OSRMClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &httputils.AppendRequestHeadersRoundTripper{
				Transport: http.DefaultTransport,
				Headers:   map[string]string{"User-Agent": userAgent},
			},
		},
	}
}

type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// Drive returns the best driving route from origin to destination.
func (c *OSRMClient) Drive(ctx context.Context, from, to spatial.Point) (*Route, error) {
	reqURL := fmt.Sprintf("%s/route/v1/driving/%f,%f;%f,%f?overview=full&geometries=geojson",
		c.baseURL, from.Lng, from.Lat, to.Lng, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building routing request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying OSRM: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OSRM returned status %d", resp.StatusCode)
	}

	var res osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decoding OSRM response: %w", err)
	}

	if res.Code != "Ok" || len(res.Routes) == 0 {
		return nil, fmt.Errorf("no route found (code %q)", res.Code)
	}

	best := res.Routes[0]

	geometry := make([]spatial.Point, 0, len(best.Geometry.Coordinates))
	for _, coord := range best.Geometry.Coordinates {
		if len(coord) < 2 {
			continue
		}

		// GeoJSON coordinates come as [lon, lat].
		geometry = append(geometry, spatial.Point{Lat: coord[1], Lng: coord[0]})
	}

	return &Route{
		DistanceMeters:  best.Distance,
		DurationSeconds: best.Duration,
		Geometry:        geometry,
	}, nil
}
