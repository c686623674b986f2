// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/geolens/geolens/utils/httputils"
)

// DefaultNominatimURL is the public OSM Nominatim instance.
const DefaultNominatimURL = "https://nominatim.openstreetmap.org"

const searchLimit = 5

// userAgent identifies us to Nominatim; requests without one get rejected.
const userAgent = "geolens/1.0 (+https://github.com/geolens/geolens)"

// NominatimGeocoder resolves queries against an OSM Nominatim instance.
type NominatimGeocoder struct {
	baseURL    string
	httpClient *http.Client
}

// NewNominatimGeocoder creates a geocoder for the given Nominatim base URL.
// An empty baseURL selects the public OSM instance.
func NewNominatimGeocoder(baseURL string) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}

	return &NominatimGeocoder{
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

// nominatimPlace is the provider wire format; coordinates arrive as strings.
type nominatimPlace struct {
	DisplayName string            `json:"display_name"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Address     map[string]string `json:"address"`
}

func (np *nominatimPlace) toPlace() Place {
	lat, _ := strconv.ParseFloat(np.Lat, 64)
	lon, _ := strconv.ParseFloat(np.Lon, 64)

	return Place{
		DisplayName: np.DisplayName,
		Lat:         lat,
		Lon:         lon,
		Address:     np.Address,
	}
}

// Search resolves a free-text query, optionally restricted to countryCodes.
// A restricted search that fails or comes back empty is retried once without
// the restriction; the caller only sees an error when the global search
// itself fails.
func (g *NominatimGeocoder) Search(ctx context.Context, query string, countryCodes []string) ([]Place, error) {
	query = strings.TrimSpace(query)
	if len(query) < 2 {
		return nil, nil
	}

	places, err := g.search(ctx, query, countryCodes)
	if len(countryCodes) > 0 && (err != nil || len(places) == 0) {
		// Country filter too narrow or the filtered call failed: go global.
		places, err = g.search(ctx, query, nil)
	}

	if err != nil {
		return nil, err
	}

	return places, nil
}

func (g *NominatimGeocoder) search(ctx context.Context, query string, countryCodes []string) ([]Place, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(searchLimit))
	params.Set("addressdetails", "1")

	if len(countryCodes) > 0 {
		params.Set("countrycodes", strings.Join(countryCodes, ","))
	}

	var raw []nominatimPlace
	if err := g.get(ctx, g.baseURL+"/search?"+params.Encode(), &raw); err != nil {
		return nil, err
	}

	if len(raw) > searchLimit {
		raw = raw[:searchLimit]
	}

	places := make([]Place, 0, len(raw))
	for i := range raw {
		places = append(places, raw[i].toPlace())
	}

	return places, nil
}

// Reverse resolves coordinates into the closest described place.
func (g *NominatimGeocoder) Reverse(ctx context.Context, lat, lon float64) (*Place, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("zoom", "10")
	params.Set("addressdetails", "1")

	var raw nominatimPlace
	if err := g.get(ctx, g.baseURL+"/reverse?"+params.Encode(), &raw); err != nil {
		return nil, err
	}

	place := raw.toPlace()

	return &place, nil
}

func (g *NominatimGeocoder) get(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return &GeocodeError{Type: ErrorTypeInvalidRequest, Message: "building request", Err: err}
	}

	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return &GeocodeError{Type: ErrorTypeUnavailable, Message: "geocoding request failed", Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ClassifyHTTPError(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &GeocodeError{Type: ErrorTypeUnknown, Message: fmt.Sprintf("decoding response from %s", reqURL), Err: err}
	}

	return nil
}
