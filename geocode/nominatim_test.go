// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchParsesStringCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "Tour Eiffel", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		fmt.Fprint(w, `[{"display_name":"Tour Eiffel, Paris, France",
			"lat":"48.8582599","lon":"2.2945006",
			"address":{"country_code":"fr"}}]`)
	}))
	defer srv.Close()

	places, err := NewNominatimGeocoder(srv.URL).Search(context.Background(), "Tour Eiffel", nil)
	require.NoError(t, err)
	require.Len(t, places, 1)

	assert.Equal(t, "Tour Eiffel, Paris, France", places[0].DisplayName)
	assert.InDelta(t, 48.8582599, places[0].Lat, 1e-9)
	assert.InDelta(t, 2.2945006, places[0].Lon, 1e-9)
	assert.Equal(t, "fr", places[0].CountryCode())
}

func TestSearchEmptyFilteredResultRetriesGlobally(t *testing.T) {
	var codes []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cc := r.URL.Query().Get("countrycodes")
		codes = append(codes, cc)

		if cc != "" {
			fmt.Fprint(w, `[]`)

			return
		}

		fmt.Fprint(w, `[{"display_name":"Tour Eiffel, Paris, France","lat":"48.85","lon":"2.29"}]`)
	}))
	defer srv.Close()

	places, err := NewNominatimGeocoder(srv.URL).Search(context.Background(), "Tour Eiffel", []string{"kr", "jp"})
	require.NoError(t, err)

	require.Len(t, places, 1)
	assert.Equal(t, []string{"kr,jp", ""}, codes)
}

func TestSearchFilteredHitDoesNotRetry(t *testing.T) {
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "fr", r.URL.Query().Get("countrycodes"))
		fmt.Fprint(w, `[{"display_name":"Tour Eiffel, Paris, France","lat":"48.85","lon":"2.29"}]`)
	}))
	defer srv.Close()

	places, err := NewNominatimGeocoder(srv.URL).Search(context.Background(), "Tour Eiffel", []string{"fr"})
	require.NoError(t, err)

	require.Len(t, places, 1)
	assert.Equal(t, 1, calls)
}

func TestSearchShortQuerySkipsLookup(t *testing.T) {
	g := NewNominatimGeocoder("http://127.0.0.1:0") // would fail if contacted

	places, err := g.Search(context.Background(), " x ", nil)

	assert.NoError(t, err)
	assert.Nil(t, places)
}

func TestSearchRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewNominatimGeocoder(srv.URL).Search(context.Background(), "Tour Eiffel", nil)

	assert.True(t, IsRateLimitError(err))
}

func TestReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("zoom"))
		assert.Equal(t, "37.5665", r.URL.Query().Get("lat"))
		assert.Equal(t, "126.978", r.URL.Query().Get("lon"))

		fmt.Fprint(w, `{"display_name":"중구, 서울, 대한민국","lat":"37.5636","lon":"126.9975",
			"address":{"country_code":"kr"}}`)
	}))
	defer srv.Close()

	place, err := NewNominatimGeocoder(srv.URL).Reverse(context.Background(), 37.5665, 126.978)
	require.NoError(t, err)
	require.NotNil(t, place)

	assert.Equal(t, "중구, 서울, 대한민국", place.DisplayName)
	assert.Equal(t, "kr", place.CountryCode())
	assert.InDelta(t, 37.5636, place.Lat, 1e-9)
}
