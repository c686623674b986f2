// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package route

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geolens/geolens/spatial"
)

func TestDrive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/route/v1/driving/")
		// Coordinates go on the path as lon,lat pairs.
		assert.Contains(t, r.URL.Path, "126.978000,37.566500;127.027600,37.497900")
		assert.Equal(t, "full", r.URL.Query().Get("overview"))
		assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))

		fmt.Fprint(w, `{"code":"Ok","routes":[{
			"distance":9400.3,"duration":1260.5,
			"geometry":{"type":"LineString","coordinates":[[126.978,37.5665],[127.0276,37.4979]]}
		}]}`)
	}))
	defer srv.Close()

	got, err := NewOSRMClient(srv.URL).Drive(context.Background(),
		spatial.Point{Lat: 37.5665, Lng: 126.978},
		spatial.Point{Lat: 37.4979, Lng: 127.0276})
	require.NoError(t, err)

	assert.InDelta(t, 9400.3, got.DistanceMeters, 1e-9)
	assert.InDelta(t, 1260.5, got.DurationSeconds, 1e-9)
	require.Len(t, got.Geometry, 2)
	assert.InDelta(t, 37.5665, got.Geometry[0].Lat, 1e-9)
	assert.InDelta(t, 126.978, got.Geometry[0].Lng, 1e-9)
}

func TestDriveNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"code":"NoRoute","routes":[]}`)
	}))
	defer srv.Close()

	_, err := NewOSRMClient(srv.URL).Drive(context.Background(), spatial.Point{}, spatial.Point{})

	assert.Error(t, err)
}

func TestDriveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewOSRMClient(srv.URL).Drive(context.Background(), spatial.Point{}, spatial.Point{})

	assert.Error(t, err)
}
