// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaversineDistance(t *testing.T) {
	seoulCityHall := Point{Lat: 37.5663, Lng: 126.9779}
	gangnamStation := Point{Lat: 37.4979, Lng: 127.0276}

	d := seoulCityHall.HaversineDistance(&gangnamStation)

	// Roughly 8.7 km between the two.
	assert.InDelta(t, 8700, d, 400)

	// Distance to self is zero.
	assert.InDelta(t, 0, seoulCityHall.HaversineDistance(&seoulCityHall), 0.001)
}

func TestPointScan(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    Point
		wantErr bool
	}{
		{
			name:  "duckdb text format",
			value: []byte("POINT (126.977900 37.566300)"),
			want:  Point{Lat: 37.5663, Lng: 126.9779},
		},
		{
			name:  "struct map format",
			value: map[string]interface{}{"x": 2.2945, "y": 48.8584},
			want:  Point{Lat: 48.8584, Lng: 2.2945},
		},
		{
			name:  "nil resets",
			value: nil,
			want:  Point{},
		},
		{
			name:    "unsupported type",
			value:   42,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Point

			err := p.Scan(tt.value)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.InDelta(t, tt.want.Lat, p.Lat, 0.0001)
			assert.InDelta(t, tt.want.Lng, p.Lng, 0.0001)
		})
	}
}

func TestCell(t *testing.T) {
	p := Point{Lat: 48.8584, Lng: 2.2945}

	c7, err := p.Cell(7)
	require.NoError(t, err)
	assert.NotZero(t, c7)

	c8, err := p.Cell(8)
	require.NoError(t, err)
	assert.NotEqual(t, c7, c8)

	// Same point always maps to the same cell.
	again, err := p.Cell(7)
	require.NoError(t, err)
	assert.Equal(t, c7, again)
}

func TestValid(t *testing.T) {
	assert.True(t, (&Point{Lat: -34.9, Lng: -56.1}).Valid())
	assert.False(t, (&Point{Lat: 91, Lng: 0}).Valid())
	assert.False(t, (&Point{Lat: 0, Lng: -181}).Valid())
}
