// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, c color.RGBA, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestAnalyzeComposition(t *testing.T) {
	a := NewColorAnalyzer()

	tests := []struct {
		name      string
		color     color.RGBA
		wantSky   float64
		wantGreen float64
	}{
		{"clear sky", color.RGBA{R: 80, G: 120, B: 220, A: 255}, 1.0, 0.0},
		{"forest", color.RGBA{R: 40, G: 160, B: 50, A: 255}, 0.0, 1.0},
		{"concrete", color.RGBA{R: 120, G: 120, B: 120, A: 255}, 0.0, 0.0},
		{"dark blue not sky", color.RGBA{R: 20, G: 30, B: 100, A: 255}, 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comp, err := a.AnalyzeComposition(encodePNG(t, tt.color, 32, 32))
			require.NoError(t, err)

			assert.InDelta(t, tt.wantSky, comp.SkyRatio, 1e-9)
			assert.InDelta(t, tt.wantGreen, comp.GreenRatio, 1e-9)
		})
	}
}

func TestAnalyzeCompositionSamplesLargeImages(t *testing.T) {
	a := NewColorAnalyzer()

	comp, err := a.AnalyzeComposition(encodePNG(t, color.RGBA{R: 80, G: 120, B: 220, A: 255}, 800, 600))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, comp.SkyRatio, 1e-9)
}

func TestAnalyzeCompositionRejectsGarbage(t *testing.T) {
	a := NewColorAnalyzer()

	_, err := a.AnalyzeComposition([]byte("not an image"))

	assert.Error(t, err)
}
