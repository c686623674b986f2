// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package vision

import (
	"bytes"
	"fmt"
	"image"

	// Register decoders for the formats phones actually produce.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/geolens/geolens/estimate"
)

// maxSampleDim caps how many pixels per axis get sampled. Composition only
// needs coarse color ratios, so a 200x200 grid is plenty.
const maxSampleDim = 200

// ColorAnalyzer derives coarse composition ratios from pixel colors: how much
// of the frame reads as sky and how much as vegetation.
type ColorAnalyzer struct{}

func NewColorAnalyzer() *ColorAnalyzer {
	return &ColorAnalyzer{}
}

// AnalyzeComposition decodes the image and samples it on a grid. A pixel
// counts as sky when blue clearly dominates and as vegetation when green
// does.
func (a *ColorAnalyzer) AnalyzeComposition(data []byte) (estimate.Composition, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return estimate.Composition{}, fmt.Errorf("decoding image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return estimate.Composition{}, fmt.Errorf("image has no pixels")
	}

	stepX, stepY := 1, 1
	if width > maxSampleDim {
		stepX = width / maxSampleDim
	}
	if height > maxSampleDim {
		stepY = height / maxSampleDim
	}

	var total, sky, green int

	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			r8, g8, b8 := r>>8, g>>8, b>>8

			total++

			if b8 > 150 && b8 > r8 && b8 > g8 {
				sky++
			} else if g8 > 100 && g8 > r8 && g8 > b8 {
				green++
			}
		}
	}

	return estimate.Composition{
		SkyRatio:   float64(sky) / float64(total),
		GreenRatio: float64(green) / float64(total),
	}, nil
}
