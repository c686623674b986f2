// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package estimate turns raw photo evidence (recognized text, detected
// objects, composition hints) into a short ranked list of geocoded places.
package estimate

import (
	"context"
	"errors"
)

// Kind classifies the evidence behind a location candidate.
type Kind string

const (
	// KindText candidate extracted from recognized text.
	KindText Kind = "text"
	// KindObject candidate from a detected object label.
	KindObject Kind = "object"
	// KindCategory candidate from an image classification label.
	KindCategory Kind = "category"
	// KindLandmark candidate from a landmark keyword hit.
	KindLandmark Kind = "landmark"
	// KindVisual candidate from coarse composition analysis.
	KindVisual Kind = "visual"
)

// Candidate is an unresolved hypothesis about where a photo was taken.
type Candidate struct {
	Query        string   `json:"query"`
	Kind         Kind     `json:"kind"`
	Confidence   float64  `json:"confidence"`
	Source       string   `json:"source"`
	Language     string   `json:"language,omitempty"`
	CountryHints []string `json:"country_hints,omitempty"`
}

var (
	// ErrNoCandidates extraction produced zero usable evidence.
	ErrNoCandidates = errors.New("no location evidence found in image")

	// ErrNoResolution candidates existed but none resolved to a place,
	// even after the broadened fallback search.
	ErrNoResolution = errors.New("no location found for extracted candidates")
)

// Label is a scored label produced by a vision capability.
type Label struct {
	Name  string  `json:"label"`
	Score float64 `json:"score"`
}

// Composition holds coarse per-image color ratios.
type Composition struct {
	SkyRatio   float64 `json:"sky_ratio"`
	GreenRatio float64 `json:"green_ratio"`
}

// TextRecognizer extracts text from an image (OCR).
type TextRecognizer interface {
	RecognizeText(ctx context.Context, image []byte) (string, error)
}

// ObjectDetector locates and labels objects in an image.
type ObjectDetector interface {
	DetectObjects(ctx context.Context, image []byte) ([]Label, error)
}

// ImageClassifier assigns whole-image class labels.
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, image []byte) ([]Label, error)
}

// CompositionAnalyzer computes coarse color-composition ratios.
type CompositionAnalyzer interface {
	AnalyzeComposition(image []byte) (Composition, error)
}
