// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package vision provides the image capabilities the estimation pipeline
// consumes: OCR, object detection, classification, and composition analysis.
package vision

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer extracts text from images using a local tesseract
// install. Korean plus English covers the photos this tool grew up on;
// callers can widen the set when their corpus differs.
type TesseractRecognizer struct {
	Languages []string
}

func NewTesseractRecognizer(languages ...string) *TesseractRecognizer {
	if len(languages) == 0 {
		languages = []string{"kor", "eng"}
	}

	return &TesseractRecognizer{Languages: languages}
}

// RecognizeText runs OCR over the image bytes. A fresh client per call keeps
// the recognizer safe for concurrent use; tesseract clients are not.
func (r *TesseractRecognizer) RecognizeText(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.Languages...); err != nil {
		return "", fmt.Errorf("setting OCR languages: %w", err)
	}

	if err := client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("loading image for OCR: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("running OCR: %w", err)
	}

	return text, nil
}
