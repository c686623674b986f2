// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package estimate

import "context"

// Result is a complete estimation outcome: the evidence that was extracted
// and the geocoded locations it resolved to.
type Result struct {
	Candidates []Candidate      `json:"candidates"`
	Locations  []RankedLocation `json:"locations"`
}

// Estimator runs the full pipeline over a photo.
type Estimator struct {
	Extractor *Extractor
	Ranker    *Ranker
}

func NewEstimator(extractor *Extractor, ranker *Ranker) *Estimator {
	return &Estimator{Extractor: extractor, Ranker: ranker}
}

// Estimate extracts candidates from the image and ranks them. Returns
// ErrNoCandidates when the photo holds no usable evidence and
// ErrNoResolution when evidence exists but nothing geocodes.
func (e *Estimator) Estimate(ctx context.Context, image []byte) (*Result, error) {
	candidates := e.Extractor.Extract(ctx, image)
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	locations, err := e.Ranker.Rank(ctx, candidates)
	if err != nil {
		return nil, err
	}

	return &Result{Candidates: candidates, Locations: locations}, nil
}
