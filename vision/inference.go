// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/geolens/geolens/estimate"
)

// InferenceClient talks to an HTTP model-serving sidecar that exposes
// object detection and image classification. The request body is the raw
// image; the response is a JSON array of scored labels.
type InferenceClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewInferenceClient(baseURL string) *InferenceClient {
	return &InferenceClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// DetectObjects returns the objects the model found in the image.
func (c *InferenceClient) DetectObjects(ctx context.Context, image []byte) ([]estimate.Label, error) {
	return c.infer(ctx, "/detect", image)
}

// ClassifyImage returns whole-image class labels, best first.
func (c *InferenceClient) ClassifyImage(ctx context.Context, image []byte) ([]estimate.Label, error) {
	return c.infer(ctx, "/classify", image)
}

func (c *InferenceClient) infer(ctx context.Context, path string, image []byte) ([]estimate.Label, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("creating inference request: %w", err)
	}

	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling inference service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inference service %s returned status %d", path, resp.StatusCode)
	}

	var labels []estimate.Label
	if err := json.NewDecoder(resp.Body).Decode(&labels); err != nil {
		return nil, fmt.Errorf("decoding inference response: %w", err)
	}

	return labels, nil
}
