// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package images

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

// DefaultOpenverseURL is the public Openverse API.
const DefaultOpenverseURL = "https://api.openverse.org"

const openversePageSize = 10

// OpenverseClient searches the Openverse catalog of openly licensed images.
type OpenverseClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewOpenverseClient creates a client for an Openverse-compatible API.
// An empty baseURL selects the public instance.
func NewOpenverseClient(baseURL string) *OpenverseClient {
	if baseURL == "" {
		baseURL = DefaultOpenverseURL
	}

	return &OpenverseClient{
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

type openverseResponse struct {
	Results []struct {
		Title     string `json:"title"`
		URL       string `json:"url"`
		Thumbnail string `json:"thumbnail"`
	} `json:"results"`
}

// Search queries Openverse for images matching the free-text query.
func (c *OpenverseClient) Search(ctx context.Context, query string) ([]Image, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page_size", strconv.Itoa(openversePageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/images/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building Openverse request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying Openverse: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Openverse returned status %d", resp.StatusCode)
	}

	var res openverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decoding Openverse response: %w", err)
	}

	images := make([]Image, 0, len(res.Results))

	for _, r := range res.Results {
		thumb := r.Thumbnail
		if thumb == "" {
			thumb = r.URL
		}

		images = append(images, Image{
			URL:     thumb,
			FullURL: r.URL,
			Title:   r.Title,
			Source:  SourceOpenverse,
		})
	}

	return images, nil
}
