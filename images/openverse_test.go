// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package images

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenverseSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/", r.URL.Path)
		assert.Equal(t, "seoul street city", r.URL.Query().Get("q"))
		assert.Equal(t, "10", r.URL.Query().Get("page_size"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		fmt.Fprint(w, `{"results":[
			{"title":"Seoul at night","url":"https://ov/full.jpg","thumbnail":"https://ov/thumb.jpg"},
			{"title":"No thumb","url":"https://ov/other.jpg"}
		]}`)
	}))
	defer srv.Close()

	images, err := NewOpenverseClient(srv.URL).Search(context.Background(), "seoul street city")
	require.NoError(t, err)
	require.Len(t, images, 2)

	assert.Equal(t, "https://ov/thumb.jpg", images[0].URL)
	assert.Equal(t, "https://ov/full.jpg", images[0].FullURL)
	assert.Equal(t, "Seoul at night", images[0].Title)
	assert.Equal(t, SourceOpenverse, images[0].Source)

	assert.Equal(t, "https://ov/other.jpg", images[1].URL)
}

func TestOpenverseRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewOpenverseClient(srv.URL).Search(context.Background(), "seoul")

	assert.Error(t, err)
}
