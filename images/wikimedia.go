// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package images

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/geolens/geolens/utils/httputils"
)

// DefaultCommonsURL is the Wikimedia Commons MediaWiki API endpoint.
const DefaultCommonsURL = "https://commons.wikimedia.org/w/api.php"

const (
	geoSearchRadiusMeters = 5000
	geoSearchLimit        = 20
	textSearchLimit       = 4
	thumbWidth            = 640
)

const userAgent = "geolens/1.0 (+https://github.com/geolens/geolens)"

// WikimediaClient queries the Commons MediaWiki API for geotagged and
// keyword-matched photos.
type WikimediaClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewWikimediaClient creates a client for a Commons-compatible MediaWiki API.
// An empty baseURL selects the public Commons endpoint.
func NewWikimediaClient(baseURL string) *WikimediaClient {
	if baseURL == "" {
		baseURL = DefaultCommonsURL
	}

	return &WikimediaClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &httputils.AppendRequestHeadersRoundTripper{
				Transport: http.DefaultTransport,
				Headers:   map[string]string{"User-Agent": userAgent},
			},
		},
	}
}

type geoSearchResponse struct {
	Query struct {
		GeoSearch []struct {
			PageID int     `json:"pageid"`
			Title  string  `json:"title"`
			Lat    float64 `json:"lat"`
			Lon    float64 `json:"lon"`
			Dist   float64 `json:"dist"`
		} `json:"geosearch"`
	} `json:"query"`
}

type textSearchResponse struct {
	Query struct {
		Search []struct {
			PageID  int    `json:"pageid"`
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

// reTags drops the searchmatch markup MediaWiki embeds in snippets.
var reTags = regexp.MustCompile(`<[^>]*>`)

type imageInfoResponse struct {
	Query struct {
		Pages map[string]struct {
			Title     string `json:"title"`
			ImageInfo []struct {
				URL      string `json:"url"`
				ThumbURL string `json:"thumburl"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

// SearchNearby finds geotagged Commons photos within 5km of the coordinate,
// with their true distances as reported by the geosearch index.
func (c *WikimediaClient) SearchNearby(ctx context.Context, lat, lon float64) ([]Image, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "geosearch")
	params.Set("gscoord", fmt.Sprintf("%f|%f", lat, lon))
	params.Set("gsradius", strconv.Itoa(geoSearchRadiusMeters))
	params.Set("gslimit", strconv.Itoa(geoSearchLimit))
	params.Set("gsnamespace", "6")
	params.Set("format", "json")

	var geo geoSearchResponse
	if err := c.get(ctx, params, &geo); err != nil {
		return nil, err
	}

	if len(geo.Query.GeoSearch) == 0 {
		return nil, nil
	}

	pageIDs := make([]string, 0, len(geo.Query.GeoSearch))
	meta := make(map[string]struct{ lat, lon, dist float64 }, len(geo.Query.GeoSearch))

	for _, page := range geo.Query.GeoSearch {
		id := strconv.Itoa(page.PageID)
		pageIDs = append(pageIDs, id)
		meta[id] = struct{ lat, lon, dist float64 }{page.Lat, page.Lon, page.Dist}
	}

	infos, err := c.imageInfoByPageIDs(ctx, pageIDs)
	if err != nil {
		return nil, err
	}

	images := make([]Image, 0, len(infos))

	for id, img := range infos {
		if m, ok := meta[id]; ok {
			lat, lon, dist := m.lat, m.lon, m.dist
			img.Lat, img.Lon, img.DistanceMeters = &lat, &lon, &dist
		}

		img.Source = SourceWikimediaGeo
		images = append(images, img)
	}

	return images, nil
}

// SearchByText finds Commons photos whose file pages match the query.
func (c *WikimediaClient) SearchByText(ctx context.Context, query string) ([]Image, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srnamespace", "6")
	params.Set("srlimit", strconv.Itoa(textSearchLimit))
	params.Set("format", "json")

	var res textSearchResponse
	if err := c.get(ctx, params, &res); err != nil {
		return nil, err
	}

	if len(res.Query.Search) == 0 {
		return nil, nil
	}

	pageIDs := make([]string, 0, len(res.Query.Search))
	snippets := make(map[string]string, len(res.Query.Search))

	for _, page := range res.Query.Search {
		id := strconv.Itoa(page.PageID)
		pageIDs = append(pageIDs, id)
		snippets[id] = strings.TrimSpace(reTags.ReplaceAllString(page.Snippet, ""))
	}

	infos, err := c.imageInfoByPageIDs(ctx, pageIDs)
	if err != nil {
		return nil, err
	}

	images := make([]Image, 0, len(infos))

	for id, img := range infos {
		img.Description = snippets[id]
		img.Source = SourceWikimediaText
		images = append(images, img)
	}

	return images, nil
}

// imageInfoByPageIDs fetches direct and thumbnail URLs for file pages.
func (c *WikimediaClient) imageInfoByPageIDs(ctx context.Context, pageIDs []string) (map[string]Image, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("pageids", strings.Join(pageIDs, "|"))
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url")
	params.Set("iiurlwidth", strconv.Itoa(thumbWidth))
	params.Set("format", "json")

	var res imageInfoResponse
	if err := c.get(ctx, params, &res); err != nil {
		return nil, err
	}

	images := make(map[string]Image, len(res.Query.Pages))

	for id, page := range res.Query.Pages {
		if len(page.ImageInfo) == 0 {
			continue
		}

		info := page.ImageInfo[0]

		thumb := info.ThumbURL
		if thumb == "" {
			thumb = info.URL
		}

		images[id] = Image{
			URL:     thumb,
			FullURL: info.URL,
			Title:   strings.TrimPrefix(page.Title, "File:"),
		}
	}

	return images, nil
}

func (c *WikimediaClient) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("building Commons request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("querying Commons: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Commons returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding Commons response: %w", err)
	}

	return nil
}
