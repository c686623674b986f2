// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the estimation pipeline, street image aggregator,
// geocoding, routing, and favorites over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/geolens/geolens/estimate"
	"github.com/geolens/geolens/favorites"
	"github.com/geolens/geolens/geocode"
	"github.com/geolens/geolens/images"
	"github.com/geolens/geolens/route"
	"github.com/geolens/geolens/spatial"
)

// maxUploadBytes caps estimate uploads; phone photos stay well under this.
const maxUploadBytes = 20 << 20

// Router computes driving routes between two points.
type Router interface {
	Drive(ctx context.Context, from, to spatial.Point) (*route.Route, error)
}

type Server struct {
	geocoder   geocode.Geocoder
	estimator  *estimate.Estimator
	aggregator *images.Aggregator
	router     Router
	favorites  favorites.Repository
	listenAddr string
}

func NewServer(
	geocoder geocode.Geocoder,
	estimator *estimate.Estimator,
	aggregator *images.Aggregator,
	router Router,
	favoriteRepo favorites.Repository,
	listenAddr string,
) *Server {
	return &Server{
		geocoder:   geocoder,
		estimator:  estimator,
		aggregator: aggregator,
		router:     router,
		favorites:  favoriteRepo,
		listenAddr: listenAddr,
	}
}

// Run starts the HTTP server and blocks.
func (s *Server) Run() error {
	return s.setupRouter(gin.Default()).Run(s.listenAddr)
}

func (s *Server) setupRouter(r *gin.Engine) *gin.Engine {
	r.Use(corsMiddleware())

	r.GET("/api/health", s.health)
	r.GET("/api/street-images", s.streetImages)
	r.GET("/api/geocode", s.geocodeSearch)
	r.GET("/api/reverse", s.reverseGeocode)
	r.GET("/api/route", s.driveRoute)
	r.POST("/api/estimate", s.estimateLocation)
	r.GET("/api/favorites", s.listFavorites)
	r.POST("/api/favorites", s.saveFavorite)
	r.DELETE("/api/favorites/:id", s.deleteFavorite)

	return r
}

// corsMiddleware allows any origin. The API serves a static web frontend
// that may be hosted anywhere and carries no credentials.
func corsMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Access-Control-Allow-Origin", "*")
		ctx.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		ctx.Header("Access-Control-Allow-Headers", "Content-Type")

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusNoContent)

			return
		}

		ctx.Next()
	}
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseLatLon validates the lat/lon query parameters. The second return
// value is false when validation failed and a response was already written.
func parseLatLon(ctx *gin.Context, latParam, lonParam string) (spatial.Point, bool) {
	lat, latErr := strconv.ParseFloat(ctx.Query(latParam), 64)
	lon, lonErr := strconv.ParseFloat(ctx.Query(lonParam), 64)

	point := spatial.Point{Lat: lat, Lng: lon}
	if latErr != nil || lonErr != nil || !point.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "valid lat/lon required"})

		return spatial.Point{}, false
	}

	return point, true
}

func (s *Server) streetImages(ctx *gin.Context) {
	point, ok := parseLatLon(ctx, "lat", "lon")
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, s.aggregator.Aggregate(ctx.Request.Context(), point.Lat, point.Lng))
}

func (s *Server) geocodeSearch(ctx *gin.Context) {
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})

		return
	}

	var countryCodes []string
	if cc := ctx.Query("countrycodes"); cc != "" {
		countryCodes = splitCodes(cc)
	}

	places, err := s.geocoder.Search(ctx.Request.Context(), query, countryCodes)
	if err != nil {
		ctx.JSON(geocodeStatus(err), gin.H{"error": err.Error()})

		return
	}

	if places == nil {
		places = []geocode.Place{}
	}

	ctx.JSON(http.StatusOK, places)
}

func (s *Server) reverseGeocode(ctx *gin.Context) {
	point, ok := parseLatLon(ctx, "lat", "lon")
	if !ok {
		return
	}

	place, err := s.geocoder.Reverse(ctx.Request.Context(), point.Lat, point.Lng)
	if err != nil {
		ctx.JSON(geocodeStatus(err), gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, place)
}

// parsePointPair parses a "lat,lon" query parameter.
func parsePointPair(ctx *gin.Context, param string) (spatial.Point, bool) {
	parts := strings.Split(ctx.Query(param), ",")
	if len(parts) == 2 {
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)

		point := spatial.Point{Lat: lat, Lng: lon}
		if latErr == nil && lonErr == nil && point.Valid() {
			return point, true
		}
	}

	ctx.JSON(http.StatusBadRequest, gin.H{"error": param + " must be lat,lon"})

	return spatial.Point{}, false
}

func (s *Server) driveRoute(ctx *gin.Context) {
	from, ok := parsePointPair(ctx, "from")
	if !ok {
		return
	}

	to, ok := parsePointPair(ctx, "to")
	if !ok {
		return
	}

	found, err := s.router.Drive(ctx.Request.Context(), from, to)
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, found)
}

func (s *Server) estimateLocation(ctx *gin.Context) {
	file, _, err := ctx.Request.FormFile("image")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})

		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "reading photo failed"})

		return
	}

	result, err := s.estimator.Estimate(ctx.Request.Context(), image)
	if err != nil {
		if errors.Is(err, estimate.ErrNoCandidates) || errors.Is(err, estimate.ErrNoResolution) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, result)
}

func (s *Server) listFavorites(ctx *gin.Context) {
	found, err := s.favorites.List()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	if found == nil {
		found = []*favorites.Favorite{}
	}

	ctx.JSON(http.StatusOK, found)
}

type saveFavoriteRequest struct {
	Name        string  `json:"name" binding:"required"`
	DisplayName string  `json:"display_name"`
	Source      string  `json:"source"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

func (s *Server) saveFavorite(ctx *gin.Context) {
	var req saveFavoriteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	point := spatial.Point{Lat: req.Lat, Lng: req.Lon}
	if !point.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "valid lat/lon required"})

		return
	}

	favorite := &favorites.Favorite{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Source:      req.Source,
		Point:       &point,
	}

	if err := s.favorites.Save(favorite); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, favorite)
}

func (s *Server) deleteFavorite(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})

		return
	}

	if err := s.favorites.Delete(id); err != nil {
		if errors.Is(err, favorites.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

			return
		}

		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

// geocodeStatus maps provider failures back onto HTTP statuses.
func geocodeStatus(err error) int {
	switch {
	case geocode.IsRateLimitError(err):
		return http.StatusTooManyRequests
	case geocode.IsTimeoutError(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func splitCodes(cc string) []string {
	var codes []string

	for _, code := range strings.Split(cc, ",") {
		code = strings.TrimSpace(strings.ToLower(code))
		if code != "" {
			codes = append(codes, code)
		}
	}

	return codes
}
