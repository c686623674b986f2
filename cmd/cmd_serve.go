// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"

	"github.com/geolens/geolens/estimate"
	"github.com/geolens/geolens/favorites"
	"github.com/geolens/geolens/geocode"
	"github.com/geolens/geolens/images"
	"github.com/geolens/geolens/route"
	"github.com/geolens/geolens/server"
	"github.com/geolens/geolens/vision"
)

var serveOptions struct {
	Listen         string
	DbPath         string
	NominatimURL   string
	CommonsURL     string
	OpenverseURL   string
	OSRMURL        string
	InferenceURL   string
	TesseractLangs []string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := os.MkdirAll(serveOptions.DbPath, 0o750); err != nil {
			return fmt.Errorf("creating db directory: %w", err)
		}

		dbpath := filepath.Join(serveOptions.DbPath, "geolens.duckdb")

		db, err := sql.Open("duckdb", dbpath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		favoriteRepo := favorites.NewRepository(db)
		if err := favoriteRepo.CreateSchema(); err != nil {
			return fmt.Errorf("creating favorites schema: %w", err)
		}

		geocoder := geocode.NewNominatimGeocoder(serveOptions.NominatimURL)

		srv := server.NewServer(
			geocoder,
			newEstimator(geocoder, serveOptions.InferenceURL, serveOptions.TesseractLangs),
			images.NewAggregator(
				images.NewWikimediaClient(serveOptions.CommonsURL),
				images.NewOpenverseClient(serveOptions.OpenverseURL),
				geocoder,
			),
			route.NewOSRMClient(serveOptions.OSRMURL),
			favoriteRepo,
			serveOptions.Listen,
		)

		return srv.Run()
	},
}

// newEstimator wires the estimation pipeline. The inference sidecar is
// optional; without it only the OCR and composition lanes run.
func newEstimator(geocoder geocode.Geocoder, inferenceURL string, tesseractLangs []string) *estimate.Estimator {
	extractor := &estimate.Extractor{
		Recognizer: vision.NewTesseractRecognizer(tesseractLangs...),
		Analyzer:   vision.NewColorAnalyzer(),
	}

	if inferenceURL != "" {
		inference := vision.NewInferenceClient(inferenceURL)
		extractor.Detector = inference
		extractor.Classifier = inference
	}

	return estimate.NewEstimator(extractor, estimate.NewRanker(geocoder))
}

func init() {
	serveCmd.Flags().StringVar(&serveOptions.Listen, "listen", "localhost:8080", "address to listen on")
	serveCmd.Flags().StringVar(&serveOptions.DbPath, "db", "db", "directory holding the duckdb database")
	serveCmd.Flags().StringVar(&serveOptions.NominatimURL, "nominatim", "", "Nominatim base URL (defaults to the public instance)")
	serveCmd.Flags().StringVar(&serveOptions.CommonsURL, "commons", "", "Wikimedia Commons API URL (defaults to the public instance)")
	serveCmd.Flags().StringVar(&serveOptions.OpenverseURL, "openverse", "", "Openverse API URL (defaults to the public instance)")
	serveCmd.Flags().StringVar(&serveOptions.OSRMURL, "osrm", "", "OSRM base URL (defaults to the public demo server)")
	serveCmd.Flags().StringVar(&serveOptions.InferenceURL, "inference", "", "model-serving sidecar URL for object detection and classification")
	serveCmd.Flags().StringSliceVar(&serveOptions.TesseractLangs, "tesseract-langs", nil, "tesseract languages (defaults to kor,eng)")

	rootCmd.AddCommand(serveCmd)
}
