// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/geolens/geolens/estimate"
	"github.com/geolens/geolens/geocode"
)

var estimateOptions struct {
	NominatimURL   string
	InferenceURL   string
	TesseractLangs []string
	JSON           bool
}

var estimateCmd = &cobra.Command{
	Use:   "estimate <photo>...",
	Short: "Estimate where one or more photos were taken",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		geocoder := geocode.NewNominatimGeocoder(estimateOptions.NominatimURL)
		estimator := newEstimator(geocoder, estimateOptions.InferenceURL, estimateOptions.TesseractLangs)

		var bar *progressbar.ProgressBar
		if len(args) > 1 && isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(args),
				progressbar.OptionSetDescription("Estimating"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		var failures int

		for _, path := range args {
			if err := estimateOne(cmd.Context(), estimator, path); err != nil {
				failures++

				log.Printf("%s: %v", path, err)
			}

			if bar != nil {
				_ = bar.Add(1)
			}
		}

		if failures > 0 {
			return fmt.Errorf("%d of %d photos failed", failures, len(args))
		}

		return nil
	},
}

func estimateOne(ctx context.Context, estimator *estimate.Estimator, path string) error {
	image, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result, err := estimator.Estimate(ctx, image)

	switch {
	case errors.Is(err, estimate.ErrNoCandidates), errors.Is(err, estimate.ErrNoResolution):
		fmt.Printf("%s: %v\n", path, err)

		return nil
	case err != nil:
		return err
	}

	if estimateOptions.JSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(out))

		return nil
	}

	for i, loc := range result.Locations {
		fmt.Printf("%s #%d (%.2f) %s [%f, %f] via %s\n",
			path, i+1, loc.RecommendationScore, loc.DisplayName, loc.Lat, loc.Lon, loc.Source)
	}

	return nil
}

func init() {
	estimateCmd.Flags().StringVar(&estimateOptions.NominatimURL, "nominatim", "", "Nominatim base URL (defaults to the public instance)")
	estimateCmd.Flags().StringVar(&estimateOptions.InferenceURL, "inference", "", "model-serving sidecar URL for object detection and classification")
	estimateCmd.Flags().StringSliceVar(&estimateOptions.TesseractLangs, "tesseract-langs", nil, "tesseract languages (defaults to kor,eng)")
	estimateCmd.Flags().BoolVar(&estimateOptions.JSON, "json", false, "print full results as JSON")

	rootCmd.AddCommand(estimateCmd)
}
