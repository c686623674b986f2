// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/geolens/geolens/utils/httputils"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var traceHTTP bool

var rootCmd = &cobra.Command{
	Use:   "geolens",
	Short: "estimate where a photo was taken and explore the area",
	Long: `
geolens guesses the location of a photo from the text, objects, and scenery it
contains, resolves the guesses against OpenStreetMap, and gathers openly
licensed street-level photos around any coordinate.
`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if traceHTTP {
			// Every upstream client builds on the default transport, so
			// wrapping it here traces all of them.
			http.DefaultTransport = &httputils.LoggingRoundTripper{
				Transport: http.DefaultTransport,
				Writer:    os.Stderr,
				DumpBody:  false,
			}
		}
	},
}

var Version = "dev"

func init() {
	rootCmd.PersistentFlags().BoolVar(&traceHTTP, "trace-http", false, "dump upstream HTTP traffic to stderr")
}

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
