// Copyright 2025 The GeoLens Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/geolens/geolens/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
