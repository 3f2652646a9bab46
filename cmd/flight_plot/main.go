// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/relabs-tech/flight_recorder/internal/app"
	"github.com/relabs-tech/flight_recorder/internal/logging"
)

const appName = "flight-plot"

var version = "dev"

func main() {
	interval := flag.Duration("interval", 50*time.Millisecond, "sample interval the flight was recorded at")
	logLevel := flag.String("log_level", "info", "log level (debug, info, warn, error)")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <flight.csv>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger, err := logging.New(*logLevel, version, appName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(logger)

	if err := app.RunFlightPlot(flag.Arg(0), *interval); err != nil {
		slog.Error("analysis failed", "err", err)
		os.Exit(1)
	}
}
