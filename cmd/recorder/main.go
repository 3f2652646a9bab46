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
	"github.com/relabs-tech/flight_recorder/internal/config"
	"github.com/relabs-tech/flight_recorder/internal/logging"
)

const appName = "flight-recorder"

// version is stamped by the build.
var version = "dev"

func main() {
	configPath := flag.String("config", "recorder.yaml", "path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, version, appName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	slog.Info("starting", "version", version)

	if err := app.RunRecorder(cfg); err != nil {
		slog.Error("startup failed, halting", "err", err)
		// Fail stop: park with the indicator red until power is cut.
		for {
			time.Sleep(time.Hour)
		}
	}
}
