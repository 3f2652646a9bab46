// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package app wires the configured drivers into the runnable tools, one
// Run function per command.
package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/relabs-tech/flight_recorder/internal/config"
	"github.com/relabs-tech/flight_recorder/internal/flight"
	"github.com/relabs-tech/flight_recorder/internal/flightlog"
	"github.com/relabs-tech/flight_recorder/internal/indicator"
	"github.com/relabs-tech/flight_recorder/internal/sensors"
)

// RunRecorder brings up the flight recorder and runs the sampling loop.
// It returns only when startup fails; the caller logs the error and
// halts with the indicator left red. Once recording it runs until power
// is cut, so nothing here takes a context.
func RunRecorder(cfg *config.Config) error {
	ind, err := indicator.New(cfg.Indicator)
	if err != nil {
		return fmt.Errorf("indicator init: %w", err)
	}
	ind.Set(false)

	dev, err := sensors.New(cfg.Sensor)
	if err != nil {
		return fmt.Errorf("sensor init: %w", err)
	}
	reader := sensors.NewReader(dev, cfg.Sensor.SeaLevelHPa)
	if err := reader.Init(); err != nil {
		return fmt.Errorf("sensor init: %w", err)
	}

	if err := flightlog.CheckDir(cfg.Storage.Dir); err != nil {
		return fmt.Errorf("storage check: %w", err)
	}
	sess, err := flightlog.Open(cfg.Storage.Dir, cfg.Storage.Prefix, cfg.Storage.Ext, flight.Header)
	if err != nil {
		return fmt.Errorf("session allocation: %w", err)
	}

	slog.Info("recording", "file", sess.Path(), "interval", cfg.Sensor.SampleInterval)
	ind.Set(true)

	rec := &recorder{src: reader, sess: sess, ind: ind}
	ticker := time.NewTicker(cfg.Sensor.SampleInterval)
	defer ticker.Stop()
	for range ticker.C {
		rec.tick()
	}
	return nil
}

type recorder struct {
	src  sensors.Source
	sess *flightlog.Session
	ind  indicator.Indicator
}

// tick runs one poll-append-signal cycle. A failed cycle goes red and
// drops the sample; the next tick starts fresh.
func (r *recorder) tick() {
	reading, err := r.src.Next()
	if err != nil {
		slog.Warn("sensor poll failed", "err", err)
		r.ind.Set(false)
		return
	}
	if err := r.sess.Append(reading.Row()); err != nil {
		slog.Warn("append failed", "err", err)
		r.ind.Set(false)
		return
	}
	r.ind.Set(true)
}
