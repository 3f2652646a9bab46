// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/flight_recorder/internal/config"
	"github.com/relabs-tech/flight_recorder/internal/flightlog"
	"github.com/relabs-tech/flight_recorder/internal/indicator"
	"github.com/relabs-tech/flight_recorder/internal/track"
)

// RunGPSTracker reads NMEA sentences from the GPS serial port and
// appends RMC fixes to a numbered track file for recovery. The
// indicator shows fix validity: green while fixes are valid and being
// written, red otherwise.
func RunGPSTracker(ctx context.Context, cfg *config.Config) error {
	ind, err := indicator.New(cfg.Indicator)
	if err != nil {
		return fmt.Errorf("indicator init: %w", err)
	}
	ind.Set(false)
	defer ind.Close()

	if err := flightlog.CheckDir(cfg.Storage.Dir); err != nil {
		return fmt.Errorf("storage check: %w", err)
	}
	sess, err := flightlog.Open(cfg.Storage.Dir, cfg.GPS.TrackPrefix, cfg.Storage.Ext, track.Header)
	if err != nil {
		return fmt.Errorf("track allocation: %w", err)
	}
	defer sess.Close()
	slog.Info("tracking", "file", sess.Path())

	port, err := serial.Open(serial.OpenOptions{
		PortName:        cfg.GPS.SerialPort,
		BaudRate:        uint(cfg.GPS.BaudRate),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	})
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.GPS.SerialPort, err)
	}
	// Closing the port is what unblocks the read loop on shutdown.
	go func() {
		<-ctx.Done()
		port.Close()
	}()
	slog.Info("gps serial port opened", "port", cfg.GPS.SerialPort, "baud", cfg.GPS.BaudRate)

	start := time.Now()
	reader := bufio.NewReader(port)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("gps read: %w", err)
		}
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "$") {
			continue
		}
		sentence, err := nmea.Parse(line)
		if err != nil {
			continue
		}
		if sentence.DataType() != nmea.TypeRMC {
			continue
		}
		fix := track.FromRMC(sentence.(nmea.RMC), time.Since(start))
		if !fix.Valid {
			ind.Set(false)
			continue
		}
		if err := sess.Append(fix.Row()); err != nil {
			slog.Warn("append failed", "err", err)
			ind.Set(false)
			continue
		}
		ind.Set(true)
	}
}
