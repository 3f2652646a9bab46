// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package history persists telemetry received by the ground station so
// the web UI can backfill its charts after a reconnect.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/relabs-tech/flight_recorder/internal/flight"
)

// Entry is one stored reading together with its ground side arrival time.
type Entry struct {
	Received int64          `json:"received_ms"` // unix milliseconds
	Reading  flight.Reading `json:"reading"`
}

// Store keeps received readings in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. Pass ":memory:" for a
// throwaway in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// A single connection keeps an in-memory database alive between calls.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS readings (
			received_ms INTEGER NOT NULL,
			timestamp_ms INTEGER NOT NULL,
			altitude_m REAL NOT NULL,
			pressure_hpa REAL NOT NULL,
			temp_c REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_readings_received ON readings(received_ms);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Insert stores one reading.
func (s *Store) Insert(received time.Time, r flight.Reading) error {
	_, err := s.db.Exec(`
		INSERT INTO readings (received_ms, timestamp_ms, altitude_m, pressure_hpa, temp_c)
		VALUES (?, ?, ?, ?, ?)`,
		received.UnixMilli(), r.Timestamp, r.Altitude, r.Pressure, r.Temperature)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	return nil
}

// Range returns readings received between fromMS and toMS (unix
// milliseconds, bounds inclusive), oldest first.
func (s *Store) Range(fromMS, toMS int64) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT received_ms, timestamp_ms, altitude_m, pressure_hpa, temp_c
		FROM readings
		WHERE received_ms BETWEEN ? AND ?
		ORDER BY received_ms ASC`, fromMS, toMS)
	if err != nil {
		return nil, fmt.Errorf("query readings: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Received, &e.Reading.Timestamp, &e.Reading.Altitude, &e.Reading.Pressure, &e.Reading.Temperature); err != nil {
			return nil, fmt.Errorf("scan reading: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
