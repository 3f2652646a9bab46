// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package flightlog allocates and writes the numbered log files on the
// recorder's removable storage. File names follow <prefix><NNNNN><ext>
// with a five digit, zero padded sequence number, e.g. flight_00017.csv.
// Every appended line is synced so a power cut mid flight loses at most
// the row being written.
package flightlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Session is the single numbered log file of one recording run. It is
// created by Open and only ever appended to after that.
type Session struct {
	f    *os.File
	path string
	seq  int
}

// CheckDir verifies that the storage directory is mounted and usable.
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("storage dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage dir %s: not a directory", dir)
	}
	return nil
}

// NextSeq scans dir for files named <prefix><digits><ext> and returns the
// highest parsed sequence number plus one, or 1 when none match. Entries
// whose middle part is not a plain digit run are ignored.
func NextSeq(dir, prefix, ext string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("scan storage dir: %w", err)
	}
	high := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		digits := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext)
		if !isDigits(digits) {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil || n <= 0 {
			continue
		}
		if n > high {
			high = n
		}
	}
	return high + 1, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Open allocates the next numbered file under dir and writes the header
// line to it. The file is created exclusively so a second recorder run
// can never write into an existing log.
func Open(dir, prefix, ext, header string) (*Session, error) {
	seq, err := NextSeq(dir, prefix, ext)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s%05d%s", prefix, seq, ext))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create session file: %w", err)
	}
	s := &Session{f: f, path: path, seq: seq}
	if err := s.Append(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}
	return s, nil
}

// Append writes one line to the session file and forces it to storage.
func (s *Session) Append(line string) error {
	if _, err := fmt.Fprintln(s.f, line); err != nil {
		return fmt.Errorf("append %s: %w", s.path, err)
	}
	if err := s.f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", s.path, err)
	}
	return nil
}

// Path returns the full path of the session file.
func (s *Session) Path() string { return s.path }

// Seq returns the session's sequence number.
func (s *Session) Seq() int { return s.seq }

// Close releases the file handle. The in-flight recorder never calls
// this; it exists for the bench tools and tests.
func (s *Session) Close() error {
	return s.f.Close()
}
