// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package indicator drives the single red/green status light. Red means
// starting up or faulted, green means recording normally. Setting the
// light never fails; hardware write errors are logged and dropped so a
// flaky LED cannot take the sampling loop down with it.
package indicator

import (
	"fmt"
	"sync"

	"github.com/relabs-tech/flight_recorder/internal/config"
)

// Indicator is the status light contract.
type Indicator interface {
	// Set latches the light: green when ok, red otherwise.
	Set(ok bool)
	Close() error
}

// Compile-time driver checks.
var (
	_ Indicator = (*APA102)(nil)
	_ Indicator = (*GPIO)(nil)
	_ Indicator = (*Off)(nil)
	_ Indicator = (*Mock)(nil)
)

// New builds the indicator selected by cfg.
func New(cfg config.IndicatorConfig) (Indicator, error) {
	switch cfg.Driver {
	case "apa102":
		return NewAPA102(cfg.SPIDevice, cfg.Intensity)
	case "gpio":
		return NewGPIO(cfg.RedPin, cfg.GreenPin)
	case "off":
		return Off{}, nil
	default:
		return nil, fmt.Errorf("unknown indicator driver %q", cfg.Driver)
	}
}

// Off is the disabled indicator.
type Off struct{}

// Set does nothing.
func (Off) Set(ok bool) {}

// Close does nothing.
func (Off) Close() error { return nil }

// Mock records status transitions for tests.
type Mock struct {
	mu     sync.Mutex
	states []bool
}

// Set appends the new state.
func (m *Mock) Set(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, ok)
}

// Close does nothing.
func (m *Mock) Close() error { return nil }

// States returns all recorded transitions in order.
func (m *Mock) States() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bool, len(m.states))
	copy(out, m.states)
	return out
}

// Last reports the most recent state, or false if none was set.
func (m *Mock) Last() (bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.states) == 0 {
		return false, false
	}
	return m.states[len(m.states)-1], true
}
