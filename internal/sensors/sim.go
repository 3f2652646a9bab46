// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"math"
	"math/rand"
	"time"
)

// Sim synthesizes a ballistic flight so the complete recording path can
// run on a bench with no hardware attached. The profile idles on the
// pad, boosts, coasts to apogee and comes down under parachute.
type Sim struct {
	start    time.Time
	seaLevel float64
	noise    float64 // altitude noise amplitude, m
}

const (
	simPadTime     = 10.0 // s on the pad before liftoff
	simBoostTime   = 2.5  // s of motor burn
	simBoostAccel  = 60.0 // m/s²
	simDescentRate = 5.0  // m/s under parachute
	simGravity     = 9.81
)

// NewSim returns a simulated barometer reporting pressure relative to
// the given sea level reference.
func NewSim(seaLevelHPa float64) *Sim {
	return &Sim{seaLevel: seaLevelHPa, noise: 0.15}
}

// Init restarts the profile clock.
func (s *Sim) Init() error {
	s.start = time.Now()
	return nil
}

// Sense reports the pressure and temperature for the current profile
// altitude.
func (s *Sim) Sense() (Sample, error) {
	alt := s.altitudeAt(time.Since(s.start).Seconds())
	alt += (rand.Float64() - 0.5) * s.noise

	// Inverse of the barometric formula, so a reader converting the
	// pressure back gets the simulated altitude.
	pressure := s.seaLevel * math.Pow(1.0-alt/44330.0, 1.0/0.1903)
	temp := 21.5 - 0.0065*alt + (rand.Float64()-0.5)*0.1
	return Sample{Pressure: pressure, Temperature: temp}, nil
}

// altitudeAt returns the profile altitude t seconds after Init.
func (s *Sim) altitudeAt(t float64) float64 {
	if t < simPadTime {
		return 0
	}
	t -= simPadTime

	if t < simBoostTime {
		return 0.5 * simBoostAccel * t * t
	}
	burnoutAlt := 0.5 * simBoostAccel * simBoostTime * simBoostTime
	burnoutVel := simBoostAccel * simBoostTime
	t -= simBoostTime

	coastTime := burnoutVel / simGravity
	if t < coastTime {
		return burnoutAlt + burnoutVel*t - 0.5*simGravity*t*t
	}
	apogee := burnoutAlt + burnoutVel*burnoutVel/(2*simGravity)
	t -= coastTime

	alt := apogee - simDescentRate*t
	if alt < 0 {
		return 0
	}
	return alt
}

// Close is a no-op.
func (s *Sim) Close() error { return nil }
