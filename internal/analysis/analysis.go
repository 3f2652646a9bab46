// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package analysis turns a raw flight log into a calibrated flight
// window with derived velocity, acceleration and summary statistics.
package analysis

import (
	"fmt"
	"math"

	"github.com/relabs-tech/flight_recorder/internal/flight"
)

// Tunables sized for the 20 Hz logs the recorder writes.
const (
	settleSamples   = 5   // readings dropped while the sensor settles
	stableWindow    = 20  // rolling window of the ground level search
	stableStd       = 0.5 // m, max std dev of a stable window
	flightThreshold = 1.0 // m above ground separating flight from rest
	launchMargin    = 10  // samples kept before the detected launch
	accelWindow     = 10  // samples in the acceleration smoothing window
	feetPerMeter    = 3.28084
)

// Stats summarizes one flight.
type Stats struct {
	MaxAltitudeM    float64
	MaxAltitudeFt   float64
	MaxVelocity     float64 // m/s
	MaxAcceleration float64 // m/s², from the smoothed series
	Duration        float64 // s
}

// Result is the analyzed flight window. The slice fields all have the
// same length and share indices; Launch and Landing locate the window
// in the settled input series.
type Result struct {
	GroundLevel  float64
	Launch       int       // first analyzed sample
	Landing      int       // first sample after the analyzed window
	ApogeeIndex  int       // index into the window slices
	Time         []float64 // s, zero at the window start
	Altitude     []float64 // m above ground
	Velocity     []float64 // m/s
	Acceleration []float64 // m/s², smoothed; NaN while the window fills
	Stats        Stats
}

// Analyze processes a full recording. dt is the sampling interval in
// seconds.
func Analyze(readings []flight.Reading, dt float64) (*Result, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("sample interval must be positive, got %g", dt)
	}
	if len(readings) < settleSamples+stableWindow {
		return nil, fmt.Errorf("not enough samples: got %d, need at least %d",
			len(readings), settleSamples+stableWindow)
	}

	settled := readings[settleSamples:]
	alt := make([]float64, len(settled))
	tsec := make([]float64, len(settled))
	for i, r := range settled {
		alt[i] = r.Altitude
		tsec[i] = float64(r.Timestamp) / 1000.0
	}

	ground, err := GroundLevel(alt)
	if err != nil {
		return nil, err
	}
	calibrated := make([]float64, len(alt))
	for i, a := range alt {
		calibrated[i] = a - ground
	}

	launch, landing := FlightWindow(calibrated)
	if landing-launch < 2 {
		return nil, fmt.Errorf("no flight found in %d samples", len(settled))
	}

	window := calibrated[launch:landing]
	times := make([]float64, len(window))
	for i := range times {
		times[i] = tsec[launch+i] - tsec[launch]
	}

	velocity := Gradient(window, dt)
	accel := SmoothCentered(Gradient(velocity, dt), accelWindow)
	apogee := argMax(window)

	maxAlt := window[apogee]
	return &Result{
		GroundLevel:  ground,
		Launch:       launch,
		Landing:      landing,
		ApogeeIndex:  apogee,
		Time:         times,
		Altitude:     window,
		Velocity:     velocity,
		Acceleration: accel,
		Stats: Stats{
			MaxAltitudeM:    maxAlt,
			MaxAltitudeFt:   maxAlt * feetPerMeter,
			MaxVelocity:     maxIgnoringNaN(velocity),
			MaxAcceleration: maxIgnoringNaN(accel),
			Duration:        times[len(times)-1],
		},
	}, nil
}

// GroundLevel finds the resting altitude. It collects readings from
// periods where a rolling window is stable, rounds them to the nearest
// half meter and returns the most common value. Ties go to the lowest.
func GroundLevel(alt []float64) (float64, error) {
	std := rollingStd(alt, stableWindow)
	counts := make(map[float64]int)
	for i, s := range std {
		if math.IsNaN(s) || s >= stableStd {
			continue
		}
		r := math.RoundToEven(alt[i]*2) / 2
		counts[r]++
	}
	if len(counts) == 0 {
		return 0, fmt.Errorf("no stable altitude readings found")
	}

	ground, best := 0.0, 0
	for v, n := range counts {
		if n > best || (n == best && v < ground) {
			ground, best = v, n
		}
	}
	return ground, nil
}

// FlightWindow locates the flight inside a calibrated altitude series.
// It walks outward from the apogee: backwards until the rocket was still
// near the ground, forwards until it is back there. The analyzed window
// is calibrated[launch:landing], with a few extra samples kept before
// the launch.
func FlightWindow(calibrated []float64) (launch, landing int) {
	apogee := argMax(calibrated)

	launch = 0
	for i := apogee; i >= 1; i-- {
		if calibrated[i] <= flightThreshold {
			launch = i
			break
		}
	}

	landing = len(calibrated) - 1
	for i := apogee; i < len(calibrated); i++ {
		if calibrated[i] <= flightThreshold {
			landing = i
			break
		}
	}

	launch = max(0, launch-launchMargin)
	landing = min(len(calibrated)-1, landing)
	return launch, landing
}

// Gradient computes dy/dt with central differences, one sided at the
// ends. Series shorter than two samples yield zeros.
func Gradient(y []float64, dt float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	out[0] = (y[1] - y[0]) / dt
	out[n-1] = (y[n-1] - y[n-2]) / dt
	for i := 1; i < n-1; i++ {
		out[i] = (y[i+1] - y[i-1]) / (2 * dt)
	}
	return out
}

// SmoothCentered is a centered moving mean. Positions where the window
// does not fully fit are NaN.
func SmoothCentered(y []float64, window int) []float64 {
	out := make([]float64, len(y))
	lead := (window - 1) / 2
	lag := window - 1 - lead
	for i := range out {
		lo, hi := i-lag, i+lead
		if lo < 0 || hi >= len(y) {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		for _, v := range y[lo : hi+1] {
			sum += v
		}
		out[i] = sum / float64(window)
	}
	return out
}

func rollingStd(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	for i := range out {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		seg := xs[i-window+1 : i+1]
		var sum float64
		for _, v := range seg {
			sum += v
		}
		mean := sum / float64(window)
		var ss float64
		for _, v := range seg {
			d := v - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}

func argMax(xs []float64) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}

func maxIgnoringNaN(xs []float64) float64 {
	best := math.NaN()
	for _, x := range xs {
		if math.IsNaN(x) {
			continue
		}
		if math.IsNaN(best) || x > best {
			best = x
		}
	}
	return best
}
