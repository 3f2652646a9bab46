package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/flight_recorder/internal/flight"
)

// trapezoidFlight builds a log with five settle rows, a long pad wait at
// 100 m indicated altitude, a linear boost, a linear descent and a rest
// on the ground, sampled every 50 ms.
func trapezoidFlight() []flight.Reading {
	var alts []float64
	for i := 0; i < 5; i++ {
		alts = append(alts, 55.5) // settle garbage, dropped by Analyze
	}
	for i := 0; i < 60; i++ {
		alts = append(alts, 100.0)
	}
	for i := 1; i <= 40; i++ {
		alts = append(alts, 100.0+2.0*float64(i)) // climb to 180
	}
	for i := 1; i <= 80; i++ {
		alts = append(alts, 180.0-float64(i)) // descend back to 100
	}
	for i := 0; i < 40; i++ {
		alts = append(alts, 100.0)
	}

	readings := make([]flight.Reading, len(alts))
	for i, a := range alts {
		readings[i] = flight.Reading{
			Timestamp:   int64(i * 50),
			Altitude:    a,
			Pressure:    1000,
			Temperature: 20,
		}
	}
	return readings
}

func TestAnalyzeTrapezoidFlight(t *testing.T) {
	res, err := Analyze(trapezoidFlight(), 0.05)
	require.NoError(t, err)

	assert.Equal(t, 100.0, res.GroundLevel)
	assert.Equal(t, 49, res.Launch)
	assert.Equal(t, 178, res.Landing)

	require.Len(t, res.Altitude, 129)
	assert.Len(t, res.Time, 129)
	assert.Len(t, res.Velocity, 129)
	assert.Len(t, res.Acceleration, 129)

	assert.Equal(t, 50, res.ApogeeIndex)
	assert.InDelta(t, 80.0, res.Altitude[res.ApogeeIndex], 1e-9)

	assert.InDelta(t, 0.0, res.Time[0], 1e-9)
	assert.InDelta(t, 6.4, res.Stats.Duration, 1e-9)

	assert.InDelta(t, 80.0, res.Stats.MaxAltitudeM, 1e-9)
	assert.InDelta(t, 80.0*3.28084, res.Stats.MaxAltitudeFt, 1e-9)
	assert.InDelta(t, 40.0, res.Stats.MaxVelocity, 1e-6)
	assert.InDelta(t, 80.0, res.Stats.MaxAcceleration, 1e-6)
}

func TestAnalyzeNotEnoughSamples(t *testing.T) {
	readings := trapezoidFlight()[:20]
	_, err := Analyze(readings, 0.05)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not enough samples")
}

func TestAnalyzeNoFlight(t *testing.T) {
	readings := make([]flight.Reading, 80)
	for i := range readings {
		readings[i] = flight.Reading{Timestamp: int64(i * 50), Altitude: 100}
	}
	_, err := Analyze(readings, 0.05)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no flight")
}

func TestAnalyzeBadInterval(t *testing.T) {
	_, err := Analyze(trapezoidFlight(), 0)
	require.Error(t, err)
}

func TestGroundLevelFlat(t *testing.T) {
	alt := make([]float64, 40)
	for i := range alt {
		alt[i] = 100.0
	}
	g, err := GroundLevel(alt)
	require.NoError(t, err)
	assert.Equal(t, 100.0, g)
}

func TestGroundLevelRoundsToHalfMeter(t *testing.T) {
	alt := make([]float64, 40)
	for i := range alt {
		alt[i] = 99.8
	}
	g, err := GroundLevel(alt)
	require.NoError(t, err)
	assert.Equal(t, 100.0, g)
}

func TestGroundLevelPrefersLargerCluster(t *testing.T) {
	var alt []float64
	for i := 0; i < 31; i++ {
		alt = append(alt, 100.0)
	}
	for i := 0; i < 29; i++ {
		alt = append(alt, 50.0)
	}
	g, err := GroundLevel(alt)
	require.NoError(t, err)
	assert.Equal(t, 100.0, g)
}

func TestGroundLevelTieGoesLow(t *testing.T) {
	var alt []float64
	for i := 0; i < 30; i++ {
		alt = append(alt, 100.0)
	}
	for i := 0; i < 30; i++ {
		alt = append(alt, 50.0)
	}
	g, err := GroundLevel(alt)
	require.NoError(t, err)
	assert.Equal(t, 50.0, g)
}

func TestGroundLevelUnstable(t *testing.T) {
	alt := make([]float64, 60)
	for i := range alt {
		alt[i] = float64(i%2) * 10.0
	}
	_, err := GroundLevel(alt)
	require.Error(t, err)
}

func TestFlightWindow(t *testing.T) {
	calib := []float64{0, 0, 0, 0, 0, 5, 10, 20, 10, 5, 0, 0, 0}
	launch, landing := FlightWindow(calib)
	assert.Equal(t, 0, launch) // 4 minus the margin, clamped
	assert.Equal(t, 10, landing)
}

func TestFlightWindowNeverGrounded(t *testing.T) {
	calib := []float64{5, 6, 20, 6, 5}
	launch, landing := FlightWindow(calib)
	assert.Equal(t, 0, launch)
	assert.Equal(t, len(calib)-1, landing)
}

func TestGradient(t *testing.T) {
	got := Gradient([]float64{0, 1, 4, 9, 16}, 1.0)
	want := []float64{1, 2, 4, 6, 7}
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "index %d", i)
	}
}

func TestGradientScalesWithInterval(t *testing.T) {
	got := Gradient([]float64{0, 1, 2, 3}, 0.05)
	for i, w := range []float64{20, 20, 20, 20} {
		assert.InDelta(t, w, got[i], 1e-9, "index %d", i)
	}
}

func TestGradientShortSeries(t *testing.T) {
	assert.Equal(t, []float64{0}, Gradient([]float64{7}, 0.05))
	got := Gradient([]float64{1, 3}, 1.0)
	assert.InDelta(t, 2.0, got[0], 1e-9)
	assert.InDelta(t, 2.0, got[1], 1e-9)
}

func TestSmoothCenteredEdges(t *testing.T) {
	y := make([]float64, 30)
	for i := range y {
		y[i] = 3.5
	}
	got := SmoothCentered(y, 10)

	for i := 0; i < 5; i++ {
		assert.True(t, math.IsNaN(got[i]), "index %d", i)
	}
	for i := 5; i <= len(y)-5; i++ {
		assert.InDelta(t, 3.5, got[i], 1e-9, "index %d", i)
	}
	for i := len(y) - 4; i < len(y); i++ {
		assert.True(t, math.IsNaN(got[i]), "index %d", i)
	}
}

func TestSmoothCenteredLinear(t *testing.T) {
	y := make([]float64, 30)
	for i := range y {
		y[i] = float64(i)
	}
	got := SmoothCentered(y, 10)
	// The even window reaches one sample further back than forward, so a
	// linear series smooths to itself minus half a step.
	for i := 5; i <= len(y)-5; i++ {
		assert.InDelta(t, float64(i)-0.5, got[i], 1e-9, "index %d", i)
	}
}
