package app

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/flight_recorder/internal/flight"
)

// writeBenchFlight writes a plausible recorded flight: settle rows, a
// pad wait, a boost, a descent and a rest on the ground.
func writeBenchFlight(t *testing.T, dir string) string {
	t.Helper()
	var alts []float64
	for i := 0; i < 5; i++ {
		alts = append(alts, 87.3)
	}
	for i := 0; i < 60; i++ {
		alts = append(alts, 100)
	}
	for i := 1; i <= 40; i++ {
		alts = append(alts, 100+2*float64(i))
	}
	for i := 1; i <= 80; i++ {
		alts = append(alts, 180-float64(i))
	}
	for i := 0; i < 40; i++ {
		alts = append(alts, 100)
	}

	var b strings.Builder
	b.WriteString(flight.Header + "\n")
	for i, alt := range alts {
		r := flight.Reading{Timestamp: int64(i * 50), Altitude: alt, Pressure: 1001.3, Temperature: 19.5}
		b.WriteString(r.Row() + "\n")
	}
	path := filepath.Join(dir, "flight_00007.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestRunFlightPlot(t *testing.T) {
	path := writeBenchFlight(t, t.TempDir())
	require.NoError(t, RunFlightPlot(path, 50*time.Millisecond))

	f, err := os.Open(strings.TrimSuffix(path, ".csv") + "_analysis.png")
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Greater(t, cfg.Width, 0)
	assert.Greater(t, cfg.Height, 0)
}

func TestRunFlightPlotMissingFile(t *testing.T) {
	err := RunFlightPlot(filepath.Join(t.TempDir(), "flight_00001.csv"), 50*time.Millisecond)
	assert.Error(t, err)
}

func TestRunFlightPlotNoFlight(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString(flight.Header + "\n")
	for i := 0; i < 80; i++ {
		r := flight.Reading{Timestamp: int64(i * 50), Altitude: 100, Pressure: 1001.3, Temperature: 19.5}
		b.WriteString(r.Row() + "\n")
	}
	path := filepath.Join(dir, "flight_00001.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

	err := RunFlightPlot(path, 50*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no flight")
}
