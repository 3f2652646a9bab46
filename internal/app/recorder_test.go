package app

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/flight_recorder/internal/config"
	"github.com/relabs-tech/flight_recorder/internal/flight"
	"github.com/relabs-tech/flight_recorder/internal/flightlog"
	"github.com/relabs-tech/flight_recorder/internal/indicator"
)

type pollResult struct {
	r   flight.Reading
	err error
}

// stubSource feeds canned poll results to the recorder loop.
type stubSource struct {
	results []pollResult
	calls   int
}

func (s *stubSource) Next() (flight.Reading, error) {
	if s.calls >= len(s.results) {
		return flight.Reading{}, errors.New("no more samples")
	}
	res := s.results[s.calls]
	s.calls++
	return res.r, res.err
}

func TestTickAppendsAndSignals(t *testing.T) {
	dir := t.TempDir()
	sess, err := flightlog.Open(dir, "flight_", ".csv", flight.Header)
	require.NoError(t, err)

	src := &stubSource{results: []pollResult{
		{r: flight.Reading{Timestamp: 1000, Altitude: 12.5, Pressure: 1008.2, Temperature: 22.1}},
		{err: errors.New("sensor timeout")},
		{r: flight.Reading{Timestamp: 1100, Altitude: 12.9, Pressure: 1008.0, Temperature: 22.2}},
	}}
	ind := &indicator.Mock{}
	rec := &recorder{src: src, sess: sess, ind: ind}

	rec.tick()
	rec.tick()
	rec.tick()

	// The failed poll drops its sample and goes red; the next tick recovers.
	assert.Equal(t, []bool{true, false, true}, ind.States())

	readings, err := flight.ReadFile(sess.Path())
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.Equal(t, int64(1000), readings[0].Timestamp)
	assert.Equal(t, int64(1100), readings[1].Timestamp)
}

func TestTickAppendFailureGoesRed(t *testing.T) {
	dir := t.TempDir()
	sess, err := flightlog.Open(dir, "flight_", ".csv", flight.Header)
	require.NoError(t, err)
	require.NoError(t, sess.Close())

	src := &stubSource{results: []pollResult{
		{r: flight.Reading{Timestamp: 1000, Altitude: 1, Pressure: 1000, Temperature: 20}},
	}}
	ind := &indicator.Mock{}
	rec := &recorder{src: src, sess: sess, ind: ind}

	rec.tick()

	last, ok := ind.Last()
	require.True(t, ok)
	assert.False(t, last)
}

func TestRunRecorderSensorFailsBeforeStorage(t *testing.T) {
	cfg := config.Default()
	cfg.Indicator.Driver = "off"
	cfg.Sensor.Driver = "ms5611"
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "missing")

	err := RunRecorder(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sensor init")
}

func TestRunRecorderMissingStorageDir(t *testing.T) {
	cfg := config.Default()
	cfg.Indicator.Driver = "off"
	cfg.Sensor.Driver = "sim"
	cfg.Storage.Dir = filepath.Join(t.TempDir(), "missing")

	err := RunRecorder(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage check")
}
