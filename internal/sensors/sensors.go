package sensors

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/relabs-tech/flight_recorder/internal/config"
	"github.com/relabs-tech/flight_recorder/internal/flight"
)

// ErrMeasurement marks a measurement cycle that did not complete. The
// sampling loop treats it as transient and polls again on its next tick.
var ErrMeasurement = errors.New("measurement incomplete")

// Sample is one raw measurement from a barometer.
type Sample struct {
	Pressure    float64 // hPa
	Temperature float64 // °C
}

// Barometer is a pressure/temperature sensor behind its bus driver.
type Barometer interface {
	// Init configures the device. An error means the sensor is
	// unreachable and the recorder must not start.
	Init() error
	// Sense triggers one measurement cycle. Failed cycles wrap
	// ErrMeasurement.
	Sense() (Sample, error)
	Close() error
}

// Compile-time driver checks.
var (
	_ Barometer = (*BMP)(nil)
	_ Barometer = (*Serial)(nil)
	_ Barometer = (*Sim)(nil)
)

// New builds the barometer selected by cfg.
func New(cfg config.SensorConfig) (Barometer, error) {
	switch cfg.Driver {
	case "bmxx80":
		return NewBMP(cfg), nil
	case "serial":
		return NewSerial(cfg), nil
	case "sim":
		return NewSim(cfg.SeaLevelHPa), nil
	default:
		return nil, fmt.Errorf("unknown sensor driver %q", cfg.Driver)
	}
}

// Source produces successive flight readings.
type Source interface {
	Next() (flight.Reading, error)
}

// Reader turns a barometer's measurements into timestamped readings with
// a derived altitude. Timestamps count milliseconds since the Reader was
// built, on the monotonic clock.
type Reader struct {
	dev      Barometer
	seaLevel float64
	boot     time.Time
}

var _ Source = (*Reader)(nil)

// NewReader wraps dev. seaLevelHPa is the reference pressure for the
// altitude conversion.
func NewReader(dev Barometer, seaLevelHPa float64) *Reader {
	return &Reader{dev: dev, seaLevel: seaLevelHPa, boot: time.Now()}
}

// Init configures the underlying device.
func (r *Reader) Init() error { return r.dev.Init() }

// Next runs one measurement cycle and returns the populated reading.
func (r *Reader) Next() (flight.Reading, error) {
	s, err := r.dev.Sense()
	if err != nil {
		return flight.Reading{}, err
	}
	return flight.Reading{
		Timestamp:   time.Since(r.boot).Milliseconds(),
		Altitude:    PressureAltitude(s.Pressure, r.seaLevel),
		Pressure:    s.Pressure,
		Temperature: s.Temperature,
	}, nil
}

// Close releases the underlying device.
func (r *Reader) Close() error { return r.dev.Close() }

// PressureAltitude converts station pressure to altitude above the
// seaLevelHPa reference using the international barometric formula.
func PressureAltitude(hpa, seaLevelHPa float64) float64 {
	return 44330.0 * (1.0 - math.Pow(hpa/seaLevelHPa, 0.1903))
}
