package sensors

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/flight_recorder/internal/config"
)

// Serial reads an external barometer module that streams one
// "<pressure_hpa>,<temp_c>" text line per measurement.
type Serial struct {
	cfg  config.SensorConfig
	port io.ReadWriteCloser
	r    *bufio.Reader
}

// NewSerial returns an unopened driver; Init opens the port.
func NewSerial(cfg config.SensorConfig) *Serial {
	return &Serial{cfg: cfg}
}

// Init opens the serial port.
func (s *Serial) Init() error {
	options := serial.OpenOptions{
		PortName:        s.cfg.SerialPort,
		BaudRate:        uint(s.cfg.SerialBaud),
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}
	port, err := serial.Open(options)
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", s.cfg.SerialPort, err)
	}
	s.port = port
	s.r = bufio.NewReader(port)
	return nil
}

// Sense blocks for the next measurement line.
func (s *Serial) Sense() (Sample, error) {
	line, err := s.r.ReadString('\n')
	if err != nil {
		return Sample{}, fmt.Errorf("serial read: %w: %v", ErrMeasurement, err)
	}
	return parseLine(strings.TrimSpace(line))
}

func parseLine(line string) (Sample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return Sample{}, fmt.Errorf("sensor line %q: %w", line, ErrMeasurement)
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Sample{}, fmt.Errorf("pressure in %q: %w", line, ErrMeasurement)
	}
	tc, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Sample{}, fmt.Errorf("temperature in %q: %w", line, ErrMeasurement)
	}
	return Sample{Pressure: p, Temperature: tc}, nil
}

// Close releases the port.
func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	return s.port.Close()
}
