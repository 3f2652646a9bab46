package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/flight_recorder/internal/config"
)

// BMP drives a BMP280/BME280 family barometer through periph. The bus
// (I2C or SPI) and the measurement settings come from the config.
type BMP struct {
	cfg     config.SensorConfig
	dev     *bmxx80.Dev
	i2cBus  i2c.BusCloser
	spiPort spi.PortCloser
}

// NewBMP returns an unopened driver; Init touches the hardware.
func NewBMP(cfg config.SensorConfig) *BMP {
	return &BMP{cfg: cfg}
}

// Init opens the configured bus and programs oversampling and filter
// settings into the device.
func (b *BMP) Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}

	opts := &bmxx80.Opts{
		Temperature: oversampling(b.cfg.TemperatureOversampling),
		Pressure:    oversampling(b.cfg.PressureOversampling),
		Humidity:    bmxx80.Off,
		Filter:      iirFilter(b.cfg.IIRFilter),
	}

	switch b.cfg.Bus {
	case "spi":
		port, err := spireg.Open(b.cfg.Device)
		if err != nil {
			return fmt.Errorf("BMP SPI open: %w", err)
		}
		dev, err := bmxx80.NewSPI(port, opts)
		if err != nil {
			port.Close()
			return fmt.Errorf("BMP init: %w", err)
		}
		b.spiPort, b.dev = port, dev
	default: // i2c
		bus, err := i2creg.Open(b.cfg.Device)
		if err != nil {
			return fmt.Errorf("BMP I2C open: %w", err)
		}
		dev, err := bmxx80.NewI2C(bus, b.cfg.Address, opts)
		if err != nil {
			bus.Close()
			return fmt.Errorf("BMP init: %w", err)
		}
		b.i2cBus, b.dev = bus, dev
	}
	return nil
}

// Sense triggers one forced measurement.
func (b *BMP) Sense() (Sample, error) {
	var e physic.Env
	if err := b.dev.Sense(&e); err != nil {
		return Sample{}, fmt.Errorf("BMP sense: %w: %v", ErrMeasurement, err)
	}
	pressurePa := float64(e.Pressure) / float64(physic.Pascal)
	return Sample{
		Pressure:    pressurePa / 100.0, // 1 hPa = 100 Pa
		Temperature: e.Temperature.Celsius(),
	}, nil
}

// Close halts the device and releases the bus.
func (b *BMP) Close() error {
	if b.dev != nil {
		if err := b.dev.Halt(); err != nil {
			return fmt.Errorf("BMP halt: %w", err)
		}
	}
	if b.i2cBus != nil {
		return b.i2cBus.Close()
	}
	if b.spiPort != nil {
		return b.spiPort.Close()
	}
	return nil
}

func oversampling(n int) bmxx80.Oversampling {
	switch n {
	case 2:
		return bmxx80.O2x
	case 4:
		return bmxx80.O4x
	case 8:
		return bmxx80.O8x
	case 16:
		return bmxx80.O16x
	default:
		return bmxx80.O1x
	}
}

func iirFilter(n int) bmxx80.Filter {
	switch n {
	case 2:
		return bmxx80.F2
	case 4:
		return bmxx80.F4
	case 8:
		return bmxx80.F8
	case 16:
		return bmxx80.F16
	default:
		return bmxx80.NoFilter
	}
}
