package indicator

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/apa102"
	"periph.io/x/host/v3"
)

// APA102 drives a single DotStar pixel on SPI.
type APA102 struct {
	port spi.PortCloser
	dev  *apa102.Dev
}

// NewAPA102 opens the SPI port and attaches the pixel. An empty device
// name picks the first registered port.
func NewAPA102(spiDev string, intensity uint8) (*APA102, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	port, err := spireg.Open(spiDev)
	if err != nil {
		return nil, fmt.Errorf("indicator SPI open: %w", err)
	}
	dev, err := apa102.New(port, &apa102.Opts{
		NumPixels:   1,
		Intensity:   intensity,
		Temperature: apa102.NeutralTemp,
	})
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("indicator init: %w", err)
	}
	return &APA102{port: port, dev: dev}, nil
}

// Set writes the pixel color.
func (a *APA102) Set(ok bool) {
	px := []byte{0xff, 0x00, 0x00} // red
	if ok {
		px = []byte{0x00, 0xff, 0x00} // green
	}
	if _, err := a.dev.Write(px); err != nil {
		slog.Warn("indicator write failed", "err", err)
	}
}

// Close blanks the pixel and releases the port.
func (a *APA102) Close() error {
	if err := a.dev.Halt(); err != nil {
		return fmt.Errorf("indicator halt: %w", err)
	}
	return a.port.Close()
}
