package indicator

import (
	"fmt"
	"log/slog"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// GPIO drives a bicolor LED on two pins.
type GPIO struct {
	red   gpio.PinIO
	green gpio.PinIO
}

// NewGPIO looks up the two pins by name.
func NewGPIO(redPin, greenPin string) (*GPIO, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	red := gpioreg.ByName(redPin)
	if red == nil {
		return nil, fmt.Errorf("red pin %q not found", redPin)
	}
	green := gpioreg.ByName(greenPin)
	if green == nil {
		return nil, fmt.Errorf("green pin %q not found", greenPin)
	}
	return &GPIO{red: red, green: green}, nil
}

// Set drives exactly one of the two pins high.
func (g *GPIO) Set(ok bool) {
	redLevel, greenLevel := gpio.High, gpio.Low
	if ok {
		redLevel, greenLevel = gpio.Low, gpio.High
	}
	if err := g.red.Out(redLevel); err != nil {
		slog.Warn("indicator write failed", "pin", g.red.Name(), "err", err)
	}
	if err := g.green.Out(greenLevel); err != nil {
		slog.Warn("indicator write failed", "pin", g.green.Name(), "err", err)
	}
}

// Close turns both pins off.
func (g *GPIO) Close() error {
	if err := g.red.Out(gpio.Low); err != nil {
		return err
	}
	return g.green.Out(gpio.Low)
}
