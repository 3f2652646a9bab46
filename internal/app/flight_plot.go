package app

import (
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/relabs-tech/flight_recorder/internal/analysis"
	"github.com/relabs-tech/flight_recorder/internal/flight"
	"github.com/relabs-tech/flight_recorder/internal/plot"
)

// RunFlightPlot analyzes a recorded flight CSV, writes the chart PNG
// next to it and prints the flight stats.
func RunFlightPlot(csvPath string, interval time.Duration) error {
	readings, err := flight.ReadFile(csvPath)
	if err != nil {
		return err
	}
	res, err := analysis.Analyze(readings, interval.Seconds())
	if err != nil {
		return err
	}
	slog.Info("flight window",
		"ground_m", res.GroundLevel,
		"launch", res.Launch,
		"landing", res.Landing,
		"samples", len(res.Altitude))

	apogeeT := res.Time[res.ApogeeIndex]
	chart := &plot.Chart{
		Title: filepath.Base(csvPath),
		Time:  res.Time,
		Panels: []plot.Panel{
			{
				Label: "Altitude (m)",
				Caption: fmt.Sprintf("Max Altitude: %.1f m (%.1f ft)\nFlight Duration: %.1f s",
					res.Stats.MaxAltitudeM, res.Stats.MaxAltitudeFt, res.Stats.Duration),
				Color: color.RGBA{31, 119, 180, 255},
				Y:     res.Altitude,
			},
			{
				Label:   "Velocity (m/s)",
				Caption: fmt.Sprintf("Max Velocity: %.1f m/s", res.Stats.MaxVelocity),
				Color:   color.RGBA{44, 160, 44, 255},
				Y:       res.Velocity,
			},
			{
				Label:   "Acceleration (m/s²)",
				Caption: fmt.Sprintf("Max Acceleration: %.1f m/s²", res.Stats.MaxAcceleration),
				Color:   color.RGBA{214, 39, 40, 255},
				Y:       res.Acceleration,
			},
		},
		Marker:      apogeeT,
		MarkerLabel: fmt.Sprintf("apogee t=%.1fs", apogeeT),
	}
	img, err := chart.Render()
	if err != nil {
		return err
	}
	outPath := strings.TrimSuffix(csvPath, ".csv") + "_analysis.png"
	if err := plot.WritePNG(outPath, img); err != nil {
		return err
	}

	fmt.Printf("Plot saved as: %s\n", outPath)
	fmt.Printf("Max altitude: %.1f m (%.1f ft)\n", res.Stats.MaxAltitudeM, res.Stats.MaxAltitudeFt)
	fmt.Printf("Max velocity: %.1f m/s\n", res.Stats.MaxVelocity)
	fmt.Printf("Max acceleration: %.1f m/s²\n", res.Stats.MaxAcceleration)
	fmt.Printf("Flight duration: %.1f s\n", res.Stats.Duration)
	return nil
}
