package track

import (
	"fmt"
	"time"

	"github.com/adrianmo/go-nmea"
)

// Header is the first line of every recovery track file.
const Header = "Elapsed(ms),Latitude,Longitude,Speed(m/s),Course(deg)"

const metersPerSecondPerKnot = 0.514444

// Fix is a single recovery track point derived from an RMC sentence.
type Fix struct {
	Elapsed   int64   `json:"elapsed_ms"` // ms since tracker start
	Latitude  float64 `json:"lat"`        // decimal degrees
	Longitude float64 `json:"lon"`        // decimal degrees
	SpeedMS   float64 `json:"speed_ms"`   // speed over ground
	CourseDeg float64 `json:"course_deg"` // course over ground
	Valid     bool    `json:"valid"`
}

// FromRMC converts a parsed RMC sentence. elapsed is the time since the
// tracker started.
func FromRMC(m nmea.RMC, elapsed time.Duration) Fix {
	return Fix{
		Elapsed:   elapsed.Milliseconds(),
		Latitude:  m.Latitude,
		Longitude: m.Longitude,
		SpeedMS:   m.Speed * metersPerSecondPerKnot,
		CourseDeg: m.Course,
		Valid:     m.Validity == "A",
	}
}

// Row renders f as one CSV data line, without a trailing newline.
func (f Fix) Row() string {
	return fmt.Sprintf("%d,%.6f,%.6f,%.2f,%.1f",
		f.Elapsed, f.Latitude, f.Longitude, f.SpeedMS, f.CourseDeg)
}
