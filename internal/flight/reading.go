package flight

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Header is the first line of every flight log. The column set is the
// on-disk contract shared by the recorder and the analysis tooling.
const Header = "Timestamp,Altitude(m),Pressure(hPa),Temperature(C)"

// Reading is a single barometer sample as it is recorded in flight.
type Reading struct {
	Timestamp   int64   `json:"timestamp_ms"` // ms since boot
	Altitude    float64 `json:"altitude_m"`
	Pressure    float64 `json:"pressure_hpa"`
	Temperature float64 `json:"temp_c"`
}

// Row renders r as one CSV data line, without a trailing newline.
func (r Reading) Row() string {
	return fmt.Sprintf("%d,%.2f,%.2f,%.2f", r.Timestamp, r.Altitude, r.Pressure, r.Temperature)
}

// ReadFile loads all data rows of a flight log written by the recorder.
// The header line is required and is not returned.
func ReadFile(path string) ([]Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open flight log: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = 4
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty file", path)
	}
	if records[0][0] != "Timestamp" {
		return nil, fmt.Errorf("read %s: missing header line", path)
	}

	readings := make([]Reading, 0, len(records)-1)
	for i, rec := range records[1:] {
		r, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("read %s row %d: %w", path, i+1, err)
		}
		readings = append(readings, r)
	}
	return readings, nil
}

func parseRecord(rec []string) (Reading, error) {
	var r Reading
	var err error
	if r.Timestamp, err = strconv.ParseInt(rec[0], 10, 64); err != nil {
		return Reading{}, fmt.Errorf("timestamp %q: %w", rec[0], err)
	}
	if r.Altitude, err = strconv.ParseFloat(rec[1], 64); err != nil {
		return Reading{}, fmt.Errorf("altitude %q: %w", rec[1], err)
	}
	if r.Pressure, err = strconv.ParseFloat(rec[2], 64); err != nil {
		return Reading{}, fmt.Errorf("pressure %q: %w", rec[2], err)
	}
	if r.Temperature, err = strconv.ParseFloat(rec[3], 64); err != nil {
		return Reading{}, fmt.Errorf("temperature %q: %w", rec[3], err)
	}
	return r, nil
}
