package ml

import (
	"errors"

	"flightdelay/flights"
)

// DelayThresholdMinutes separates on-time from delayed departures.
const DelayThresholdMinutes = 15.0

// DelayLabel returns 1 when the flight left more than 15 minutes late.
func DelayLabel(delayMinutes float64) int {
	if delayMinutes > DelayThresholdMinutes {
		return 1
	}
	return 0
}

// GenerateLabels derives the binary delay label for every record. Rows
// missing either departure timestamp are reported as data-quality errors
// and carry a zero label; callers drop those rows before fitting.
func GenerateLabels(records []flights.Record) ([]int, []flights.RowError, error) {
	if len(records) == 0 {
		return nil, nil, errors.New("records is empty")
	}
	labels := make([]int, len(records))
	var bad []flights.RowError
	for i, rec := range records {
		if !rec.HasTimestamps() {
			bad = append(bad, flights.RowError{Row: i, Reason: "missing departure timestamps"})
			continue
		}
		labels[i] = DelayLabel(rec.DelayMinutes())
	}
	return labels, bad, nil
}
