package http

import (
	"fmt"

	"flightdelay/flights"
)

// FlightRequest is one descriptor in the predict payload, using the column
// names of the source datasets.
type FlightRequest struct {
	Carrier    string `json:"OPERA"`
	FlightType string `json:"TIPOVUELO"`
	Month      int    `json:"MES"`
}

func validateCarrier(v string) error {
	if !flights.IsKnownCarrier(v) {
		return fmt.Errorf("OPERA %q is not a known carrier", v)
	}
	return nil
}

func validateFlightType(v string) error {
	if v != flights.International && v != flights.National {
		return fmt.Errorf("TIPOVUELO must be I or N, got %q", v)
	}
	return nil
}

func validateMonth(v int) error {
	if v < 1 || v > 12 {
		return fmt.Errorf("MES must be between 1 and 12, got %d", v)
	}
	return nil
}

// ValidateFlight runs every field check. The model itself never sees a
// descriptor that fails here.
func ValidateFlight(f FlightRequest) error {
	if err := validateCarrier(f.Carrier); err != nil {
		return err
	}
	if err := validateFlightType(f.FlightType); err != nil {
		return err
	}
	return validateMonth(f.Month)
}

func (f FlightRequest) record() flights.Record {
	return flights.Record{
		Carrier:    f.Carrier,
		FlightType: f.FlightType,
		Month:      f.Month,
	}
}
