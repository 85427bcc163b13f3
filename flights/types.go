package flights

import "time"

// Flight type flags as they appear in the source datasets.
const (
	International = "I"
	National      = "N"
)

// KnownCarriers is the closed vocabulary of airlines the system accepts.
// Descriptors with any other carrier are rejected at the boundary.
var KnownCarriers = []string{
	"American Airlines",
	"Air Canada",
	"Air France",
	"Aeromexico",
	"Aerolineas Argentinas",
	"Austral",
	"Avianca",
	"Alitalia",
	"British Airways",
	"Copa Air",
	"Delta Air",
	"Gol Trans",
	"Iberia",
	"K.L.M.",
	"Qantas Airways",
	"United Airlines",
	"Grupo LATAM",
	"Sky Airline",
	"Latin American Wings",
	"Plus Ultra Lineas Aereas",
	"JetSmart SPA",
	"Oceanair Linhas Aereas",
	"Lacsa",
}

var knownCarrierSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(KnownCarriers))
	for _, carrier := range KnownCarriers {
		set[carrier] = struct{}{}
	}
	return set
}()

// IsKnownCarrier reports whether name belongs to the carrier vocabulary.
func IsKnownCarrier(name string) bool {
	_, ok := knownCarrierSet[name]
	return ok
}

// Record is one flight observation. The departure timestamps are only
// present in training datasets; serving descriptors leave them zero.
type Record struct {
	Carrier            string
	FlightType         string
	Month              int
	ScheduledDeparture time.Time
	ActualDeparture    time.Time
}

// HasTimestamps reports whether both departure timestamps are set, which
// label derivation requires.
func (r Record) HasTimestamps() bool {
	return !r.ScheduledDeparture.IsZero() && !r.ActualDeparture.IsZero()
}

// DelayMinutes is the departure delay. Callers must check HasTimestamps first.
func (r Record) DelayMinutes() float64 {
	return r.ActualDeparture.Sub(r.ScheduledDeparture).Minutes()
}
