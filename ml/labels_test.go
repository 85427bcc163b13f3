package ml

import (
	"testing"
	"time"

	"flightdelay/flights"
)

func TestDelayLabelThreshold(t *testing.T) {
	cases := []struct {
		minutes float64
		want    int
	}{
		{0, 0},
		{15, 0},
		{15.5, 1},
		{16, 1},
		{120, 1},
		{-10, 0},
	}
	for _, tc := range cases {
		if got := DelayLabel(tc.minutes); got != tc.want {
			t.Fatalf("DelayLabel(%v) = %d, want %d", tc.minutes, got, tc.want)
		}
	}
}

func TestGenerateLabels(t *testing.T) {
	base := time.Date(2017, 3, 1, 8, 0, 0, 0, time.UTC)
	records := []flights.Record{
		{Carrier: "Iberia", FlightType: flights.International, Month: 3,
			ScheduledDeparture: base, ActualDeparture: base.Add(20 * time.Minute)},
		{Carrier: "Iberia", FlightType: flights.International, Month: 3,
			ScheduledDeparture: base, ActualDeparture: base.Add(10 * time.Minute)},
	}

	labels, bad, err := GenerateLabels(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bad) != 0 {
		t.Fatalf("unexpected row errors: %v", bad)
	}
	if labels[0] != 1 || labels[1] != 0 {
		t.Fatalf("unexpected labels: %v", labels)
	}
}

func TestGenerateLabelsReportsMissingTimestamps(t *testing.T) {
	base := time.Date(2017, 3, 1, 8, 0, 0, 0, time.UTC)
	records := []flights.Record{
		{Carrier: "Iberia", FlightType: flights.International, Month: 3,
			ScheduledDeparture: base, ActualDeparture: base.Add(30 * time.Minute)},
		{Carrier: "Avianca", FlightType: flights.National, Month: 5},
	}

	labels, bad, err := GenerateLabels(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(labels) != 2 {
		t.Fatalf("labels must stay aligned with records, got %d", len(labels))
	}
	if len(bad) != 1 || bad[0].Row != 1 {
		t.Fatalf("expected row 1 reported, got %v", bad)
	}
}

func TestGenerateLabelsEmpty(t *testing.T) {
	if _, _, err := GenerateLabels(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}
