package db

import (
	"testing"
	"time"

	"flightdelay/flights"
)

func initTestDB(t *testing.T) {
	t.Helper()
	if err := InitDB(":memory:"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { CloseDB() })
}

func TestFlightsRoundTrip(t *testing.T) {
	initTestDB(t)

	base := time.Date(2017, 3, 1, 8, 0, 0, 0, time.UTC)
	records := []flights.Record{
		{Carrier: "Grupo LATAM", FlightType: flights.National, Month: 3,
			ScheduledDeparture: base, ActualDeparture: base.Add(30 * time.Minute)},
		{Carrier: "Sky Airline", FlightType: flights.International, Month: 7},
	}
	if err := SaveFlights(records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := LoadFlights()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(loaded))
	}
	if loaded[0].Carrier != "Grupo LATAM" || loaded[0].Month != 3 {
		t.Fatalf("unexpected record: %+v", loaded[0])
	}
	if !loaded[0].HasTimestamps() {
		t.Fatal("timestamps lost in round trip")
	}
	if loaded[1].HasTimestamps() {
		t.Fatal("zero timestamps must stay zero")
	}
}

func TestPredictionAuditLog(t *testing.T) {
	initTestDB(t)

	if err := SavePrediction("Grupo LATAM", "N", 3, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := SavePrediction("Copa Air", "I", 7, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows, err := RecentPredictions(10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Newest first.
	if rows[0].Carrier != "Copa Air" || rows[0].Label != 0 {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
}

func TestLogTraining(t *testing.T) {
	initTestDB(t)

	if err := LogTraining("logistic", 0.91, 0.72, 0.65, 10000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUninitializedDatabase(t *testing.T) {
	if err := SavePrediction("Grupo LATAM", "N", 3, 1); err == nil {
		t.Fatal("expected error without InitDB")
	}
}
