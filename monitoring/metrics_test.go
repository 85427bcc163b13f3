package monitoring

import (
	"testing"
	"time"
)

func TestStatsSnapshot(t *testing.T) {
	stats := NewStats()

	stats.RecordRequest(10 * time.Millisecond)
	stats.RecordRequest(30 * time.Millisecond)
	stats.RecordPredictions([]int{1, 0, 1, 0}, 1)
	stats.RecordValidationError()

	snap := stats.Snapshot()
	if snap.Requests != 2 {
		t.Fatalf("requests = %d, want 2", snap.Requests)
	}
	if snap.Predictions != 4 {
		t.Fatalf("predictions = %d, want 4", snap.Predictions)
	}
	if snap.Delayed != 2 {
		t.Fatalf("delayed = %d, want 2", snap.Delayed)
	}
	if snap.DelayedRatio != 0.5 {
		t.Fatalf("delayed ratio = %v, want 0.5", snap.DelayedRatio)
	}
	if snap.CacheHits != 1 {
		t.Fatalf("cache hits = %d, want 1", snap.CacheHits)
	}
	if snap.ValidationErrors != 1 {
		t.Fatalf("validation errors = %d, want 1", snap.ValidationErrors)
	}
	if snap.AvgLatencyMs != 20 {
		t.Fatalf("avg latency = %v, want 20", snap.AvgLatencyMs)
	}
}

func TestStatsEmptySnapshot(t *testing.T) {
	snap := NewStats().Snapshot()
	if snap.DelayedRatio != 0 || snap.AvgLatencyMs != 0 {
		t.Fatalf("empty snapshot must not divide by zero: %+v", snap)
	}
}
