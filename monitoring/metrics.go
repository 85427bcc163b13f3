package monitoring

import (
	"sync"
	"time"
)

// Stats tracks serving counters. All methods are safe for concurrent use.
type Stats struct {
	mu sync.RWMutex

	startTime        time.Time
	requests         int64
	predictions      int64
	delayed          int64
	validationErrors int64
	cacheHits        int64
	totalLatency     time.Duration
}

// NewStats creates an empty collector.
func NewStats() *Stats {
	return &Stats{startTime: time.Now()}
}

// RecordRequest counts one predict request and its latency.
func (s *Stats) RecordRequest(latency time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	s.totalLatency += latency
}

// RecordPredictions counts served labels and cache hits.
func (s *Stats) RecordPredictions(labels []int, cacheHits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predictions += int64(len(labels))
	s.cacheHits += int64(cacheHits)
	for _, label := range labels {
		if label == 1 {
			s.delayed++
		}
	}
}

// RecordValidationError counts one boundary rejection.
func (s *Stats) RecordValidationError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validationErrors++
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	UptimeSeconds    float64   `json:"uptime_seconds"`
	Requests         int64     `json:"requests"`
	Predictions      int64     `json:"predictions"`
	Delayed          int64     `json:"delayed"`
	DelayedRatio     float64   `json:"delayed_ratio"`
	ValidationErrors int64     `json:"validation_errors"`
	CacheHits        int64     `json:"cache_hits"`
	AvgLatencyMs     float64   `json:"avg_latency_ms"`
	Timestamp        time.Time `json:"timestamp"`
}

// Snapshot returns the current counters.
func (s *Stats) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds:    time.Since(s.startTime).Seconds(),
		Requests:         s.requests,
		Predictions:      s.predictions,
		Delayed:          s.delayed,
		ValidationErrors: s.validationErrors,
		CacheHits:        s.cacheHits,
		Timestamp:        time.Now(),
	}
	if s.predictions > 0 {
		snap.DelayedRatio = float64(s.delayed) / float64(s.predictions)
	}
	if s.requests > 0 {
		snap.AvgLatencyMs = float64(s.totalLatency.Milliseconds()) / float64(s.requests)
	}
	return snap
}
