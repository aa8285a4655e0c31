package device

import (
	"slices"
	"sync"
	"time"
)

type call struct {
	at       time.Time
	duration time.Duration
	failed   bool
}

// StatsSnapshot aggregates the device calls inside the window.
type StatsSnapshot struct {
	Calls    int     `json:"calls"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
}

// Stats keeps device call latencies from a rolling window.
type Stats struct {
	mu     sync.Mutex
	calls  []call
	window time.Duration
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{window: window}
}

// Record adds one call. Negative durations count as zero.
func (s *Stats) Record(d time.Duration, failed bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked(now)
	s.calls = append(s.calls, call{at: now, duration: max(d, 0), failed: failed})
}

func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	s.expireLocked(time.Now())
	calls := slices.Clone(s.calls)
	s.mu.Unlock()

	if len(calls) == 0 {
		return StatsSnapshot{}
	}
	ms := make([]int64, len(calls))
	var sum int64
	failures := 0
	for i, c := range calls {
		ms[i] = c.duration.Milliseconds()
		sum += ms[i]
		if c.failed {
			failures++
		}
	}
	slices.Sort(ms)
	return StatsSnapshot{
		Calls:    len(ms),
		Failures: failures,
		MinMs:    ms[0],
		MaxMs:    ms[len(ms)-1],
		AvgMs:    float64(sum) / float64(len(ms)),
		P50Ms:    percentile(ms, 50),
		P95Ms:    percentile(ms, 95),
	}
}

func (s *Stats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.calls = slices.DeleteFunc(s.calls, func(c call) bool { return c.at.Before(cutoff) })
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []int64, pct float64) float64 {
	pos := float64(len(sorted)-1) * pct / 100
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return float64(sorted[len(sorted)-1])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
