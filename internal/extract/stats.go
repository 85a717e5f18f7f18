package extract

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// Outcome classifies one completion call.
type Outcome string

const (
	OutcomeOK        Outcome = "ok"
	OutcomeRetryable Outcome = "retryable"
	OutcomeFailed    Outcome = "failed"
	OutcomeCanceled  Outcome = "canceled"
)

// OutcomeOf classifies the error returned by Completer.Complete.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case IsRetryable(err):
		return OutcomeRetryable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeFailed
	}
}

type call struct {
	at      time.Time
	latency time.Duration
	outcome Outcome
}

// StatsSnapshot aggregates the completion calls of the current window.
// Latency figures cover successful calls only; Unparsed counts successful
// calls whose output held no question/answer pair.
type StatsSnapshot struct {
	WindowSeconds int             `json:"window_seconds"`
	Calls         int             `json:"calls"`
	Outcomes      map[Outcome]int `json:"outcomes"`
	Unparsed      int             `json:"unparsed"`
	MinMs         int64           `json:"min_ms"`
	MaxMs         int64           `json:"max_ms"`
	AvgMs         float64         `json:"avg_ms"`
	P50Ms         float64         `json:"p50_ms"`
	P95Ms         float64         `json:"p95_ms"`
}

// LLMStats keeps completion calls and unparsed outputs seen within a
// rolling window.
type LLMStats struct {
	mu       sync.Mutex
	window   time.Duration
	calls    []call
	unparsed []time.Time
}

func NewLLMStats(window time.Duration) *LLMStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LLMStats{window: window, calls: make([]call, 0, 128)}
}

// Record adds one completion call with the error it returned.
func (s *LLMStats) Record(latency time.Duration, err error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)
	s.calls = append(s.calls, call{at: now, latency: max(latency, 0), outcome: OutcomeOf(err)})
}

// RecordUnparsed notes a completion whose output held no usable pair.
func (s *LLMStats) RecordUnparsed() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)
	s.unparsed = append(s.unparsed, now)
}

func (s *LLMStats) Snapshot() StatsSnapshot {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)

	snap := StatsSnapshot{
		WindowSeconds: int(s.window / time.Second),
		Calls:         len(s.calls),
		Outcomes:      make(map[Outcome]int),
		Unparsed:      len(s.unparsed),
	}
	var ok []int64
	for _, c := range s.calls {
		snap.Outcomes[c.outcome]++
		if c.outcome == OutcomeOK {
			ok = append(ok, c.latency.Milliseconds())
		}
	}
	if len(ok) == 0 {
		return snap
	}

	slices.Sort(ok)
	var sum int64
	for _, v := range ok {
		sum += v
	}
	snap.MinMs = ok[0]
	snap.MaxMs = ok[len(ok)-1]
	snap.AvgMs = float64(sum) / float64(len(ok))
	snap.P50Ms = percentile(ok, 50)
	snap.P95Ms = percentile(ok, 95)
	return snap
}

func (s *LLMStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.calls = slices.DeleteFunc(s.calls, func(c call) bool { return c.at.Before(cutoff) })
	s.unparsed = slices.DeleteFunc(s.unparsed, func(t time.Time) bool { return t.Before(cutoff) })
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := float64(len(sorted)-1) * min(max(pct, 0), 100) / 100
	lo := int(pos)
	if lo+1 >= len(sorted) {
		return float64(sorted[lo])
	}
	frac := pos - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
