package slo

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

// DefaultWindow is the number of recent requests the default tracker keeps.
const DefaultWindow = 1000

// Default is the tracker fed by the HTTP metrics middleware.
var Default = NewTracker(DefaultWindow)

// Report holds the indicators computed over the tracker window.
type Report struct {
	Requests     int     `json:"requests"`
	Availability float64 `json:"availability"`
	ErrorRate    float64 `json:"errorRate"`
	LatencyP95   float64 `json:"latencyP95Seconds"`
	LatencyP99   float64 `json:"latencyP99Seconds"`

	// Met is true when every indicator is within its target. An empty window meets them.
	Met bool `json:"met"`
}

type sample struct {
	failed   bool
	duration time.Duration
}

// Tracker keeps the outcome of the last N requests in a ring buffer.
type Tracker struct {
	mu      sync.Mutex
	samples []sample
	next    int
	full    bool
}

// NewTracker creates a tracker for the last size requests. size <= 0 uses DefaultWindow.
func NewTracker(size int) *Tracker {
	if size <= 0 {
		size = DefaultWindow
	}
	return &Tracker{samples: make([]sample, size)}
}

// Observe records one response. Status codes of 500 and above count as failures.
func (t *Tracker) Observe(status int, d time.Duration) {
	t.mu.Lock()
	t.samples[t.next] = sample{failed: status >= 500, duration: d}
	t.next++
	if t.next == len(t.samples) {
		t.next = 0
		t.full = true
	}
	t.mu.Unlock()
}

func (t *Tracker) window() []sample {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := t.next
	if t.full {
		n = len(t.samples)
	}
	out := make([]sample, n)
	copy(out, t.samples[:n])
	return out
}

// Report computes the indicators and updates the SLO gauges.
func (t *Tracker) Report() Report {
	samples := t.window()
	r := Report{Requests: len(samples), Availability: 1}
	if len(samples) > 0 {
		failed := 0
		durations := make([]time.Duration, len(samples))
		for i, s := range samples {
			if s.failed {
				failed++
			}
			durations[i] = s.duration
		}
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

		r.ErrorRate = float64(failed) / float64(len(samples))
		r.Availability = 1 - r.ErrorRate
		r.LatencyP95 = percentile(durations, 0.95).Seconds()
		r.LatencyP99 = percentile(durations, 0.99).Seconds()
	}
	r.Met = r.Availability*100 >= AvailabilitySLO &&
		r.ErrorRate <= ErrorRateSLO &&
		r.LatencyP95 <= LatencyP95SLO &&
		r.LatencyP99 <= LatencyP99SLO

	UpdateAvailability(r.Availability)
	UpdateErrorRate(r.ErrorRate)
	UpdateLatencyP95(r.LatencyP95)
	UpdateLatencyP99(r.LatencyP99)
	return r
}

// percentile uses the nearest-rank method on sorted durations.
func percentile(sorted []time.Duration, p float64) time.Duration {
	rank := int(math.Ceil(p*float64(len(sorted)))) - 1
	if rank < 0 {
		rank = 0
	}
	return sorted[rank]
}

// Run refreshes the gauges every interval until ctx is done.
func (t *Tracker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Report()
		}
	}
}
