package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type MockClock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

func (m *MockClock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// advancingSleep moves the mock clock forward instead of blocking.
func advancingSleep(clock *MockClock, slept *[]time.Duration) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		clock.Advance(d)
		return ctx.Err()
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default", cfg: DefaultConfig(), wantErr: false},
		{name: "zero limit", cfg: Config{Limit: 0, Window: time.Second}, wantErr: true},
		{name: "zero window", cfg: Config{Limit: 1}, wantErr: true},
		{name: "negative buffer", cfg: Config{Limit: 1, Window: time.Second, Buffer: -1}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Limit != 50 || cfg.Window != time.Minute || cfg.Buffer != 100*time.Millisecond {
		t.Errorf("unexpected default config: %+v", cfg)
	}
}

func TestSlidingWindow_AllowsUpToLimit(t *testing.T) {
	clock := NewMockClock(time.Now())
	l := NewSlidingWindow("test", Config{Limit: 3, Window: time.Minute}, WithClock(clock))

	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow(); !ok {
			t.Fatalf("call %d should be allowed", i+1)
		}
		clock.Advance(time.Second)
	}

	ok, wait := l.Allow()
	if ok {
		t.Fatal("4th call should be denied")
	}
	// Oldest call was 3s ago, so it leaves the window in 57s.
	if wait != 57*time.Second {
		t.Errorf("wait = %v, want 57s", wait)
	}
	if n := l.InWindow(); n != 3 {
		t.Errorf("InWindow() = %d, want 3", n)
	}
}

func TestSlidingWindow_WaitSleepsUntilOldestExits(t *testing.T) {
	start := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	var slept []time.Duration
	l := NewSlidingWindow("gemini", DefaultConfig(),
		WithClock(clock),
		WithSleep(advancingSleep(clock, &slept)),
	)

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
	}
	if len(slept) != 0 {
		t.Fatalf("first 50 calls must not wait, slept %v", slept)
	}

	clock.Advance(10 * time.Second)
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("51st call: %v", err)
	}

	want := 50*time.Second + 100*time.Millisecond
	if len(slept) != 1 || slept[0] != want {
		t.Fatalf("slept = %v, want [%v]", slept, want)
	}
	// Every call that was in the window at start has left it; only the new call remains.
	if n := l.InWindow(); n != 1 {
		t.Errorf("InWindow() = %d, want 1", n)
	}
}

func TestSlidingWindow_NeverExceedsLimitInAnyWindow(t *testing.T) {
	start := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	var slept []time.Duration
	cfg := Config{Limit: 5, Window: 10 * time.Second, Buffer: 100 * time.Millisecond}
	l := NewSlidingWindow("bounded", cfg, WithClock(clock), WithSleep(advancingSleep(clock, &slept)))

	var admitted []time.Time
	for i := 0; i < 23; i++ {
		if err := l.Wait(context.Background()); err != nil {
			t.Fatal(err)
		}
		admitted = append(admitted, clock.Now())
		clock.Advance(700 * time.Millisecond)
	}

	for i, ti := range admitted {
		count := 0
		for _, tj := range admitted[:i+1] {
			if ti.Sub(tj) < cfg.Window {
				count++
			}
		}
		if count > cfg.Limit {
			t.Fatalf("call %d: %d calls within one window, limit %d", i+1, count, cfg.Limit)
		}
	}
	if len(slept) == 0 {
		t.Error("expected the limiter to wait at least once")
	}
}

func TestSlidingWindow_WaitHonoursContext(t *testing.T) {
	clock := NewMockClock(time.Now())
	l := NewSlidingWindow("ctx", Config{Limit: 1, Window: time.Hour}, WithClock(clock))

	if err := l.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestSlidingWindow_ConcurrentCallers(t *testing.T) {
	clock := NewMockClock(time.Now())
	l := NewSlidingWindow("concurrent", Config{Limit: 10, Window: time.Minute}, WithClock(clock))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow(); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Errorf("allowed = %d, want 10", allowed)
	}
}

func TestSlidingWindow_InvalidConfigFallsBack(t *testing.T) {
	l := NewSlidingWindow("fallback", Config{})
	if l.cfg != DefaultConfig() {
		t.Errorf("expected default config, got %+v", l.cfg)
	}
}

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheusMetrics(reg)

	clock := NewMockClock(time.Now())
	var slept []time.Duration
	l := NewSlidingWindow("metrics", Config{Limit: 1, Window: time.Second},
		WithClock(clock),
		WithSleep(advancingSleep(clock, &slept)),
		WithMetrics(m),
	)

	_ = l.Wait(context.Background())
	_ = l.Wait(context.Background())

	if got := testutil.ToFloat64(m.allowedTotal.WithLabelValues("metrics")); got != 1 {
		t.Errorf("allowed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.waitsTotal.WithLabelValues("metrics")); got != 1 {
		t.Errorf("waits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.inWindow.WithLabelValues("metrics")); got != 1 {
		t.Errorf("inWindow = %v, want 1", got)
	}
}
