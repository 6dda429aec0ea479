package memory

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestMonitor(limit int64) *Monitor {
	cfg := DefaultConfig()
	cfg.MemoryLimitBytes = limit
	return NewMonitor(cfg)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.HighWaterMark >= cfg.CriticalWaterMark {
		t.Errorf("HighWaterMark %v should be below CriticalWaterMark %v", cfg.HighWaterMark, cfg.CriticalWaterMark)
	}
	if cfg.CheckInterval <= 0 {
		t.Error("CheckInterval must be positive")
	}
}

func TestMonitorHoldsAndReleases(t *testing.T) {
	m := newTestMonitor(1000)
	defer m.Stop()

	m.sample(500)
	if m.IsPaused() || m.ShouldThrottle() {
		t.Fatal("50% usage should neither hold nor throttle")
	}

	m.sample(750)
	if m.IsPaused() || !m.ShouldThrottle() {
		t.Fatal("75% usage should throttle without holding")
	}

	m.sample(900)
	if !m.IsPaused() {
		t.Fatal("90% usage should hold new generations")
	}

	admitted := make(chan error, 1)
	go func() { admitted <- m.Admit(context.Background()) }()

	select {
	case <-admitted:
		t.Fatal("Admit returned while memory was critical")
	case <-time.After(20 * time.Millisecond):
	}

	// Between the water marks the hold stays in place.
	m.sample(800)
	if !m.IsPaused() {
		t.Fatal("hold released above the high water mark")
	}

	m.sample(100)
	select {
	case err := <-admitted:
		if err != nil {
			t.Errorf("Admit = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Admit did not return after memory recovered")
	}
}

func TestMonitorAdmitContext(t *testing.T) {
	m := newTestMonitor(1000)
	defer m.Stop()
	m.sample(950)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := m.Admit(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Admit = %v, want DeadlineExceeded", err)
	}
}

func TestMonitorStopReleases(t *testing.T) {
	m := newTestMonitor(1000)
	m.sample(950)
	m.Stop()
	m.Stop()

	if err := m.Admit(context.Background()); err != nil {
		t.Errorf("Admit after Stop = %v", err)
	}
}

func TestNilMonitor(t *testing.T) {
	var m *Monitor
	m.Start()
	m.Stop()
	if err := m.Admit(context.Background()); err != nil {
		t.Errorf("Admit = %v", err)
	}
	if m.IsPaused() || m.ShouldThrottle() {
		t.Error("nil monitor reports pressure")
	}
	if c, l, u := m.GetStats(); c != 0 || l != 0 || u != 0 {
		t.Errorf("GetStats = %d, %d, %v", c, l, u)
	}
}

func TestMonitorGetStats(t *testing.T) {
	m := newTestMonitor(2000)
	defer m.Stop()
	m.sample(500)

	current, limit, usage := m.GetStats()
	if current != 500 || limit != 2000 || usage != 0.25 {
		t.Errorf("GetStats = %d, %d, %v", current, limit, usage)
	}
}

func TestMonitorSamplesInBackground(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MemoryLimitBytes = 1000
	cfg.CheckInterval = 5 * time.Millisecond
	m := NewMonitor(cfg)
	m.readAlloc = func() uint64 { return 990 }

	m.Start()
	defer m.Stop()

	deadline := time.Now().Add(time.Second)
	for !m.IsPaused() {
		if time.Now().After(deadline) {
			t.Fatal("background sampling never held generations")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
