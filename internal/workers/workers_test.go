package workers

import (
	"context"
	"errors"
	"runtime"
	"sync/atomic"
	"testing"
)

func TestCount(t *testing.T) {
	procs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		want       int
	}{
		{"cpu no limit", 1.0, 0, procs},
		{"io no limit", 2.0, 0, procs * 2},
		{"limit applies", 4.0, 1, 1},
		{"tiny multiplier floors to one", 0.0001, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.multiplier, tt.limit); got != tt.want {
				t.Errorf("Count(%v, %d) = %d, want %d", tt.multiplier, tt.limit, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		override int
		limit    int
		want     int
	}{
		{"override used", 3, 0, 3},
		{"override capped", 50, 8, 8},
		{"zero falls back", 0, 1, 1},
		{"negative falls back", -4, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.override, 2.0, tt.limit); got != tt.want {
				t.Errorf("Resolve(%d, 2.0, %d) = %d, want %d", tt.override, tt.limit, got, tt.want)
			}
		})
	}
}

func TestEachVisitsEveryIndex(t *testing.T) {
	const n = 50
	var seen [n]atomic.Int32

	err := Each(context.Background(), n, 4, func(_ context.Context, i int) error {
		seen[i].Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("Each() error = %v", err)
	}

	for i := range seen {
		if got := seen[i].Load(); got != 1 {
			t.Errorf("index %d visited %d times, want 1", i, got)
		}
	}
}

func TestEachReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32

	err := Each(context.Background(), 100, 2, func(ctx context.Context, i int) error {
		calls.Add(1)
		if i == 3 {
			return boom
		}
		return ctx.Err()
	})

	if !errors.Is(err, boom) {
		t.Fatalf("Each() error = %v, want %v", err, boom)
	}
	if calls.Load() == 100 {
		t.Log("all jobs ran before cancellation was observed")
	}
}

func TestEachCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Each(ctx, 10, 2, func(_ context.Context, _ int) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Each() error = %v, want context.Canceled", err)
	}
}

func TestEachZeroJobs(t *testing.T) {
	if err := Each(context.Background(), 0, 4, nil); err != nil {
		t.Errorf("Each() with no jobs returned %v", err)
	}
}
