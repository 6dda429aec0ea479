package metrics

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestCoverMetricsExist(t *testing.T) {
	tests := []struct {
		name   string
		metric interface{}
	}{
		{"CoverGenerationsTotal", CoverGenerationsTotal},
		{"CoverGenerationDuration", CoverGenerationDuration},
		{"CoverPhaseDuration", CoverPhaseDuration},
		{"CoverFramesRendered", CoverFramesRendered},
		{"CoverOutputBytes", CoverOutputBytes},
		{"CoverGenerationsInProgress", CoverGenerationsInProgress},
		{"ArtworkFetchesTotal", ArtworkFetchesTotal},
		{"ArtworkFetchDuration", ArtworkFetchDuration},
		{"ArtworkDecodeByFormat", ArtworkDecodeByFormat},
		{"DBQueryTotal", DBQueryTotal},
		{"DBQueryDuration", DBQueryDuration},
		{"StoredCoversTotal", StoredCoversTotal},
		{"LibrariesTotal", LibrariesTotal},
		{"MemoryUsageRatio", MemoryUsageRatio},
		{"MemoryPaused", MemoryPaused},
		{"MemoryGCPauses", MemoryGCPauses},
		{"AppInfo", AppInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.metric == nil {
				t.Errorf("%s metric is nil", tt.name)
			}
		})
	}
}

func TestInitializeMetricsExportsFamilies(t *testing.T) {
	InitializeMetrics()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := make(map[string]bool)
	for _, mf := range families {
		found[mf.GetName()] = true
	}

	for _, name := range []string{
		"media_covers_generations_total",
		"media_covers_generation_duration_seconds",
		"media_covers_phase_duration_seconds",
		"media_covers_output_bytes",
		"media_covers_artwork_fetches_total",
		"media_covers_db_queries_total",
	} {
		if !found[name] {
			t.Errorf("metric family %s not exported after InitializeMetrics", name)
		}
	}
}

func TestMetricNamesArePrefixed(t *testing.T) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	for _, mf := range families {
		name := mf.GetName()
		if strings.HasPrefix(name, "go_") || strings.HasPrefix(name, "process_") || strings.HasPrefix(name, "promhttp_") {
			continue
		}
		if !strings.HasPrefix(name, "media_covers_") {
			t.Errorf("metric %s is missing the media_covers_ prefix", name)
		}
	}
}

func TestCoverObserver(t *testing.T) {
	obs := NewCoverObserver()

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("observer panicked: %v", r)
		}
	}()

	obs.GenerationStarted()
	obs.PhaseFinished("tiles", 0.2)
	obs.FrameRendered()
	obs.OutputEncoded("gif", 512*1024)
	obs.GenerationFinished("collage", "animated", 1.5, nil)

	obs.GenerationStarted()
	obs.GenerationFinished("split", "static", 0.3, errors.New("boom"))
}

type fakeStats struct {
	stats Stats
	err   error
	calls atomic.Int32
}

func (f *fakeStats) GetStats(_ context.Context) (Stats, error) {
	f.calls.Add(1)
	return f.stats, f.err
}

func TestCollectorCollect(t *testing.T) {
	provider := &fakeStats{stats: Stats{Libraries: 3, StoredCovers: 12}}
	c := NewCollector(provider, time.Hour)

	c.collect()

	if provider.calls.Load() != 1 {
		t.Errorf("GetStats called %d times, want 1", provider.calls.Load())
	}
	if got := testutil.ToFloat64(LibrariesTotal); got != 3 {
		t.Errorf("LibrariesTotal = %v, want 3", got)
	}
	if got := testutil.ToFloat64(StoredCoversTotal); got != 12 {
		t.Errorf("StoredCoversTotal = %v, want 12", got)
	}
}

func TestCollectorKeepsValuesOnError(t *testing.T) {
	NewCollector(&fakeStats{stats: Stats{Libraries: 7, StoredCovers: 2}}, time.Hour).collect()

	failing := &fakeStats{stats: Stats{Libraries: 0}, err: errors.New("listing failed")}
	NewCollector(failing, time.Hour).collect()

	if got := testutil.ToFloat64(LibrariesTotal); got != 7 {
		t.Errorf("LibrariesTotal = %v, want previous value 7", got)
	}
}

func TestCollectorNilProvider(_ *testing.T) {
	c := NewCollector(nil, time.Hour)
	c.collect()
}

func TestCollectorStatsFunc(t *testing.T) {
	var called bool
	c := NewCollector(StatsFunc(func(ctx context.Context) (Stats, error) {
		called = true
		if _, ok := ctx.Deadline(); !ok {
			t.Error("collection context has no deadline")
		}
		return Stats{}, nil
	}), time.Hour)
	c.collect()
	if !called {
		t.Error("StatsFunc not called")
	}
}

func TestCollectorStartStop(t *testing.T) {
	provider := &fakeStats{}
	c := NewCollector(provider, 10*time.Millisecond)
	c.Start()
	time.Sleep(35 * time.Millisecond)
	c.Stop()
	c.Stop()

	after := provider.calls.Load()
	if after == 0 {
		t.Error("expected collector to gather stats at least once")
	}
	time.Sleep(30 * time.Millisecond)
	if provider.calls.Load() != after {
		t.Error("collector kept running after Stop")
	}
}

func TestCollectorStopBeforeStart(_ *testing.T) {
	NewCollector(&fakeStats{}, time.Hour).Stop()
}

func TestMetricsConcurrentAccess(t *testing.T) {
	done := make(chan bool, 10)

	for i := 0; i < 10; i++ {
		go func(id int) {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Goroutine %d panicked: %v", id, r)
				}
				done <- true
			}()

			HTTPRequestsTotal.WithLabelValues("GET", "/test", "200").Inc()
			CoverFramesRendered.Inc()
			ArtworkFetchesTotal.WithLabelValues("success").Inc()
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func BenchmarkCoverObserver(b *testing.B) {
	obs := NewCoverObserver()
	for i := 0; i < b.N; i++ {
		obs.FrameRendered()
	}
}
