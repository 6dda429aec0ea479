package metrics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"media-covers/internal/logging"
)

// collectTimeout bounds one GetStats call.
const collectTimeout = 10 * time.Second

// Stats is a point-in-time view of the service inventory.
type Stats struct {
	Libraries    int
	StoredCovers int
}

// StatsProvider reports inventory for the gauges. A provider returning an
// error leaves the previous gauge values in place.
type StatsProvider interface {
	GetStats(ctx context.Context) (Stats, error)
}

// StatsFunc adapts a function to StatsProvider.
type StatsFunc func(ctx context.Context) (Stats, error)

// GetStats calls f.
func (f StatsFunc) GetStats(ctx context.Context) (Stats, error) { return f(ctx) }

// Collector refreshes the inventory gauges on an interval until stopped.
type Collector struct {
	provider StatsProvider
	interval time.Duration

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

// NewCollector returns a stopped collector; call Start to run it.
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	ctx, cancel := context.WithCancel(context.Background())
	return &Collector{
		provider: provider,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start runs one collection immediately and then one per interval.
func (c *Collector) Start() {
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(c.done)
		c.run()
	}()
}

// Stop cancels an in-flight collection and waits for the loop to exit.
// It is safe to call more than once, and before Start.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() {
		c.cancel()
		if !c.started.Load() {
			return
		}
		select {
		case <-c.done:
		case <-time.After(collectTimeout):
			logging.Warn("Metrics collector did not stop within %v", collectTimeout)
		}
	})
}

func (c *Collector) run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		c.collect()
		select {
		case <-ticker.C:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Collector) collect() {
	if c.provider == nil || c.ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, collectTimeout)
	defer cancel()

	stats, err := c.provider.GetStats(ctx)
	if err != nil {
		logging.Warn("Metrics collection failed, keeping previous values: %v", err)
		return
	}

	LibrariesTotal.Set(float64(stats.Libraries))
	StoredCoversTotal.Set(float64(stats.StoredCovers))
	logging.Debug("Inventory: %d libraries, %d stored covers", stats.Libraries, stats.StoredCovers)
}
