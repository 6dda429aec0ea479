package artwork

import (
	"context"
	"fmt"
	"image"
	"time"

	"media-covers/internal/logging"
	"media-covers/internal/metrics"
	"media-covers/internal/workers"
)

// Decoder decodes encoded image bytes. raster.Backend satisfies it.
type Decoder interface {
	Decode(data []byte) (image.Image, string, error)
}

// Fetcher fetches and decodes artwork with bounded concurrency.
type Fetcher struct {
	source  Source
	decoder Decoder
	workers int
}

// NewFetcher creates a fetcher. workers <= 0 sizes the pool for I/O.
func NewFetcher(source Source, decoder Decoder, workerCount int) *Fetcher {
	return &Fetcher{
		source:  source,
		decoder: decoder,
		workers: workers.Resolve(workerCount, 2.0, 16),
	}
}

// FetchOne fetches and decodes a single item. Decode failures wrap ErrDecode.
func (f *Fetcher) FetchOne(ctx context.Context, item Item) (Artwork, error) {
	start := time.Now()
	defer func() {
		metrics.ArtworkFetchDuration.Observe(time.Since(start).Seconds())
	}()

	data, err := f.source.Fetch(ctx, item.ID)
	if err != nil {
		metrics.ArtworkFetchesTotal.WithLabelValues("error_fetch").Inc()
		return Artwork{}, fmt.Errorf("fetch %s: %w", item.ID, err)
	}

	img, format, err := f.decoder.Decode(data)
	if err != nil {
		metrics.ArtworkFetchesTotal.WithLabelValues("error_decode").Inc()
		return Artwork{}, fmt.Errorf("%w: %s: %v", ErrDecode, item.ID, err)
	}

	if format == "" {
		format = "unknown"
	}
	metrics.ArtworkFetchesTotal.WithLabelValues("success").Inc()
	metrics.ArtworkDecodeByFormat.WithLabelValues(format).Inc()

	return Artwork{Item: item, Image: img, Format: format}, nil
}

// FetchAll fetches and decodes items concurrently and returns at most want
// artworks (want <= 0 means all). Items that fail are omitted; the result
// keeps the order of items. The only error returned is context cancellation.
func (f *Fetcher) FetchAll(ctx context.Context, items []Item, want int) ([]Artwork, error) {
	results := make([]*Artwork, len(items))

	err := workers.Each(ctx, len(items), f.workers, func(ctx context.Context, i int) error {
		art, err := f.FetchOne(ctx, items[i])
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.Warn("Omitting artwork %s: %v", items[i].ID, err)
			return nil
		}
		results[i] = &art
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]Artwork, 0, len(items))
	for _, r := range results {
		if r == nil {
			continue
		}
		out = append(out, *r)
		if want > 0 && len(out) >= want {
			break
		}
	}

	logging.Debug("Fetched %d/%d artworks", len(out), len(items))
	return out, nil
}
