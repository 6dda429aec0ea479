// Package metrics provides Prometheus instrumentation for the media-covers service.
//
// All metrics are prefixed with "media_covers_" and registered with the default
// registry through promauto, so main only has to expose promhttp.Handler on the
// metrics port.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Generation Metrics
//
//   - CoverGenerationsTotal: Counter by style, kind (static/animated) and status
//   - CoverGenerationDuration: Histogram of end-to-end generation time
//   - CoverPhaseDuration: Histogram per pipeline phase (fetch, palette, tiles, ...)
//   - CoverFramesRendered: Counter of animation frames rendered
//   - CoverOutputBytes: Histogram of encoded output size per format
//   - CoverGenerationsInProgress: Gauge of running generations
//
// Generation metrics are recorded through [NewCoverObserver], which satisfies
// cover.Observer so the cover package does not import this one.
//
// ## Artwork Metrics
//
//   - ArtworkFetchesTotal: Counter by status (success, error_fetch, error_decode)
//   - ArtworkFetchDuration: Histogram of fetch+decode time per artwork
//   - ArtworkReadRetries: Counter of library reads retried after ESTALE
//   - ArtworkDecodeByFormat: Counter of decodes by detected format
//
// ## Cover Store Metrics
//
//   - DBQueryTotal, DBQueryDuration: per-operation query counters and timings
//   - StoredCoversTotal, LibrariesTotal: gauges refreshed by [Collector]
//
// # Usage
//
//	metrics.InitializeMetrics()
//	collector := metrics.NewCollector(store, time.Minute)
//	collector.Start()
//	defer collector.Stop()
package metrics
