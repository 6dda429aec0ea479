package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_covers_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_covers_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_covers_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Cover generation metrics
var (
	CoverGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_covers_generations_total",
			Help: "Total number of cover generations",
		},
		[]string{"style", "kind", "status"}, // kind: "static", "animated"
	)

	CoverGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_covers_generation_duration_seconds",
			Help:    "Time spent generating one cover",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 45, 90, 180},
		},
		[]string{"style", "kind"},
	)

	CoverPhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_covers_phase_duration_seconds",
			Help:    "Time spent in each phase of a generation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"phase"}, // "fetch", "palette", "tiles", "background", "compose", "frames", "encode"
	)

	CoverFramesRendered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_covers_animation_frames_rendered_total",
			Help: "Total number of animation frames rendered",
		},
	)

	CoverOutputBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_covers_output_bytes",
			Help:    "Size of encoded cover output in bytes",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10), // 16KB to 8MB
		},
		[]string{"format"},
	)

	CoverGenerationsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_covers_generations_in_progress",
			Help: "Number of cover generations currently running",
		},
	)
)

// Artwork fetch metrics
var (
	ArtworkFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_covers_artwork_fetches_total",
			Help: "Total number of artwork fetches",
		},
		[]string{"status"}, // "success", "error_fetch", "error_decode"
	)

	ArtworkFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_covers_artwork_fetch_duration_seconds",
			Help:    "Time to fetch and decode one artwork",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	ArtworkReadRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_covers_artwork_read_retries_total",
			Help: "Library reads retried after a stale NFS file handle",
		},
		[]string{"operation", "outcome"}, // outcome: "retry", "success", "failure"
	)

	ArtworkDecodeByFormat = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_covers_artwork_decode_total",
			Help: "Artwork decodes by detected image format",
		},
		[]string{"format"},
	)
)

// Cover store metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_covers_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_covers_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	StoredCoversTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_covers_stored_covers",
			Help: "Number of generated covers kept in the cover store",
		},
	)

	LibrariesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_covers_libraries",
			Help: "Number of artwork libraries visible to the service",
		},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_covers_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_covers_memory_usage_ratio",
			Help: "Heap allocation as a share of the memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_covers_memory_paused",
			Help: "1 while new generations are held for memory pressure",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_covers_memory_gc_pauses_total",
			Help: "Times generation was held and a GC forced for memory pressure",
		},
	)
)
