package metrics

// Styles, kinds and formats known to the generator. Kept here so every label
// combination is exported from the first scrape.
var (
	knownStyles  = []string{"collage", "split", "cards"}
	knownKinds   = []string{"static", "animated"}
	knownFormats = []string{"png", "gif", "webp"}
	knownPhases  = []string{"fetch", "palette", "tiles", "background", "compose", "frames", "encode"}
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, style := range knownStyles {
		for _, kind := range knownKinds {
			CoverGenerationDuration.WithLabelValues(style, kind)
			for _, status := range []string{"success", "error"} {
				CoverGenerationsTotal.WithLabelValues(style, kind, status)
			}
		}
	}

	for _, phase := range knownPhases {
		CoverPhaseDuration.WithLabelValues(phase)
	}

	for _, format := range knownFormats {
		CoverOutputBytes.WithLabelValues(format)
	}

	for _, status := range []string{"success", "error_fetch", "error_decode"} {
		ArtworkFetchesTotal.WithLabelValues(status)
	}

	for _, op := range []string{"readdir", "read", "stat"} {
		for _, outcome := range []string{"retry", "success", "failure"} {
			ArtworkReadRetries.WithLabelValues(op, outcome)
		}
	}

	for _, format := range []string{"jpeg", "png", "gif", "webp", "unknown"} {
		ArtworkDecodeByFormat.WithLabelValues(format)
	}

	for _, op := range []string{"initialize_schema", "save_cover", "latest_cover", "list_covers", "count_covers", "prune_covers"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
