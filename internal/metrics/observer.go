package metrics

// CoverObserver satisfies cover.Observer using the Prometheus metrics
// declared in this package. The cover package never imports metrics; the
// observer is handed to it at startup.
type CoverObserver struct{}

// NewCoverObserver creates an observer that records generation metrics
// into the Prometheus counters and histograms declared in metrics.go.
func NewCoverObserver() *CoverObserver {
	return &CoverObserver{}
}

func (o *CoverObserver) GenerationStarted() {
	CoverGenerationsInProgress.Inc()
}

func (o *CoverObserver) GenerationFinished(style, kind string, durationSeconds float64, err error) {
	CoverGenerationsInProgress.Dec()
	CoverGenerationDuration.WithLabelValues(style, kind).Observe(durationSeconds)
	status := "success"
	if err != nil {
		status = "error"
	}
	CoverGenerationsTotal.WithLabelValues(style, kind, status).Inc()
}

func (o *CoverObserver) PhaseFinished(phase string, durationSeconds float64) {
	CoverPhaseDuration.WithLabelValues(phase).Observe(durationSeconds)
}

func (o *CoverObserver) FrameRendered() {
	CoverFramesRendered.Inc()
}

func (o *CoverObserver) OutputEncoded(format string, size int) {
	CoverOutputBytes.WithLabelValues(format).Observe(float64(size))
}
