package cover

// Observer receives generation events. metrics.CoverObserver records them
// in Prometheus; the zero configuration discards them.
type Observer interface {
	GenerationStarted()
	GenerationFinished(style, kind string, durationSeconds float64, err error)
	PhaseFinished(phase string, durationSeconds float64)
	FrameRendered()
	OutputEncoded(format string, size int)
}

// Generation phases reported through Observer.PhaseFinished.
const (
	PhaseFetch      = "fetch"
	PhasePalette    = "palette"
	PhaseTiles      = "tiles"
	PhaseBackground = "background"
	PhaseCompose    = "compose"
	PhaseFrames     = "frames"
	PhaseEncode     = "encode"
)

type nopObserver struct{}

func (nopObserver) GenerationStarted()                                {}
func (nopObserver) GenerationFinished(string, string, float64, error) {}
func (nopObserver) PhaseFinished(string, float64)                     {}
func (nopObserver) FrameRendered()                                    {}
func (nopObserver) OutputEncoded(string, int)                         {}
