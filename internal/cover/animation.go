package cover

import (
	"context"
	"fmt"
	"image"
	"math/rand/v2"

	"media-covers/internal/logging"
	"media-covers/internal/raster"
)

// AnimationSize is the output resolution of animated covers. Frames are
// rendered at CanvasSize and downscaled.
var AnimationSize = image.Pt(560, 315)

const (
	// animationGrain is the default per-frame grain of animations.
	animationGrain = 0.03
	// animationPaletteSize is the colour count of the shared GIF palette.
	animationPaletteSize = 256
)

// ScrollOffset is the scroll distance of frame f of total for a column
// whose content repeats every period pixels. Frame total would land back on
// offset 0, which is what makes the loop seamless.
func ScrollOffset(f, total, period int) int {
	if total <= 0 {
		return 0
	}
	return f * period / total
}

// WindowStart is where column col's window begins in its extended column
// for a scroll offset. The middle column scrolls down, the outer two up; all
// start half a column in.
func WindowStart(col, offset, base, period int) int {
	if col != 1 {
		offset = -offset
	}
	return floorMod(base/2+offset, period)
}

// LoopAnimator renders frames of the scrolling collage. It owns every
// buffer it draws from; frames are independent of each other apart from the
// shared random source.
type LoopAnimator struct {
	backend raster.Backend
	layout  CollageLayout
	columns [collageCols]*ExtendedColumn
	plate   *image.RGBA
	overlay *Overlay
	grain   float64
	rng     *rand.Rand
	output  image.Point
}

// AnimatorConfig is everything a LoopAnimator draws with.
type AnimatorConfig struct {
	Layout  CollageLayout
	Plate   *image.RGBA
	Overlay *Overlay
	Grain   float64
	Rng     *rand.Rand
	Output  image.Point
}

// NewLoopAnimator builds the three extended columns from tiles. Column c
// takes tiles 3c, 3c+1 and 3c+2, wrapping when fewer than nine exist.
func NewLoopAnimator(b raster.Backend, tiles []*image.RGBA, cfg AnimatorConfig) (*LoopAnimator, error) {
	if len(tiles) == 0 {
		return nil, fmt.Errorf("%w: animation needs at least one artwork", ErrInsufficientArtwork)
	}
	if cfg.Plate == nil {
		return nil, fmt.Errorf("%w: no background plate", ErrGenerationFailed)
	}

	a := &LoopAnimator{
		backend: b,
		layout:  cfg.Layout,
		plate:   cfg.Plate,
		overlay: cfg.Overlay,
		grain:   cfg.Grain,
		rng:     cfg.Rng,
		output:  cfg.Output,
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if a.output == (image.Point{}) {
		a.output = AnimationSize
	}

	for col := range a.columns {
		group := make([]*image.RGBA, collageRows)
		for i := range group {
			group[i] = tiles[(col*collageRows+i)%len(tiles)]
		}
		a.columns[col] = BuildExtendedColumn(group, cfg.Layout.Tile.CellHeight, cfg.Layout.Margin)
	}
	return a, nil
}

// Frame renders frame f of total at the output resolution. A panic inside
// the raster code is reported as ErrGenerationFailed.
func (a *LoopAnimator) Frame(f, total int) (frame *image.NRGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			frame = nil
			err = fmt.Errorf("%w: frame %d: %v", ErrGenerationFailed, f, r)
		}
	}()

	canvas := cloneRGBA(a.plate)
	for col, column := range a.columns {
		offset := ScrollOffset(f, total, column.Period())
		start := WindowStart(col, offset, column.Base(), column.Period())
		a.layout.PlaceColumn(a.backend, canvas, column.Window(start, column.Base()), col)
	}
	a.overlay.Apply(a.backend, canvas)
	AddGrain(canvas, a.grain, a.rng)

	return a.backend.Resize(canvas, a.output.X, a.output.Y), nil
}

// Render renders all frames in order. It stops between frames when ctx is
// done; any failure discards every frame rendered so far.
func (a *LoopAnimator) Render(ctx context.Context, total int, obs Observer) ([]*image.NRGBA, error) {
	if total <= 0 {
		return nil, fmt.Errorf("%w: frame count must be positive", ErrInvalidParams)
	}
	if obs == nil {
		obs = nopObserver{}
	}

	frames := make([]*image.NRGBA, 0, total)
	for f := 0; f < total; f++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: stopped after %d/%d frames: %w", ErrGenerationFailed, f, total, err)
		}
		frame, err := a.Frame(f, total)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
		obs.FrameRendered()

		if (f+1)%10 == 0 {
			logging.Debug("Rendered %d/%d frames", f+1, total)
		}
	}
	return frames, nil
}
