package cover

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math/rand/v2"
	"time"

	"media-covers/internal/artwork"
	"media-covers/internal/logging"
	"media-covers/internal/palette"
	"media-covers/internal/raster"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultPreviewLimit is the preview size when none is requested.
	DefaultPreviewLimit = 9

	// animationPaletteSources is how many artworks feed the animation
	// palette, animationPaletteColors how many colours each contributes.
	animationPaletteSources = 5
	animationPaletteColors  = 2

	// cardsGrain is the default grain of the cards style.
	cardsGrain = 0.03
)

// defaultAccent colours the title bar when no palette colour is available.
var defaultAccent = color.NRGBA{R: 100, G: 150, B: 200, A: 255}

// Service generates covers from an artwork source. It is safe for
// concurrent use; requests share nothing mutable.
type Service struct {
	source   artwork.Source
	backend  raster.Backend
	fetcher  *artwork.Fetcher
	fonts    *FontSet
	titles   *TitleRenderer
	observer Observer
	validate *validator.Validate

	collage CollageLayout
	split   SplitLayout
	cards   CardsLayout

	fetchWorkers int
}

// Option configures a Service.
type Option func(*Service)

// WithBackend selects the raster backend. The default is raster.NewImaging().
func WithBackend(b raster.Backend) Option {
	return func(s *Service) { s.backend = b }
}

// WithFonts sets the fonts. The default is DefaultFonts().
func WithFonts(f *FontSet) Option {
	return func(s *Service) { s.fonts = f }
}

// WithObserver receives generation events.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithFetchWorkers bounds concurrent artwork fetches. 0 sizes the pool
// automatically.
func WithFetchWorkers(n int) Option {
	return func(s *Service) { s.fetchWorkers = n }
}

// NewService creates a Service reading artwork from source.
func NewService(source artwork.Source, opts ...Option) (*Service, error) {
	s := &Service{
		source:   source,
		backend:  raster.NewImaging(),
		observer: nopObserver{},
		validate: newValidator(),
		collage:  DefaultCollageLayout(),
		split:    DefaultSplitLayout(),
		cards:    DefaultCardsLayout(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.fonts == nil {
		fonts, err := DefaultFonts()
		if err != nil {
			return nil, err
		}
		s.fonts = fonts
	}

	s.titles = NewTitleRenderer(s.fonts, s.backend)
	s.fetcher = artwork.NewFetcher(source, s.backend, s.fetchWorkers)
	return s, nil
}

// Backend returns the raster backend in use.
func (s *Service) Backend() raster.Backend {
	return s.backend
}

// Libraries lists the libraries of the source.
func (s *Service) Libraries(ctx context.Context) ([]artwork.Library, error) {
	return s.source.Libraries(ctx)
}

// Preview lists the items a cover for libraryID would draw from, in order.
func (s *Service) Preview(ctx context.Context, libraryID string, limit int) ([]artwork.Item, error) {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	return s.source.List(ctx, libraryID, limit)
}

// GenerateStatic renders one static cover as a 1920x1080 PNG.
func (s *Service) GenerateStatic(ctx context.Context, req StaticRequest) (data []byte, err error) {
	style, err := ParseStyle(string(req.Style))
	if err != nil {
		return nil, err
	}
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	params := req.Params.withDefaults()
	rng := params.rng()

	start := time.Now()
	s.observer.GenerationStarted()
	defer func() {
		s.observer.GenerationFinished(string(style), "static", time.Since(start).Seconds(), err)
	}()

	var canvas *image.RGBA
	switch style {
	case StyleCollage:
		canvas, err = s.renderCollage(ctx, req, params, rng)
	case StyleSplit:
		canvas, err = s.renderSplit(ctx, req, params, rng)
	case StyleCards:
		canvas, err = s.renderCards(ctx, req, params, rng)
	}
	if err != nil {
		return nil, err
	}

	t := time.Now()
	data, err = s.backend.EncodePNG(canvas)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	s.phase(PhaseEncode, t)
	s.observer.OutputEncoded(string(FormatPNG), len(data))

	logging.Info("Generated %s cover for %s in %v (%d bytes)", style, req.LibraryID, time.Since(start).Round(time.Millisecond), len(data))
	return data, nil
}

// GenerateAnimated renders the scrolling collage as a looping GIF or WebP at
// AnimationSize.
func (s *Service) GenerateAnimated(ctx context.Context, req AnimatedRequest) (data []byte, err error) {
	format, err := ParseAnimationFormat(string(req.Format))
	if err != nil {
		return nil, err
	}
	if format == FormatWebP && !s.backend.SupportsAnimatedWebP() {
		return nil, fmt.Errorf("%w: webp needs the %s backend to support it", ErrUnsupportedOutputFormat, s.backend.Name())
	}
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	frameCount := req.FrameCount
	if frameCount == 0 {
		frameCount = DefaultFrameCount
	}
	delay := req.FrameDurationMs
	if delay == 0 {
		delay = DefaultFrameDuration
	}
	params := req.Params.withDefaults()
	rng := params.rng()

	start := time.Now()
	s.observer.GenerationStarted()
	defer func() {
		s.observer.GenerationFinished(string(StyleCollage), "animated", time.Since(start).Seconds(), err)
	}()

	t := time.Now()
	arts, err := s.fetchArtworks(ctx, req.LibraryID, params.TileCount)
	if err != nil {
		return nil, err
	}
	s.phase(PhaseFetch, t)
	if len(arts) == 0 {
		return nil, fmt.Errorf("%w: no usable artwork in %s", ErrInsufficientArtwork, req.LibraryID)
	}

	t = time.Now()
	var colors []color.NRGBA
	for _, art := range arts[:min(len(arts), animationPaletteSources)] {
		colors = append(colors, palette.Extract(art.Image, animationPaletteColors)...)
	}
	accent := defaultAccent
	if len(colors) > 0 {
		accent = colors[0]
	}
	tint := PlateColor(colors, rng)
	s.phase(PhasePalette, t)

	t = time.Now()
	plate := GradientPlate(colors, s.collage.Canvas, rng)
	overlay, err := s.titles.Block(s.collage.Canvas, TitleSpec{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Accent:   accent,
		Tint:     tint,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	s.phase(PhaseBackground, t)

	t = time.Now()
	tiles := composeTiles(s.backend, images(arts), s.collage.Tile)
	s.phase(PhaseTiles, t)

	animator, err := NewLoopAnimator(s.backend, tiles, AnimatorConfig{
		Layout:  s.collage,
		Plate:   plate,
		Overlay: overlay,
		Grain:   params.grainOr(animationGrain),
		Rng:     rng,
		Output:  AnimationSize,
	})
	if err != nil {
		return nil, err
	}

	t = time.Now()
	frames, err := animator.Render(ctx, frameCount, s.observer)
	if err != nil {
		return nil, err
	}
	s.phase(PhaseFrames, t)

	t = time.Now()
	data, err = EncodeLoop(s.backend, frames, format, delay)
	if err != nil {
		return nil, err
	}
	s.phase(PhaseEncode, t)
	s.observer.OutputEncoded(string(format), len(data))

	logging.Info("Generated %d-frame %s animation for %s in %v (%d bytes)",
		frameCount, format, req.LibraryID, time.Since(start).Round(time.Millisecond), len(data))
	return data, nil
}

func (s *Service) renderCollage(ctx context.Context, req StaticRequest, params StyleParams, rng *rand.Rand) (*image.RGBA, error) {
	t := time.Now()
	arts, err := s.fetchArtworks(ctx, req.LibraryID, params.TileCount)
	if err != nil {
		return nil, err
	}
	s.phase(PhaseFetch, t)
	if len(arts) < minCollageTiles {
		return nil, fmt.Errorf("%w: %s has %d usable artworks, collage needs %d",
			ErrInsufficientArtwork, req.LibraryID, len(arts), minCollageTiles)
	}

	t = time.Now()
	lead := arts[0].Image
	colors := palette.Extract(lead, palette.DefaultCount)
	tint := PlateColor(colors, rng)
	accent := accentColor(colors, lead)
	s.phase(PhasePalette, t)

	t = time.Now()
	canvas := BlurredPlate(s.backend, lead, s.collage.Canvas, tint, BackgroundOptions{
		Sigma: params.BlurSigma,
		Ratio: params.ColorRatio,
		Grain: params.grainOr(DefaultGrain),
	}, rng)
	s.phase(PhaseBackground, t)

	t = time.Now()
	tiles := composeTiles(s.backend, images(arts), s.collage.Tile)
	s.phase(PhaseTiles, t)

	t = time.Now()
	if err := s.collage.Compose(s.backend, canvas, tiles); err != nil {
		return nil, err
	}
	if err := s.applyTitle(canvas, s.titles.Block, TitleSpec{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Accent:   accent,
		Tint:     tint,
	}); err != nil {
		return nil, err
	}
	s.phase(PhaseCompose, t)
	return canvas, nil
}

func (s *Service) renderSplit(ctx context.Context, req StaticRequest, params StyleParams, rng *rand.Rand) (*image.RGBA, error) {
	art, err := s.fetchLead(ctx, req.LibraryID)
	if err != nil {
		return nil, err
	}

	t := time.Now()
	tint := PlateColor(palette.Extract(art.Image, palette.DefaultCount), rng)
	s.phase(PhasePalette, t)

	t = time.Now()
	plate := BlurredPlate(s.backend, art.Image, s.collage.Canvas, tint, BackgroundOptions{
		Sigma: params.BlurSigma,
		Ratio: params.ColorRatio,
		Grain: params.grainOr(DefaultGrain),
	}, rng)
	s.phase(PhaseBackground, t)

	t = time.Now()
	layout := s.split
	layout.Top = params.SplitTop
	layout.Bottom = params.SplitBottom
	canvas := ComposeSplit(s.backend, art.Image, plate, tint, layout)
	if err := s.applyTitle(canvas, s.titles.Centered, TitleSpec{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Tint:     tint,
	}); err != nil {
		return nil, err
	}
	s.phase(PhaseCompose, t)
	return canvas, nil
}

func (s *Service) renderCards(ctx context.Context, req StaticRequest, params StyleParams, rng *rand.Rand) (*image.RGBA, error) {
	art, err := s.fetchLead(ctx, req.LibraryID)
	if err != nil {
		return nil, err
	}

	t := time.Now()
	colors := palette.Extract(art.Image, palette.DefaultCount)
	if len(colors) < 3 {
		colors = palette.Fallback()
	}
	s.phase(PhasePalette, t)

	t = time.Now()
	canvas := BlurredPlate(s.backend, art.Image, s.collage.Canvas, colors[0], BackgroundOptions{
		Sigma: params.BlurSigma,
		Ratio: params.ColorRatio,
		Grain: params.grainOr(cardsGrain),
	}, rng)
	s.phase(PhaseBackground, t)

	t = time.Now()
	ComposeCards(s.backend, canvas, art.Image, [2]color.NRGBA{colors[2], colors[1]}, s.cards)
	if err := s.applyTitle(canvas, s.titles.Centered, TitleSpec{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		Tint:     palette.Darken(colors[0], plateDarken),
	}); err != nil {
		return nil, err
	}
	s.phase(PhaseCompose, t)
	return canvas, nil
}

// applyTitle renders spec with layout and draws it onto canvas.
func (s *Service) applyTitle(canvas *image.RGBA, layout func(image.Point, TitleSpec) (*Overlay, error), spec TitleSpec) error {
	overlay, err := layout(canvas.Bounds().Size(), spec)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	overlay.Apply(s.backend, canvas)
	return nil
}

// fetchArtworks lists twice as many items as wanted so that undecodable
// ones can be skipped, and returns up to want decoded artworks.
func (s *Service) fetchArtworks(ctx context.Context, libraryID string, want int) ([]artwork.Artwork, error) {
	defer logging.Timed("fetch %d artworks from %s", want, libraryID)()

	items, err := s.source.List(ctx, libraryID, 2*want)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", libraryID, err)
	}
	arts, err := s.fetcher.FetchAll(ctx, items, want)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return arts, nil
}

// fetchLead returns the first artwork of a library. Unlike collage tiles it
// cannot be skipped, so a decode failure is returned.
func (s *Service) fetchLead(ctx context.Context, libraryID string) (artwork.Artwork, error) {
	t := time.Now()
	defer s.phase(PhaseFetch, t)

	items, err := s.source.List(ctx, libraryID, 1)
	if err != nil {
		return artwork.Artwork{}, fmt.Errorf("failed to list %s: %w", libraryID, err)
	}
	if len(items) == 0 {
		return artwork.Artwork{}, fmt.Errorf("%w: %s is empty", ErrInsufficientArtwork, libraryID)
	}
	return s.fetcher.FetchOne(ctx, items[0])
}

// accentColor picks the title bar colour: the second palette colour so it
// stands apart from the backdrop tint, else the first, else the artwork's
// dominant colour.
func accentColor(colors []color.NRGBA, lead image.Image) color.NRGBA {
	switch {
	case len(colors) > 1:
		return colors[1]
	case len(colors) == 1:
		return colors[0]
	default:
		return palette.Accent(lead)
	}
}

func (s *Service) phase(name string, start time.Time) {
	s.observer.PhaseFinished(name, time.Since(start).Seconds())
}

func images(arts []artwork.Artwork) []image.Image {
	out := make([]image.Image, len(arts))
	for i, a := range arts {
		out[i] = a.Image
	}
	return out
}
