package cover

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Style names a static cover layout.
type Style string

const (
	// StyleCollage is the rotated 3x3 grid of poster tiles.
	StyleCollage Style = "collage"
	// StyleSplit is one artwork behind a diagonal split.
	StyleSplit Style = "split"
	// StyleCards is one artwork as a stack of three rotated cards.
	StyleCards Style = "cards"
)

// Styles lists every static style.
var Styles = []Style{StyleCollage, StyleSplit, StyleCards}

// ParseStyle resolves a style name, accepting the legacy names used by
// older clients ("multi_1", "single_1", "single_2").
func ParseStyle(name string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "collage", "multi_1":
		return StyleCollage, nil
	case "split", "single_2":
		return StyleSplit, nil
	case "cards", "single_1":
		return StyleCards, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedStyle, name)
}

// Format names an output encoding.
type Format string

const (
	// FormatPNG is used for every static cover.
	FormatPNG Format = "png"
	// FormatGIF is the palette-indexed loop.
	FormatGIF Format = "gif"
	// FormatWebP is the lossy-adaptive loop.
	FormatWebP Format = "webp"
)

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatGIF:
		return "image/gif"
	case FormatWebP:
		return "image/webp"
	default:
		return "image/png"
	}
}

// ParseAnimationFormat resolves an animated output format name.
func ParseAnimationFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "gif":
		return FormatGIF, nil
	case "webp":
		return FormatWebP, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedOutputFormat, name)
}

// Defaults applied to zero-valued StyleParams fields.
const (
	DefaultBlurSigma   = 50.0
	DefaultColorRatio  = 0.8
	DefaultGrain       = 0.05
	DefaultSplitTop    = 0.55
	DefaultSplitBottom = 0.40
	DefaultTileCount   = 9

	DefaultFrameCount    = 30
	DefaultFrameDuration = 50
)

// StyleParams tunes a generation. Zero values select the defaults above.
type StyleParams struct {
	// BlurSigma is the backdrop blur strength.
	BlurSigma float64 `json:"blur_sigma,omitempty" validate:"gte=0,lte=100"`
	// ColorRatio is how far the backdrop is blended toward its tint.
	ColorRatio float64 `json:"color_ratio,omitempty" validate:"gte=0,lte=1"`
	// Grain is the film grain standard deviation as a fraction of 255.
	Grain float64 `json:"grain,omitempty" validate:"gte=0,lte=0.5"`
	// NoGrain disables film grain entirely.
	NoGrain bool `json:"no_grain,omitempty"`
	// SplitTop and SplitBottom are the diagonal divider positions at the
	// top and bottom edges, as fractions of the canvas width.
	SplitTop    float64 `json:"split_top,omitempty" validate:"gte=0,lte=1"`
	SplitBottom float64 `json:"split_bottom,omitempty" validate:"gte=0,lte=1"`
	// TileCount caps how many artworks the collage uses.
	TileCount int `json:"tile_count,omitempty" validate:"gte=0,lte=9"`
	// Seed makes every random choice reproducible.
	Seed *uint64 `json:"seed,omitempty"`
}

func (p StyleParams) withDefaults() StyleParams {
	if p.BlurSigma == 0 {
		p.BlurSigma = DefaultBlurSigma
	}
	if p.ColorRatio == 0 {
		p.ColorRatio = DefaultColorRatio
	}
	if p.SplitTop == 0 {
		p.SplitTop = DefaultSplitTop
	}
	if p.SplitBottom == 0 {
		p.SplitBottom = DefaultSplitBottom
	}
	if p.TileCount == 0 {
		p.TileCount = DefaultTileCount
	}
	return p
}

// rng returns the request's random source.
func (p StyleParams) rng() *rand.Rand {
	if p.Seed != nil {
		return rand.New(rand.NewPCG(*p.Seed, *p.Seed^0x9e3779b97f4a7c15))
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// grainOr returns the grain intensity, with def standing in for an unset
// value. Styles differ in their default.
func (p StyleParams) grainOr(def float64) float64 {
	switch {
	case p.NoGrain:
		return 0
	case p.Grain == 0:
		return def
	default:
		return p.Grain
	}
}

// StaticRequest asks for one static cover.
type StaticRequest struct {
	LibraryID string      `json:"library_id" validate:"required"`
	Style     Style       `json:"style"`
	Title     string      `json:"title" validate:"max=64"`
	Subtitle  string      `json:"subtitle" validate:"max=128"`
	Params    StyleParams `json:"params"`
}

// AnimatedRequest asks for one looping animation. FrameDurationMs must be
// a multiple of 10 so that frame_count x frame_duration is the exact
// playback length of the GIF.
type AnimatedRequest struct {
	LibraryID       string      `json:"library_id" validate:"required"`
	FrameCount      int         `json:"frame_count" validate:"gte=0,lte=240"`
	FrameDurationMs int         `json:"frame_duration" validate:"gte=0,lte=2000,centiseconds"`
	Format          Format      `json:"output_format"`
	Title           string      `json:"title" validate:"max=64"`
	Subtitle        string      `json:"subtitle" validate:"max=128"`
	Params          StyleParams `json:"params"`
}

// newValidator returns a validator with the cover-specific tags registered.
// centiseconds accepts whole multiples of 10 ms, the GIF delay resolution.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("centiseconds", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%10 == 0
	}); err != nil {
		panic(fmt.Sprintf("register centiseconds validation: %v", err))
	}
	return v
}

// validateStruct runs struct validation and maps failures to ErrInvalidParams.
func validateStruct(v *validator.Validate, req any) error {
	if err := v.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}
