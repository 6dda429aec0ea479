package cover

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"unicode/utf8"

	"media-covers/internal/palette"
	"media-covers/internal/raster"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Title block geometry used by the collage and the animation.
const (
	blockTitleX          = 73
	blockTitleY          = 427
	blockTitleSize       = 163
	blockSubtitleX       = 125
	blockSubtitleY       = 625
	blockSubtitleSize    = 50
	blockSubtitleMin     = 30
	blockAccentX         = 84
	blockAccentY         = 620
	blockAccentWidth     = 22
	blockTitleShadow     = 10
	blockSubtitleShadow  = 4
	blockShadowAlpha     = 75
	blockSubShadowAlpha  = 100
	subtitleShrinkChars  = 10
	subtitleShrinkWords  = 3
	subtitleShrinkFactor = 0.8
)

// Centered title geometry used by the single-image styles, as fractions of
// the canvas height.
const (
	centeredTitleScale    = 0.17
	centeredSubtitleScale = 0.07
	centeredGapScale      = 0.035
	centeredShadow        = 12
	centeredShadowAlpha   = 75
)

var textFill = color.NRGBA{R: 255, G: 255, B: 255, A: 229}

// TitleSpec is the text drawn over a cover.
type TitleSpec struct {
	Title    string
	Subtitle string
	// Accent colours the block beside the subtitle.
	Accent color.NRGBA
	// Tint is the backdrop colour; text shadows use a darker shade of it.
	Tint color.NRGBA
}

func (s TitleSpec) empty() bool {
	return s.Title == "" && s.Subtitle == ""
}

func (s TitleSpec) shadowColor(alpha uint8) color.NRGBA {
	c := palette.Darken(s.Tint, 0.8)
	c.A = alpha
	return c
}

// Overlay is a prerendered title: a blurred shadow layer and a crisp text
// layer, both canvas-sized. It can be applied to any number of canvases.
type Overlay struct {
	shadow image.Image
	text   *image.RGBA
}

// Apply composites the overlay onto dst.
func (o *Overlay) Apply(b raster.Backend, dst draw.Image) {
	if o == nil {
		return
	}
	if o.shadow != nil {
		b.Composite(dst, o.shadow, image.Point{})
	}
	if o.text != nil {
		b.Composite(dst, o.text, image.Point{})
	}
}

// TitleRenderer draws titles with a FontSet.
type TitleRenderer struct {
	fonts   *FontSet
	backend raster.Backend
}

// NewTitleRenderer creates a renderer.
func NewTitleRenderer(fonts *FontSet, backend raster.Backend) *TitleRenderer {
	return &TitleRenderer{fonts: fonts, backend: backend}
}

// Block renders the left-hand title block: a large title, the subtitle one
// word per line, and an accent bar whose height follows the line count.
// Empty strings are skipped; an empty spec yields an empty overlay.
func (r *TitleRenderer) Block(size image.Point, spec TitleSpec) (*Overlay, error) {
	if spec.empty() {
		return &Overlay{}, nil
	}

	bounds := image.Rect(0, 0, size.X, size.Y)
	text := image.NewRGBA(bounds)
	var shadow *image.RGBA

	if spec.Title != "" {
		face, err := r.fonts.titleFace(blockTitleSize)
		if err != nil {
			return nil, err
		}
		defer face.Close()

		shadow = image.NewRGBA(bounds)
		shadowColor := spec.shadowColor(blockShadowAlpha)
		for off := 3; off <= blockTitleShadow; off += 2 {
			drawAt(shadow, face, spec.Title, blockTitleX+off, blockTitleY+off, shadowColor)
		}
		drawAt(text, face, spec.Title, blockTitleX, blockTitleY, textFill)
	}

	if words := strings.Fields(spec.Subtitle); len(words) > 0 {
		fontSize := SubtitleSize(words)
		face, err := r.fonts.subtitleFace(fontSize)
		if err != nil {
			return nil, err
		}
		defer face.Close()

		spacing := int(blockSubtitleSize * 0.1)
		step := int(fontSize) + spacing
		shadowColor := spec.shadowColor(blockSubShadowAlpha)
		for i, word := range words {
			y := blockSubtitleY + i*step
			for off := 3; off <= blockSubtitleShadow; off += 2 {
				drawAt(text, face, word, blockSubtitleX+off, y+off, shadowColor)
			}
			drawAt(text, face, word, blockSubtitleX, y, textFill)
		}

		height := blockSubtitleSize + spacing + (len(words)-1)*step
		accent := spec.Accent
		accent.A = 0xff
		rect := image.Rect(blockAccentX, blockAccentY, blockAccentX+blockAccentWidth, blockAccentY+height)
		draw.Draw(text, rect, image.NewUniform(accent), image.Point{}, draw.Over)
	}

	overlay := &Overlay{text: text}
	if shadow != nil {
		overlay.shadow = r.backend.Blur(shadow, blockTitleShadow)
	}
	return overlay, nil
}

// Centered renders the title centred on the left quarter of the canvas with
// the subtitle below it, as used by the single-image styles.
func (r *TitleRenderer) Centered(size image.Point, spec TitleSpec) (*Overlay, error) {
	if spec.empty() {
		return &Overlay{}, nil
	}

	bounds := image.Rect(0, 0, size.X, size.Y)
	text := image.NewRGBA(bounds)
	shadow := image.NewRGBA(bounds)
	shadowColor := spec.shadowColor(centeredShadowAlpha)

	cx, cy := size.X/4, size.Y/2
	gap := int(float64(size.Y) * centeredGapScale)

	titleBottom := 0
	if spec.Title != "" {
		face, err := r.fonts.titleFace(math.Floor(float64(size.Y) * centeredTitleScale))
		if err != nil {
			return nil, err
		}
		defer face.Close()

		w, h := inkSize(face, spec.Title)
		x := cx - w/2
		y := cy - h - gap - 5
		for off := 3; off <= centeredShadow; off += 2 {
			drawInk(shadow, face, spec.Title, x+off, y+off, shadowColor)
		}
		drawInk(text, face, spec.Title, x, y, textFill)
		titleBottom = y + h
	}

	if spec.Subtitle != "" {
		face, err := r.fonts.subtitleFace(math.Floor(float64(size.Y) * centeredSubtitleScale))
		if err != nil {
			return nil, err
		}
		defer face.Close()

		w, h := inkSize(face, spec.Subtitle)
		x := cx - w/2
		y := cy - h/2
		if spec.Title != "" {
			y = max(cy+gap, titleBottom+gap)
		}
		for off := 2; off <= centeredShadow/2; off++ {
			drawInk(shadow, face, spec.Subtitle, x+off, y+off, shadowColor)
		}
		drawInk(text, face, spec.Subtitle, x, y, textFill)
	}

	return &Overlay{
		shadow: r.backend.Blur(shadow, centeredShadow),
		text:   text,
	}, nil
}

// SubtitleSize is the subtitle font size for the given words. Long words or
// many lines shrink it, down to a floor.
func SubtitleSize(words []string) float64 {
	longest := 0
	for _, w := range words {
		longest = max(longest, utf8.RuneCountInString(w))
	}
	if longest <= subtitleShrinkChars && len(words) <= subtitleShrinkWords {
		return blockSubtitleSize
	}
	ref := float64(max(longest, 3*len(words)))
	size := blockSubtitleSize * math.Pow(subtitleShrinkChars/ref, subtitleShrinkFactor)
	return math.Max(blockSubtitleMin, size)
}

// drawAt draws s with the top of the face's ascent at (x, y).
func drawAt(dst draw.Image, face font.Face, s string, x, y int, c color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// drawInk draws s so that its inked bounding box starts at (x, y).
func drawInk(dst draw.Image, face font.Face, s string, x, y int, c color.Color) {
	b, _ := font.BoundString(face, s)
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x-b.Min.X.Floor(), y-b.Min.Y.Floor()),
	}
	d.DrawString(s)
}

// inkSize returns the width and height of the inked area of s.
func inkSize(face font.Face, s string) (int, int) {
	b, _ := font.BoundString(face, s)
	return (b.Max.X - b.Min.X).Ceil(), (b.Max.Y - b.Min.Y).Ceil()
}
