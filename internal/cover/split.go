package cover

import (
	"image"
	"image/color"
	"image/draw"

	"media-covers/internal/palette"
	"media-covers/internal/raster"
)

// SplitLayout describes the diagonal-split style. Top and Bottom are the
// divider positions where it meets the top and bottom edges, as fractions of
// the canvas width; everything left of the divider shows the backdrop.
type SplitLayout struct {
	Top    float64
	Bottom float64
	// Foreground is the share of the canvas width the artwork fills,
	// flush with the right edge.
	Foreground float64
	// Feather is the width of the shadow band along the divider.
	Feather       int
	ShadowOpacity uint8
}

// DefaultSplitLayout slants the divider from 55% of the width at the top to
// 40% at the bottom, with the artwork filling the right two thirds.
func DefaultSplitLayout() SplitLayout {
	return SplitLayout{
		Top:           DefaultSplitTop,
		Bottom:        DefaultSplitBottom,
		Foreground:    2.0 / 3.0,
		Feather:       30,
		ShadowOpacity: 178,
	}
}

// dividerX is the divider column for row y of a w x h canvas.
func (l SplitLayout) dividerX(y, w, h int) float64 {
	t := 0.0
	if h > 1 {
		t = float64(y) / float64(h-1)
	}
	return float64(w) * (l.Top + (l.Bottom-l.Top)*t)
}

// DiagonalMask returns a mask that is opaque left of the divider and clear
// right of it.
func (l SplitLayout) DiagonalMask(size image.Point) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, size.X, size.Y))
	for y := 0; y < size.Y; y++ {
		edge := min(int(l.dividerX(y, size.X, size.Y)), size.X)
		row := mask.Pix[y*mask.Stride : y*mask.Stride+size.X]
		for x := 0; x < edge; x++ {
			row[x] = 0xff
		}
	}
	return mask
}

// ShadowBand returns a band of shade that starts at the divider and fades
// out over Feather pixels to the right, softened with a blur.
func (l SplitLayout) ShadowBand(b raster.Backend, size image.Point, shade color.NRGBA) *image.NRGBA {
	band := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))
	if l.Feather <= 0 {
		return band
	}
	for y := 0; y < size.Y; y++ {
		edge := l.dividerX(y, size.X, size.Y)
		start := max(int(edge), 0)
		for x := start; x < min(start+l.Feather, size.X); x++ {
			fade := 1 - (float64(x)-edge)/float64(l.Feather)
			if fade <= 0 {
				continue
			}
			i := band.PixOffset(x, y)
			band.Pix[i+0] = shade.R
			band.Pix[i+1] = shade.G
			band.Pix[i+2] = shade.B
			band.Pix[i+3] = uint8(float64(l.ShadowOpacity) * min(fade, 1))
		}
	}
	return b.Blur(band, float64(l.Feather)/3)
}

// ComposeSplit renders the split style onto a copy of plate: art fills the
// right-hand share of the canvas keeping its right edge, a shadow darkens its edge along the
// divider, and the plate is drawn back over everything left of the divider.
// tint is the backdrop colour the shadow shade derives from.
func ComposeSplit(b raster.Backend, art image.Image, plate *image.RGBA, tint color.NRGBA, l SplitLayout) *image.RGBA {
	size := plate.Bounds().Size()
	canvas := cloneRGBA(plate)

	fgWidth := max(int(float64(size.X)*l.Foreground), 1)
	fg := b.FillRight(art, fgWidth, size.Y)
	b.Composite(canvas, fg, image.Pt(size.X-fgWidth, 0))

	b.Composite(canvas, l.ShadowBand(b, size, palette.Darken(tint, 0.5)), image.Point{})
	b.CompositeMask(canvas, plate, l.DiagonalMask(size), image.Point{})
	return canvas
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}
