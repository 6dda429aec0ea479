package cover

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"media-covers/internal/raster"
)

// CardShadow is the drop shadow of one card.
type CardShadow struct {
	Offset  image.Point
	Blur    float64
	Opacity float64
}

// CardsLayout describes the layered-card style: three square cards cut from
// one artwork, stacked and fanned out around a centre point on the right of
// the canvas. Index 0 is the bottom card, index 2 the top one.
type CardsLayout struct {
	// Scale is the card edge as a fraction of the canvas height.
	Scale   float64
	Angles  [3]float64
	Shadows [3]CardShadow
	// Blur and Mix soften the two lower cards and tint them toward their
	// palette colour. The top card is the untouched artwork.
	Blur [2]float64
	Mix  [2]float64
}

// DefaultCardsLayout is 0.7H cards fanned at 36, 18 and 0 degrees.
func DefaultCardsLayout() CardsLayout {
	return CardsLayout{
		Scale:  0.7,
		Angles: [3]float64{36, 18, 0},
		Shadows: [3]CardShadow{
			{Offset: image.Pt(10, 16), Blur: 12, Opacity: 0.4},
			{Offset: image.Pt(15, 22), Blur: 15, Opacity: 0.5},
			{Offset: image.Pt(20, 26), Blur: 18, Opacity: 0.6},
		},
		Blur: [2]float64{16, 8},
		Mix:  [2]float64{0.6, 0.5},
	}
}

// Center is where the card stack is centred on a canvas of the given size.
func (l CardsLayout) Center(size image.Point) image.Point {
	return image.Pt(size.X-size.Y/2, size.Y/2)
}

// ComposeCards draws the card stack onto dst. tints colour the bottom and
// middle cards.
func ComposeCards(b raster.Backend, dst *image.RGBA, art image.Image, tints [2]color.NRGBA, l CardsLayout) {
	size := dst.Bounds().Size()
	edge := max(int(float64(size.Y)*l.Scale), 1)

	square := b.Fill(art, edge, edge)
	mask := b.RoundedMask(edge, edge, edge/8)

	cards := [3]*image.NRGBA{
		tintCard(b.Blur(square, l.Blur[0]), tints[0], l.Mix[0]),
		tintCard(b.Blur(square, l.Blur[1]), tints[1], l.Mix[1]),
		cloneNRGBA(square),
	}

	center := l.Center(size)
	for i, card := range cards {
		raster.ApplyMask(card, mask)
		layer := cardLayer(b, card, mask, l.Shadows[i])
		rotated := b.Rotate(layer, l.Angles[i])
		rb := rotated.Bounds()
		b.Composite(dst, rotated, image.Pt(center.X-rb.Dx()/2, center.Y-rb.Dy()/2))
	}
}

// cardLayer returns card over its shadow, centred in a transparent layer
// large enough for the shadow's offset and blur.
func cardLayer(b raster.Backend, card *image.NRGBA, mask *image.Alpha, s CardShadow) *image.RGBA {
	cs := card.Bounds().Size()
	pad := int(math.Ceil(3*s.Blur)) + max(abs(s.Offset.X), abs(s.Offset.Y))

	shadow := image.NewNRGBA(image.Rect(0, 0, cs.X+2*pad, cs.Y+2*pad))
	opacity := uint8(math.Round(255 * clamp01(s.Opacity)))
	silhouette := raster.Silhouette(mask, 0, 0, 0, opacity)
	draw.Draw(shadow, silhouette.Bounds().Add(image.Pt(pad, pad).Add(s.Offset)), silhouette, image.Point{}, draw.Src)
	blurred := b.Blur(shadow, s.Blur)

	layer := image.NewRGBA(shadow.Bounds())
	draw.Draw(layer, layer.Bounds(), blurred, blurred.Bounds().Min, draw.Src)
	b.Composite(layer, card, image.Pt(pad, pad))
	return layer
}

// tintCard blends img toward c by mix in place.
func tintCard(img *image.NRGBA, c color.NRGBA, mix float64) *image.NRGBA {
	keep := 1 - mix
	tr, tg, tb := float64(c.R)*mix, float64(c.G)*mix, float64(c.B)*mix
	for i := 0; i+3 < len(img.Pix); i += 4 {
		img.Pix[i+0] = channel(float64(img.Pix[i+0])*keep + tr)
		img.Pix[i+1] = channel(float64(img.Pix[i+1])*keep + tg)
		img.Pix[i+2] = channel(float64(img.Pix[i+2])*keep + tb)
	}
	return img
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
