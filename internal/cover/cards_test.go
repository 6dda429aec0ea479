package cover

import (
	"image"
	"image/color"
	"testing"

	"media-covers/internal/raster"
)

func TestCardsCenter(t *testing.T) {
	if got := DefaultCardsLayout().Center(CanvasSize); got != image.Pt(1380, 540) {
		t.Errorf("Center = %v, want (1380,540)", got)
	}
}

func TestComposeCards(t *testing.T) {
	b := raster.NewImaging()
	size := image.Pt(320, 180)
	dst := SolidPlate(gray, size)
	l := DefaultCardsLayout()

	ComposeCards(b, dst, solidArt(80, 120, blue), [2]color.NRGBA{red, green}, l)

	if !allOpaque(dst) {
		t.Error("cards canvas has transparent pixels")
	}
	c := l.Center(size)
	if got := dst.At(c.X, c.Y); !closeTo(got, blue, 3) {
		t.Errorf("top card centre = %v, want artwork %v", got, blue)
	}
	if got := dst.At(5, 5); !closeTo(got, gray, 0) {
		t.Errorf("corner = %v, want untouched plate", got)
	}
}

func TestTintCard(t *testing.T) {
	img := solidArt(2, 2, color.NRGBA{R: 0, G: 100, B: 200, A: 255})
	tintCard(img, color.NRGBA{R: 200, G: 100, B: 0, A: 255}, 0.5)
	if got := img.NRGBAAt(1, 1); got != (color.NRGBA{R: 100, G: 100, B: 100, A: 255}) {
		t.Errorf("tinted = %v, want (100,100,100,255)", got)
	}
}
