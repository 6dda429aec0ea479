package cover

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand/v2"

	"media-covers/internal/palette"
	"media-covers/internal/raster"
)

// BackgroundOptions controls BlurredPlate.
type BackgroundOptions struct {
	// Sigma is the Gaussian blur applied to the fitted artwork.
	Sigma float64
	// Ratio is the weight of the tint in the final blend (0 keeps the
	// blurred artwork, 1 is a solid tint).
	Ratio float64
	// Grain is the film grain intensity; 0 disables it.
	Grain float64
}

// plateDarken is how much the tint is darkened before blending.
const plateDarken = 0.85

// PlateColor picks the backdrop tint: the first palette colour, or a random
// fallback colour when the palette is empty.
func PlateColor(colors []color.NRGBA, rng *rand.Rand) color.NRGBA {
	if len(colors) > 0 {
		return colors[0]
	}
	return palette.PickFallback(rng)
}

// BlurredPlate fits art to size, blurs it and blends it toward the darkened
// tint. A nil art yields a solid plate of the darkened tint. The result is
// opaque.
func BlurredPlate(b raster.Backend, art image.Image, size image.Point, tint color.NRGBA, opts BackgroundOptions, rng *rand.Rand) *image.RGBA {
	target := palette.Darken(tint, plateDarken)
	if art == nil {
		plate := SolidPlate(target, size)
		AddGrain(plate, opts.Grain, rng)
		return plate
	}

	blurred := b.Blur(b.Fill(art, size.X, size.Y), opts.Sigma)

	plate := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	ratio := clamp01(opts.Ratio)
	keep := 1 - ratio
	tr := float64(target.R) * ratio
	tg := float64(target.G) * ratio
	tb := float64(target.B) * ratio

	for y := 0; y < size.Y; y++ {
		src := blurred.Pix[y*blurred.Stride : y*blurred.Stride+size.X*4]
		dst := plate.Pix[y*plate.Stride : y*plate.Stride+size.X*4]
		for i := 0; i < len(src); i += 4 {
			dst[i+0] = channel(float64(src[i+0])*keep + tr)
			dst[i+1] = channel(float64(src[i+1])*keep + tg)
			dst[i+2] = channel(float64(src[i+2])*keep + tb)
			dst[i+3] = 0xff
		}
	}

	AddGrain(plate, opts.Grain, rng)
	return plate
}

// SolidPlate returns an opaque plate filled with c.
func SolidPlate(c color.NRGBA, size image.Point) *image.RGBA {
	plate := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	c.A = 0xff
	draw.Draw(plate, plate.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return plate
}

// GradientPlate returns a horizontal gradient from 70% of a base colour on
// the left to the full colour on the right. The base is the first
// mid-bright palette colour, or a random one.
func GradientPlate(colors []color.NRGBA, size image.Point, rng *rand.Rand) *image.RGBA {
	base, ok := palette.MidBright(colors)
	if !ok {
		base = palette.RandomMidBright(rng)
	}
	left := palette.Darken(base, 0.7)

	plate := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	if size.X <= 0 || size.Y <= 0 {
		return plate
	}

	row := plate.Pix[:size.X*4]
	span := float64(max(size.X-1, 1))
	for x := 0; x < size.X; x++ {
		t := float64(x) / span
		row[x*4+0] = channel(float64(left.R) + (float64(base.R)-float64(left.R))*t)
		row[x*4+1] = channel(float64(left.G) + (float64(base.G)-float64(left.G))*t)
		row[x*4+2] = channel(float64(left.B) + (float64(base.B)-float64(left.B))*t)
		row[x*4+3] = 0xff
	}
	for y := 1; y < size.Y; y++ {
		copy(plate.Pix[y*plate.Stride:], row)
	}
	return plate
}

// AddGrain adds normally distributed luminance noise in place. The same
// offset is applied to all three channels of a pixel; alpha is untouched.
// Opaque images are expected.
func AddGrain(img *image.RGBA, intensity float64, rng *rand.Rand) {
	if intensity <= 0 {
		return
	}
	sigma := intensity * 255
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		end := i + b.Dx()*4
		for ; i < end; i += 4 {
			n := rng.NormFloat64() * sigma
			img.Pix[i+0] = channel(float64(img.Pix[i+0]) + n)
			img.Pix[i+1] = channel(float64(img.Pix[i+1]) + n)
			img.Pix[i+2] = channel(float64(img.Pix[i+2]) + n)
		}
	}
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
