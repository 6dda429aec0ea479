package raster

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// maskSupersample is the oversampling factor for rounded masks.
const maskSupersample = 2

// RoundedMask returns a width x height alpha mask of a rounded rectangle.
// The shape is rasterized at twice the size and box-filtered down so the
// corners are anti-aliased.
func RoundedMask(width, height, radius int) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, width, height))
	if width <= 0 || height <= 0 {
		return mask
	}

	radius = min(radius, width/2, height/2)
	bw, bh := width*maskSupersample, height*maskSupersample
	big := image.NewAlpha(image.Rect(0, 0, bw, bh))

	r := float64(radius * maskSupersample)
	for y := 0; y < bh; y++ {
		row := big.Pix[y*big.Stride : y*big.Stride+bw]
		for x := range row {
			if insideRoundedRect(float64(x)+0.5, float64(y)+0.5, float64(bw), float64(bh), r) {
				row[x] = 0xff
			}
		}
	}

	small := imaging.Resize(big, width, height, imaging.Box)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			mask.Pix[y*mask.Stride+x] = small.Pix[y*small.Stride+x*4+3]
		}
	}
	return mask
}

func insideRoundedRect(x, y, w, h, r float64) bool {
	cx := math.Min(math.Max(x, r), w-r)
	cy := math.Min(math.Max(y, r), h-r)
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy <= r*r
}

// ApplyMask multiplies the alpha channel of img by mask in place. Both are
// expected to start at the origin; pixels outside mask become transparent.
func ApplyMask(img *image.NRGBA, mask *image.Alpha) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := img.PixOffset(x, y) + 3
			m := uint32(mask.AlphaAt(x, y).A)
			img.Pix[i] = uint8(uint32(img.Pix[i]) * m / 0xff)
		}
	}
}

// Silhouette returns a solid-colour copy of mask scaled by opacity (0-255):
// every pixel gets colour c with alpha mask*opacity/255.
func Silhouette(mask *image.Alpha, r, g, b, opacity uint8) *image.NRGBA {
	bounds := mask.Bounds()
	out := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := uint32(mask.AlphaAt(x, y).A) * uint32(opacity) / 0xff
			if a == 0 {
				continue
			}
			i := out.PixOffset(x, y)
			out.Pix[i+0] = r
			out.Pix[i+1] = g
			out.Pix[i+2] = b
			out.Pix[i+3] = uint8(a)
		}
	}
	return out
}
