package raster

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
)

const (
	// MaxImageDimension is the maximum width or height we keep after decode.
	// Larger artwork is downscaled first.
	MaxImageDimension = 4096

	// MaxImagePixels is the maximum total pixels kept after decode
	// (~20MP, ~80MB as NRGBA).
	MaxImagePixels = 20_000_000
)

// ErrWebPUnavailable is returned by backends that cannot write animated WebP.
var ErrWebPUnavailable = errors.New("animated webp output requires libvips")

// Backend is the set of raster operations the composers are written against.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string

	// Decode decodes encoded image bytes, returning the detected format
	// ("jpeg", "png", ...). Oversized images are shrunk to the package limits.
	Decode(data []byte) (image.Image, string, error)

	// Fill scales and center-crops img to exactly width x height.
	Fill(img image.Image, width, height int) *image.NRGBA

	// FillRight is Fill with an align-right policy: artwork wider than the
	// target is scaled to height and keeps its right edge; narrower artwork
	// is scaled to width and center-cropped vertically.
	FillRight(img image.Image, width, height int) *image.NRGBA

	// Resize scales img to width x height without preserving aspect.
	Resize(img image.Image, width, height int) *image.NRGBA

	// Blur applies a Gaussian blur with the given sigma.
	Blur(img image.Image, sigma float64) *image.NRGBA

	// Rotate rotates counter-clockwise by degrees, expanding the bounds and
	// filling uncovered area with transparency.
	Rotate(img image.Image, degrees float64) *image.NRGBA

	// Composite draws src over dst with its top-left corner at at.
	Composite(dst draw.Image, src image.Image, at image.Point)

	// CompositeMask draws src over dst through mask (same size as src).
	CompositeMask(dst draw.Image, src, mask image.Image, at image.Point)

	// RoundedMask returns an anti-aliased rounded-rectangle alpha mask.
	RoundedMask(width, height, radius int) *image.Alpha

	// SharedPalette computes a table of at most n colours for img.
	SharedPalette(img image.Image, n int) color.Palette

	// Dither maps img onto palette with Floyd-Steinberg error diffusion.
	Dither(img image.Image, palette color.Palette) *image.Paletted

	// EncodePNG encodes a still image.
	EncodePNG(img image.Image) ([]byte, error)

	// SupportsAnimatedWebP reports whether EncodeAnimatedWebP can succeed.
	SupportsAnimatedWebP() bool

	// EncodeAnimatedWebP encodes equally sized frames as a looping WebP.
	EncodeAnimatedWebP(frames []image.Image, delayMs int) ([]byte, error)
}

// constrain reports the target size for an image that exceeds maxDimension
// or maxPixels, keeping the aspect ratio.
func constrain(width, height, maxDimension, maxPixels int) (int, int, bool) {
	if width <= maxDimension && height <= maxDimension && width*height <= maxPixels {
		return width, height, false
	}

	targetWidth, targetHeight := width, height

	if width > maxDimension || height > maxDimension {
		if width > height {
			targetWidth = maxDimension
			targetHeight = height * maxDimension / width
		} else {
			targetHeight = maxDimension
			targetWidth = width * maxDimension / height
		}
	}

	if targetWidth*targetHeight > maxPixels {
		scale := math.Sqrt(float64(maxPixels) / float64(targetWidth*targetHeight))
		targetWidth = int(float64(targetWidth) * scale)
		targetHeight = int(float64(targetHeight) * scale)
	}

	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}
	return targetWidth, targetHeight, true
}
