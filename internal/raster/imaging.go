package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	// Image format decoders
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"media-covers/internal/logging"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // WebP format support
)

// blurDirectSigma is the largest sigma blurred at full resolution. Larger
// blurs run on a proportionally downscaled copy.
const blurDirectSigma = 6.0

// Imaging is the pure-Go backend.
type Imaging struct {
	MaxDimension int
	MaxPixels    int
}

// NewImaging returns an Imaging backend with the package size limits.
func NewImaging() *Imaging {
	return &Imaging{
		MaxDimension: MaxImageDimension,
		MaxPixels:    MaxImagePixels,
	}
}

// Name implements Backend.
func (b *Imaging) Name() string {
	return "imaging"
}

// Decode implements Backend.
func (b *Imaging) Decode(data []byte) (image.Image, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image header: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, format, fmt.Errorf("failed to decode %s image: %w", format, err)
	}

	bounds := img.Bounds()
	if w, h, ok := constrain(bounds.Dx(), bounds.Dy(), b.MaxDimension, b.MaxPixels); ok {
		logging.Info("Constraining large artwork from %dx%d to %dx%d", bounds.Dx(), bounds.Dy(), w, h)
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	return img, format, nil
}

// Fill implements Backend.
func (b *Imaging) Fill(img image.Image, width, height int) *image.NRGBA {
	return imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
}

// FillRight implements Backend.
func (b *Imaging) FillRight(img image.Image, width, height int) *image.NRGBA {
	src := img.Bounds().Size()
	anchor := imaging.Center
	if src.X*height > width*src.Y {
		anchor = imaging.Right
	}
	return imaging.Fill(img, width, height, anchor, imaging.Lanczos)
}

// Resize implements Backend.
func (b *Imaging) Resize(img image.Image, width, height int) *image.NRGBA {
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// Blur implements Backend.
func (b *Imaging) Blur(img image.Image, sigma float64) *image.NRGBA {
	if sigma <= 0 {
		return imaging.Clone(img)
	}
	if sigma <= blurDirectSigma {
		return imaging.Blur(img, sigma)
	}

	bounds := img.Bounds()
	scale := sigma / blurDirectSigma
	sw := max(1, int(float64(bounds.Dx())/scale+0.5))
	sh := max(1, int(float64(bounds.Dy())/scale+0.5))

	small := imaging.Resize(img, sw, sh, imaging.Box)
	small = imaging.Blur(small, blurDirectSigma)
	return imaging.Resize(small, bounds.Dx(), bounds.Dy(), imaging.Linear)
}

// Rotate implements Backend.
func (b *Imaging) Rotate(img image.Image, degrees float64) *image.NRGBA {
	return imaging.Rotate(img, degrees, color.Transparent)
}

// Composite implements Backend.
func (b *Imaging) Composite(dst draw.Image, src image.Image, at image.Point) {
	sb := src.Bounds()
	draw.Draw(dst, sb.Sub(sb.Min).Add(at), src, sb.Min, draw.Over)
}

// CompositeMask implements Backend.
func (b *Imaging) CompositeMask(dst draw.Image, src, mask image.Image, at image.Point) {
	sb := src.Bounds()
	draw.DrawMask(dst, sb.Sub(sb.Min).Add(at), src, sb.Min, mask, mask.Bounds().Min, draw.Over)
}

// RoundedMask implements Backend.
func (b *Imaging) RoundedMask(width, height, radius int) *image.Alpha {
	return RoundedMask(width, height, radius)
}

// SharedPalette implements Backend.
func (b *Imaging) SharedPalette(img image.Image, n int) color.Palette {
	return SharedPalette(img, n)
}

// Dither implements Backend.
func (b *Imaging) Dither(img image.Image, palette color.Palette) *image.Paletted {
	return Dither(img, palette)
}

// EncodePNG implements Backend.
func (b *Imaging) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// SupportsAnimatedWebP implements Backend.
func (b *Imaging) SupportsAnimatedWebP() bool {
	return false
}

// EncodeAnimatedWebP implements Backend. The pure-Go backend has no WebP
// encoder.
func (b *Imaging) EncodeAnimatedWebP(_ []image.Image, _ int) ([]byte, error) {
	return nil, ErrWebPUnavailable
}
