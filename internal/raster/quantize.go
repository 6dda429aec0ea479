package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"slices"

	"media-covers/internal/logging"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// maxPaletteSamples bounds the number of pixels fed to k-means.
const maxPaletteSamples = 6000

// SharedPalette computes a table of at most n opaque colours for img. When img
// has n or fewer distinct colours the table is exact; otherwise the colours are
// k-means cluster centres over a subsample of the pixels.
func SharedPalette(img image.Image, n int) color.Palette {
	if n <= 0 {
		n = 256
	}
	n = min(n, 256)

	if exact, ok := distinctColors(img, n); ok {
		return exact
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	step := 1
	if width*height > maxPaletteSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxPaletteSamples))) + 1
	}

	dataset := make(clusters.Observations, 0, min(width*height, maxPaletteSamples*2))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r, g, bl, _ := img.At(x, y).RGBA()
			dataset = append(dataset, clusters.Coordinates{
				float64(r) / 65535.0,
				float64(g) / 65535.0,
				float64(bl) / 65535.0,
			})
		}
	}

	k := min(n, len(dataset))
	km := kmeans.New()
	cc, err := km.Partition(dataset, k)
	if err != nil || len(cc) == 0 {
		logging.Warn("k-means palette failed (%v), falling back to uniform palette", err)
		return uniformPalette(n)
	}

	// Most populated clusters first so truncation never drops common colours.
	slices.SortStableFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	pal := make(color.Palette, 0, len(cc))
	seen := make(map[color.RGBA]bool, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 {
			continue
		}
		rgba := color.RGBA{
			R: to8(c.Center[0]),
			G: to8(c.Center[1]),
			B: to8(c.Center[2]),
			A: 0xff,
		}
		if seen[rgba] {
			continue
		}
		seen[rgba] = true
		pal = append(pal, rgba)
	}
	if len(pal) == 0 {
		return uniformPalette(n)
	}
	return pal
}

// distinctColors returns the exact colour set of img when it holds at most n
// distinct opaque colours.
func distinctColors(img image.Image, n int) (color.Palette, bool) {
	b := img.Bounds()
	set := make(map[uint32]struct{}, n+1)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			key := (r>>8)<<16 | (g>>8)<<8 | bl>>8
			set[key] = struct{}{}
			if len(set) > n {
				return nil, false
			}
		}
	}

	keys := make([]uint32, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pal := make(color.Palette, len(keys))
	for i, k := range keys {
		pal[i] = color.RGBA{R: uint8(k >> 16), G: uint8(k >> 8), B: uint8(k), A: 0xff}
	}
	return pal, true
}

// uniformPalette is a 6x6x6 colour cube padded with greys.
func uniformPalette(n int) color.Palette {
	pal := make(color.Palette, 0, n)
	for r := 0; r < 6 && len(pal) < n; r++ {
		for g := 0; g < 6 && len(pal) < n; g++ {
			for bl := 0; bl < 6 && len(pal) < n; bl++ {
				pal = append(pal, color.RGBA{R: uint8(r * 51), G: uint8(g * 51), B: uint8(bl * 51), A: 0xff})
			}
		}
	}
	for v := 0; len(pal) < n && v < 40; v++ {
		gray := uint8(8 + v*6)
		pal = append(pal, color.RGBA{R: gray, G: gray, B: gray, A: 0xff})
	}
	return pal
}

func to8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// Dither maps img onto palette using Floyd-Steinberg error diffusion. The
// returned image always uses palette itself, never a derived table.
func Dither(img image.Image, palette color.Palette) *image.Paletted {
	b := img.Bounds()
	out := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette)
	draw.FloydSteinberg.Draw(out, out.Bounds(), img, b.Min)
	return out
}
