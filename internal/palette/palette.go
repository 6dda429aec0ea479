package palette

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/cenkalti/dominantcolor"
	"github.com/disintegration/imaging"
	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// DefaultCount is the palette size used by the cover styles.
	DefaultCount = 6

	// MinDistance is the smallest hue-weighted distance between two colours
	// of one palette.
	MinDistance = 0.15

	thumbnailSize      = 150
	candidateFactor    = 5
	neutralThreshold   = 20
	grayDiffThreshold  = 10
	hueWeight          = 5.0
	minSaturation      = 0.3
	maxSaturation      = 0.7
	minValue           = 0.6
	maxValue           = 0.85
	midBrightMinL      = 0.3
	midBrightMaxL      = 0.7
	midBrightCandidate = 10
)

// fallback is the soft palette used when artwork has no usable colour.
var fallback = []color.NRGBA{
	{R: 237, G: 159, B: 77, A: 255},
	{R: 255, G: 183, B: 197, A: 255},
	{R: 186, G: 225, B: 255, A: 255},
	{R: 255, G: 223, B: 186, A: 255},
	{R: 202, G: 231, B: 200, A: 255},
	{R: 245, G: 203, B: 255, A: 255},
}

// Extract returns up to k macaron colours from img. The result is empty when
// every pixel is near-black, near-white or grey.
func Extract(img image.Image, k int) []color.NRGBA {
	if k <= 0 || img == nil || img.Bounds().Empty() {
		return nil
	}

	thumb := imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Linear)

	counts := make(map[uint32]int)
	b := thumb.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := thumb.NRGBAAt(x, y)
			if !isChromatic(c.R, c.G, c.B) {
				continue
			}
			counts[pack(c.R, c.G, c.B)]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	candidates := make([]uint32, 0, len(counts))
	for key := range counts {
		candidates = append(candidates, key)
	}
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := counts[candidates[i]], counts[candidates[j]]
		if ci != cj {
			return ci > cj
		}
		return candidates[i] < candidates[j]
	})
	if limit := k * candidateFactor; len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]color.NRGBA, 0, k)
	for _, key := range candidates {
		adjusted := Macaron(unpack(key))
		if !farFromAll(adjusted, out) {
			continue
		}
		out = append(out, adjusted)
		if len(out) >= k {
			break
		}
	}
	return out
}

// isChromatic rejects near-black, near-white and grey pixels.
func isChromatic(r, g, b uint8) bool {
	if r < neutralThreshold && g < neutralThreshold && b < neutralThreshold {
		return false
	}
	const hi = 255 - neutralThreshold
	if r > hi && g > hi && b > hi {
		return false
	}
	if absDiff(r, g) < grayDiffThreshold && absDiff(g, b) < grayDiffThreshold && absDiff(r, b) < grayDiffThreshold {
		return false
	}
	return true
}

func farFromAll(c color.NRGBA, accepted []color.NRGBA) bool {
	for _, existing := range accepted {
		if Distance(c, existing) < MinDistance {
			return false
		}
	}
	return true
}

// Macaron clamps saturation into [0.3, 0.7] and value into [0.6, 0.85] while
// keeping the hue.
func Macaron(c color.NRGBA) color.NRGBA {
	h, s, v := toColorful(c).Hsv()
	s = clamp(s, minSaturation, maxSaturation)
	v = clamp(v, minValue, maxValue)
	return truncate(colorful.Hsv(h, s, v))
}

// Distance is the hue-weighted distance used to keep palette colours apart:
// five times the circular hue difference (as a fraction of a turn) plus the
// absolute saturation and value differences.
func Distance(a, b color.NRGBA) float64 {
	h1, s1, v1 := toColorful(a).Hsv()
	h2, s2, v2 := toColorful(b).Hsv()
	dh := math.Abs(h1-h2) / 360
	dh = math.Min(dh, 1-dh)
	return dh*hueWeight + math.Abs(s1-s2) + math.Abs(v1-v2)
}

// Fallback returns a copy of the soft fallback palette.
func Fallback() []color.NRGBA {
	out := make([]color.NRGBA, len(fallback))
	copy(out, fallback)
	return out
}

// PickFallback chooses one fallback colour with rng.
func PickFallback(rng *rand.Rand) color.NRGBA {
	return fallback[rng.IntN(len(fallback))]
}

// Darken scales each channel by factor.
func Darken(c color.NRGBA, factor float64) color.NRGBA {
	scale := func(v uint8) uint8 {
		return uint8(clamp(float64(v)*factor, 0, 255))
	}
	return color.NRGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: c.A}
}

// Accent returns the dominant colour of img softened to the macaron band,
// for use when a palette is empty but the artwork still has a tint.
// dominantcolor seeds its clustering randomly, so the result may vary
// slightly between calls.
func Accent(img image.Image) color.NRGBA {
	d := dominantcolor.Find(img)
	return Macaron(color.NRGBA{R: d.R, G: d.G, B: d.B, A: 255})
}

// MidBright returns the first of the leading palette colours whose HSL
// lightness lies in [0.3, 0.7].
func MidBright(colors []color.NRGBA) (color.NRGBA, bool) {
	for i, c := range colors {
		if i >= midBrightCandidate {
			break
		}
		if _, _, l := toColorful(c).Hsl(); l >= midBrightMinL && l <= midBrightMaxL {
			return c, true
		}
	}
	return color.NRGBA{}, false
}

// RandomMidBright returns a random colour with moderate saturation and
// lightness.
func RandomMidBright(rng *rand.Rand) color.NRGBA {
	h := rng.Float64() * 360
	s := 0.4 + rng.Float64()*0.3
	l := 0.45 + rng.Float64()*0.2
	return truncate(colorful.Hsl(h, s, l))
}

func toColorful(c color.NRGBA) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// truncate converts to 8-bit channels by truncation, matching how palette
// colours are stored and compared.
func truncate(c colorful.Color) color.NRGBA {
	c = c.Clamped()
	return color.NRGBA{
		R: uint8(c.R * 255),
		G: uint8(c.G * 255),
		B: uint8(c.B * 255),
		A: 255,
	}
}

func pack(r, g, b uint8) uint32 {
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func unpack(v uint32) color.NRGBA {
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
