// Package palette derives small, pleasant colour sets from artwork.
//
// [Extract] produces a "macaron" palette: frequent, non-neutral colours from a
// thumbnail, softened to a pastel saturation/value band and kept only when
// they are far enough apart on a hue-weighted distance. It is deterministic.
// Fully neutral artwork yields an empty palette, in which case callers use
// [PickFallback].
//
// Colour space conversions go through github.com/lucasb-eyer/go-colorful;
// [Accent] uses github.com/cenkalti/dominantcolor.
package palette
