// Package raster is the narrow image-processing layer underneath the cover
// composers.
//
// Composers only talk to the [Backend] interface: decode, fill, resize, blur,
// rotate, alpha-composite, rounded masks, shared-palette quantization and
// encoding. Two implementations exist:
//
//   - [Imaging]: pure Go, built on github.com/disintegration/imaging. Always
//     available. Cannot write animated WebP.
//   - [Vips]: embeds Imaging and swaps in libvips (govips) for decode-time
//     shrinking of very large artwork and for animated WebP output.
//     Requires [InitVips] to have succeeded.
//
// Canvases handed to Composite are normally *image.RGBA so image/draw can use
// its fast Over paths; everything the backend returns is *image.NRGBA.
package raster
