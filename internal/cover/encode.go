package cover

import (
	"errors"
	"fmt"
	"image"

	"media-covers/internal/raster"
)

// EncodeLoop encodes rendered frames as a looping animation.
//
// GIF output quantizes the first frame to a 256-colour palette once and
// dithers every frame against that same table, written as the single global
// colour table with no per-frame optimisation, so colours never shift
// between frames. WebP output is encoded frame by frame by the backend.
func EncodeLoop(b raster.Backend, frames []*image.NRGBA, format Format, delayMs int) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrGenerationFailed)
	}

	switch format {
	case FormatGIF:
		pal := b.SharedPalette(frames[0], animationPaletteSize)
		indexed := make([]*image.Paletted, len(frames))
		for i, frame := range frames {
			indexed[i] = b.Dither(frame, pal)
		}
		data, err := raster.EncodeGIFLoop(indexed, pal, delayMs)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
		}
		return data, nil

	case FormatWebP:
		imgs := make([]image.Image, len(frames))
		for i, frame := range frames {
			imgs[i] = frame
		}
		data, err := b.EncodeAnimatedWebP(imgs, delayMs)
		if errors.Is(err, raster.ErrWebPUnavailable) {
			return nil, fmt.Errorf("%w: %w", ErrUnsupportedOutputFormat, err)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
		}
		return data, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedOutputFormat, format)
}
