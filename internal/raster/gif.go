package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
)

// EncodeGIFLoop writes frames as an infinitely looping GIF with palette as the
// single global colour table. Every frame must already be indexed against
// palette; frames are written whole with no inter-frame optimisation.
// delayMs is rounded to the nearest centisecond, with a floor of 10 ms.
func EncodeGIFLoop(frames []*image.Paletted, palette color.Palette, delayMs int) ([]byte, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to encode")
	}

	bounds := frames[0].Bounds()
	delay := (delayMs + 5) / 10
	if delay < 1 {
		delay = 1
	}

	anim := &gif.GIF{
		Image:     frames,
		Delay:     make([]int, len(frames)),
		Disposal:  make([]byte, len(frames)),
		LoopCount: 0,
		Config: image.Config{
			ColorModel: palette,
			Width:      bounds.Dx(),
			Height:     bounds.Dy(),
		},
	}
	for i, frame := range frames {
		if frame.Bounds() != bounds {
			return nil, fmt.Errorf("frame %d is %v, want %v", i, frame.Bounds(), bounds)
		}
		anim.Delay[i] = delay
		anim.Disposal[i] = gif.DisposalNone
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("failed to encode gif: %w", err)
	}
	return buf.Bytes(), nil
}
