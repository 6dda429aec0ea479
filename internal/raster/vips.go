package raster

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"sync"

	"media-covers/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"
)

// webpQuality is the lossy quality used for animated WebP output.
const webpQuality = 90

// ErrVipsUnavailable is returned when the libvips backend is requested but
// InitVips has not succeeded.
var ErrVipsUnavailable = errors.New("libvips not available")

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
)

// vipsLogLevels maps the application log level to the quietest vips level
// that is still forwarded.
var vipsLogLevels = map[logging.LogLevel]vips.LogLevel{
	logging.LevelDebug: vips.LogLevelInfo,
	logging.LevelInfo:  vips.LogLevelWarning,
	logging.LevelWarn:  vips.LogLevelError,
	logging.LevelError: vips.LogLevelCritical,
}

// InitVips initializes libvips and routes its log output through
// internal/logging. Call once at startup.
func InitVips() error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	threshold, ok := vipsLogLevels[logging.GetLevel()]
	if !ok {
		threshold = vips.LogLevelWarning
	}

	vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
		if level > threshold {
			return
		}
		switch level {
		case vips.LogLevelError, vips.LogLevelCritical:
			logging.Error("[%s] %s", domain, msg)
		case vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}, threshold)

	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
		ReportLeaks:      false,
		CacheTrace:       false,
		CollectStats:     false,
	})

	vipsInitialized = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

// ShutdownVips cleans up libvips resources.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized.
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsInitialized
}

// Vips is the libvips-assisted backend. Everything not overridden here comes
// from the embedded Imaging backend.
type Vips struct {
	*Imaging
}

// NewVips returns a Vips backend, or ErrVipsUnavailable when InitVips has not
// run.
func NewVips() (*Vips, error) {
	if !IsVipsAvailable() {
		return nil, ErrVipsUnavailable
	}
	return &Vips{Imaging: NewImaging()}, nil
}

// Name implements Backend.
func (v *Vips) Name() string {
	return "vips"
}

// SupportsAnimatedWebP implements Backend.
func (v *Vips) SupportsAnimatedWebP() bool {
	return true
}

// Decode implements Backend. Artwork within the size limits goes straight to
// the pure-Go decoder; oversized artwork is shrunk by libvips during decode,
// which avoids holding the full-size bitmap in memory.
func (v *Vips) Decode(data []byte) (image.Image, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image header: %w", err)
	}

	targetWidth, targetHeight, shrink := constrain(cfg.Width, cfg.Height, v.MaxDimension, v.MaxPixels)
	if !shrink {
		return v.Imaging.Decode(data)
	}

	ref, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return nil, format, fmt.Errorf("vips failed to load image: %w", err)
	}
	defer ref.Close()

	logging.Debug("Vips shrinking %s artwork %dx%d to %dx%d", format, ref.Width(), ref.Height(), targetWidth, targetHeight)

	if err := ref.AutoRotate(); err != nil {
		logging.Debug("vips auto-rotate failed: %v", err)
	}
	if err := ref.Thumbnail(targetWidth, targetHeight, vips.InterestingNone); err != nil {
		return nil, format, fmt.Errorf("vips resize failed: %w", err)
	}

	var out []byte
	if ref.HasAlpha() {
		out, _, err = ref.ExportPng(vips.NewPngExportParams())
	} else {
		out, _, err = ref.ExportJpeg(&vips.JpegExportParams{
			Quality:        95,
			OptimizeCoding: true,
		})
	}
	if err != nil {
		return nil, format, fmt.Errorf("vips export failed: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, format, fmt.Errorf("failed to decode vips output: %w", err)
	}
	return img, format, nil
}

// EncodeAnimatedWebP implements Backend. Frames are stacked into one tall
// multi-page image whose page height is the frame height, then saved as a
// looping lossy WebP.
func (v *Vips) EncodeAnimatedWebP(frames []image.Image, delayMs int) ([]byte, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames to encode")
	}

	refs := make([]*vips.ImageRef, 0, len(frames))
	defer func() {
		for _, ref := range refs {
			ref.Close()
		}
	}()

	for i, frame := range frames {
		png, err := v.EncodePNG(frame)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		ref, err := vips.NewImageFromBuffer(png)
		if err != nil {
			return nil, fmt.Errorf("frame %d: vips load failed: %w", i, err)
		}
		refs = append(refs, ref)
	}

	frameHeight := refs[0].Height()
	strip := refs[0]
	if len(refs) > 1 {
		if err := strip.ArrayJoin(refs[1:], 1); err != nil {
			return nil, fmt.Errorf("vips frame join failed: %w", err)
		}
	}

	if err := strip.SetPageHeight(frameHeight); err != nil {
		return nil, fmt.Errorf("vips set page height failed: %w", err)
	}

	delays := make([]int, len(frames))
	for i := range delays {
		delays[i] = delayMs
	}
	if err := strip.SetPageDelay(delays); err != nil {
		return nil, fmt.Errorf("vips set frame delay failed: %w", err)
	}

	out, _, err := strip.ExportWebp(&vips.WebpExportParams{
		Quality:         webpQuality,
		Lossless:        false,
		ReductionEffort: 4,
		StripMetadata:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("vips webp export failed: %w", err)
	}
	return out, nil
}
