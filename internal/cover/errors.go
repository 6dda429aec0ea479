package cover

import (
	"errors"

	"media-covers/internal/artwork"
)

var (
	// ErrInsufficientArtwork is returned when fewer usable artworks are
	// available than a style needs.
	ErrInsufficientArtwork = errors.New("insufficient artwork")

	// ErrArtworkDecode is returned when the main artwork of a single-image
	// style cannot be decoded. Collage tiles that fail to decode are omitted
	// instead.
	ErrArtworkDecode = artwork.ErrDecode

	// ErrUnsupportedStyle is returned for an unknown cover style.
	ErrUnsupportedStyle = errors.New("unsupported cover style")

	// ErrUnsupportedOutputFormat is returned for an unknown or unavailable
	// output format.
	ErrUnsupportedOutputFormat = errors.New("unsupported output format")

	// ErrGenerationFailed is returned when rendering fails part way. No
	// partial output is ever returned alongside it.
	ErrGenerationFailed = errors.New("cover generation failed")

	// ErrInvalidParams is returned when a request fails validation.
	ErrInvalidParams = errors.New("invalid cover parameters")
)
