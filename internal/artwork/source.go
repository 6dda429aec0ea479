package artwork

import (
	"context"
	"errors"
	"image"
	"time"
)

var (
	// ErrLibraryNotFound is returned when a library ID does not exist.
	ErrLibraryNotFound = errors.New("library not found")

	// ErrItemNotFound is returned when an item ID does not exist.
	ErrItemNotFound = errors.New("artwork item not found")

	// ErrDecode is returned when item bytes are not a decodable image.
	ErrDecode = errors.New("artwork could not be decoded")
)

// Library is one collection of artwork.
type Library struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ItemCount int    `json:"itemCount"`
}

// Item identifies one piece of artwork within a library.
type Item struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	ModTime time.Time `json:"modTime"`
}

// Source is the artwork collaborator the cover service reads from.
type Source interface {
	// Libraries lists the available libraries.
	Libraries(ctx context.Context) ([]Library, error)

	// List returns up to limit items of a library in native order
	// (most recent first). limit <= 0 means no limit.
	List(ctx context.Context, libraryID string, limit int) ([]Item, error)

	// Fetch returns the raw encoded bytes of one item.
	Fetch(ctx context.Context, itemID string) ([]byte, error)
}

// Artwork is one decoded source image. It is owned by the request that
// fetched it and never modified.
type Artwork struct {
	Item   Item
	Image  image.Image
	Format string
}
