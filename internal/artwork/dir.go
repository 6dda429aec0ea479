package artwork

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"media-covers/internal/logging"
)

// imageExtensions lists the file extensions treated as artwork.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// IsImageFile reports whether name has an artwork extension.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// DirSource serves artwork from a directory tree: one subdirectory per
// library, one image file per item. Item IDs are "<library>/<file name>".
type DirSource struct {
	root  string
	retry RetryConfig
}

// NewDirSource creates a source rooted at root.
func NewDirSource(root string) *DirSource {
	return &DirSource{root: root, retry: DefaultRetryConfig()}
}

// Root returns the library root directory.
func (s *DirSource) Root() string {
	return s.root
}

// Libraries implements Source.
func (s *DirSource) Libraries(ctx context.Context) ([]Library, error) {
	entries, err := readDirWithRetry(ctx, s.root, s.retry)
	if err != nil {
		return nil, fmt.Errorf("failed to read library root: %w", err)
	}

	libraries := make([]Library, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		items, err := readDirWithRetry(ctx, filepath.Join(s.root, e.Name()), s.retry)
		if err != nil {
			logging.Warn("Skipping unreadable library %s: %v", e.Name(), err)
			continue
		}
		count := 0
		for _, item := range items {
			if !item.IsDir() && IsImageFile(item.Name()) {
				count++
			}
		}
		libraries = append(libraries, Library{ID: e.Name(), Name: e.Name(), ItemCount: count})
	}

	sort.Slice(libraries, func(i, j int) bool {
		return libraries[i].Name < libraries[j].Name
	})
	return libraries, nil
}

// List implements Source. Items are ordered newest first by modification
// time, ties broken by file name.
func (s *DirSource) List(ctx context.Context, libraryID string, limit int) ([]Item, error) {
	if !validSegment(libraryID) {
		return nil, fmt.Errorf("%w: %q", ErrLibraryNotFound, libraryID)
	}

	dir := filepath.Join(s.root, libraryID)
	entries, err := readDirWithRetry(ctx, dir, s.retry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrLibraryNotFound, libraryID)
		}
		return nil, fmt.Errorf("failed to read library %s: %w", libraryID, err)
	}

	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !IsImageFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			logging.Debug("Skipping %s: %v", e.Name(), err)
			continue
		}
		items = append(items, Item{
			ID:      libraryID + "/" + e.Name(),
			Name:    strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].ModTime.Equal(items[j].ModTime) {
			return items[i].ModTime.After(items[j].ModTime)
		}
		return items[i].ID < items[j].ID
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Fetch implements Source.
func (s *DirSource) Fetch(ctx context.Context, itemID string) ([]byte, error) {
	library, file, ok := strings.Cut(itemID, "/")
	if !ok || !validSegment(library) || !validSegment(file) {
		return nil, fmt.Errorf("%w: %q", ErrItemNotFound, itemID)
	}

	data, err := readFileWithRetry(ctx, filepath.Join(s.root, library, file), s.retry)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrItemNotFound, itemID)
		}
		return nil, fmt.Errorf("failed to read %s: %w", itemID, err)
	}
	return data, nil
}

// validSegment rejects empty names, dot entries and anything containing a
// path separator so IDs cannot escape the root.
func validSegment(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}
