package artwork

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"media-covers/internal/raster"
)

func writePNG(t *testing.T, path string, c color.NRGBA, modTime time.Time) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 20, 30))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatal(err)
	}
}

// setupLibrary creates root/Movies with three posters of increasing age, a
// corrupt image, and a non-image file.
func setupLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	lib := filepath.Join(root, "Movies")
	if err := os.MkdirAll(lib, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "Shows"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, ".hidden"), 0o755); err != nil {
		t.Fatal(err)
	}

	now := time.Now()
	writePNG(t, filepath.Join(lib, "newest.png"), color.NRGBA{R: 255, A: 255}, now)
	writePNG(t, filepath.Join(lib, "middle.png"), color.NRGBA{G: 255, A: 255}, now.Add(-time.Hour))
	writePNG(t, filepath.Join(lib, "oldest.png"), color.NRGBA{B: 255, A: 255}, now.Add(-2*time.Hour))

	broken := filepath.Join(lib, "broken.jpg")
	if err := os.WriteFile(broken, []byte("not a jpeg"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(broken, now.Add(-30*time.Minute), now.Add(-30*time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(lib, "notes.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"poster.jpg", true},
		{"poster.JPEG", true},
		{"poster.webp", true},
		{"poster.png", true},
		{"notes.txt", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := IsImageFile(tt.name); got != tt.want {
			t.Errorf("IsImageFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDirSourceLibraries(t *testing.T) {
	src := NewDirSource(setupLibrary(t))

	libs, err := src.Libraries(context.Background())
	if err != nil {
		t.Fatalf("Libraries() error = %v", err)
	}
	if len(libs) != 2 {
		t.Fatalf("got %d libraries, want 2 (hidden skipped): %+v", len(libs), libs)
	}
	if libs[0].ID != "Movies" || libs[0].ItemCount != 4 {
		t.Errorf("Movies = %+v, want 4 items", libs[0])
	}
	if libs[1].ID != "Shows" || libs[1].ItemCount != 0 {
		t.Errorf("Shows = %+v", libs[1])
	}
}

func TestDirSourceListOrder(t *testing.T) {
	src := NewDirSource(setupLibrary(t))

	items, err := src.List(context.Background(), "Movies", 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{"Movies/newest.png", "Movies/broken.jpg", "Movies/middle.png", "Movies/oldest.png"}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("items[%d] = %s, want %s", i, items[i].ID, id)
		}
	}
	if items[0].Name != "newest" {
		t.Errorf("Name = %q, want extension stripped", items[0].Name)
	}

	limited, err := src.List(context.Background(), "Movies", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 {
		t.Errorf("limit 2 returned %d items", len(limited))
	}
}

func TestDirSourceListErrors(t *testing.T) {
	src := NewDirSource(setupLibrary(t))

	for _, id := range []string{"Missing", "..", "", "Movies/../.."} {
		if _, err := src.List(context.Background(), id, 0); !errors.Is(err, ErrLibraryNotFound) {
			t.Errorf("List(%q) error = %v, want ErrLibraryNotFound", id, err)
		}
	}
}

func TestDirSourceFetch(t *testing.T) {
	src := NewDirSource(setupLibrary(t))

	data, err := src.Fetch(context.Background(), "Movies/newest.png")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("fetched bytes are not a png: %v", err)
	}

	for _, id := range []string{"Movies/missing.png", "../etc/passwd", "Movies/../../x", "nolibrary"} {
		if _, err := src.Fetch(context.Background(), id); !errors.Is(err, ErrItemNotFound) {
			t.Errorf("Fetch(%q) error = %v, want ErrItemNotFound", id, err)
		}
	}
}

func TestFetcherFetchAllOmitsFailures(t *testing.T) {
	src := NewDirSource(setupLibrary(t))
	fetcher := NewFetcher(src, raster.NewImaging(), 2)

	items, err := src.List(context.Background(), "Movies", 0)
	if err != nil {
		t.Fatal(err)
	}
	items = append(items, Item{ID: "Movies/vanished.png"})

	arts, err := fetcher.FetchAll(context.Background(), items, 0)
	if err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}

	want := []string{"Movies/newest.png", "Movies/middle.png", "Movies/oldest.png"}
	if len(arts) != len(want) {
		t.Fatalf("got %d artworks, want %d", len(arts), len(want))
	}
	for i, id := range want {
		if arts[i].Item.ID != id {
			t.Errorf("arts[%d] = %s, want %s", i, arts[i].Item.ID, id)
		}
		if arts[i].Format != "png" {
			t.Errorf("arts[%d].Format = %q", i, arts[i].Format)
		}
	}
}

func TestFetcherFetchAllWant(t *testing.T) {
	src := NewDirSource(setupLibrary(t))
	fetcher := NewFetcher(src, raster.NewImaging(), 0)

	items, _ := src.List(context.Background(), "Movies", 0)
	arts, err := fetcher.FetchAll(context.Background(), items, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(arts) != 2 || arts[0].Item.ID != "Movies/newest.png" || arts[1].Item.ID != "Movies/middle.png" {
		t.Errorf("unexpected artworks: %+v", arts)
	}
}

func TestFetcherFetchOneDecodeError(t *testing.T) {
	src := NewDirSource(setupLibrary(t))
	fetcher := NewFetcher(src, raster.NewImaging(), 1)

	_, err := fetcher.FetchOne(context.Background(), Item{ID: "Movies/broken.jpg"})
	if !errors.Is(err, ErrDecode) {
		t.Errorf("FetchOne() error = %v, want ErrDecode", err)
	}
}

func TestFetcherCancelled(t *testing.T) {
	src := NewDirSource(setupLibrary(t))
	fetcher := NewFetcher(src, raster.NewImaging(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items, _ := src.List(context.Background(), "Movies", 0)
	if _, err := fetcher.FetchAll(ctx, items, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("FetchAll() error = %v, want context.Canceled", err)
	}
}

func TestWithRetry(t *testing.T) {
	cfg := RetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}

	t.Run("stale then success", func(t *testing.T) {
		calls := 0
		v, err := withRetry(context.Background(), "read", "x", cfg, func() (int, error) {
			calls++
			if calls < 3 {
				return 0, &os.PathError{Op: "open", Path: "x", Err: syscall.ESTALE}
			}
			return 42, nil
		})
		if err != nil || v != 42 || calls != 3 {
			t.Errorf("got v=%d err=%v calls=%d", v, err, calls)
		}
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		calls := 0
		_, err := withRetry(context.Background(), "read", "x", cfg, func() (int, error) {
			calls++
			return 0, os.ErrPermission
		})
		if !errors.Is(err, os.ErrPermission) || calls != 1 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		_, err := withRetry(context.Background(), "read", "x", cfg, func() (int, error) {
			calls++
			return 0, syscall.ESTALE
		})
		if !errors.Is(err, syscall.ESTALE) || calls != cfg.MaxRetries+1 {
			t.Errorf("err=%v calls=%d", err, calls)
		}
	})
}
