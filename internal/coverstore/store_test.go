package coverstore

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(context.Background(), filepath.Join(t.TempDir(), "covers.db"))
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func saveCover(t *testing.T, s *Store, library, style string, data []byte) int64 {
	t.Helper()
	id, err := s.Save(context.Background(), &Cover{
		LibraryID:   library,
		Style:       style,
		Kind:        "static",
		Format:      "png",
		ContentType: "image/png",
		Data:        data,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	return id
}

func TestNewCreatesSchema(t *testing.T) {
	s := setupTestStore(t)

	n, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("Count = %d, want 0", n)
	}

	// Reopening an existing store keeps its contents.
	saveCover(t, s, "movies", "collage", []byte("png"))
	again, err := New(context.Background(), s.Path())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()
	if n, _ := again.Count(context.Background()); n != 1 {
		t.Errorf("Count after reopen = %d, want 1", n)
	}
}

func TestNewInvalidPath(t *testing.T) {
	if _, err := New(context.Background(), filepath.Join(t.TempDir(), "missing", "covers.db")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestSaveAndLatest(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	saveCover(t, s, "movies", "collage", []byte("first"))
	saveCover(t, s, "shows", "split", []byte("other"))
	created := time.Now().Add(-time.Minute).Truncate(time.Millisecond)
	id, err := s.Save(ctx, &Cover{
		LibraryID:   "movies",
		Style:       "cards",
		Kind:        "animated",
		Format:      "gif",
		ContentType: "image/gif",
		Title:       "Movies",
		Subtitle:    "FILMS",
		Data:        []byte("second"),
		CreatedAt:   created,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Latest(ctx, "movies")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.ID != id || got.Style != "cards" || got.Kind != "animated" || got.ContentType != "image/gif" {
		t.Errorf("Latest = %+v", got)
	}
	if !bytes.Equal(got.Data, []byte("second")) || got.Size != len("second") {
		t.Errorf("Latest data = %q (size %d)", got.Data, got.Size)
	}
	if got.Title != "Movies" || got.Subtitle != "FILMS" {
		t.Errorf("Latest title = %q / %q", got.Title, got.Subtitle)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
}

func TestLatestNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Latest(context.Background(), "nothing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveRequiresLibrary(t *testing.T) {
	s := setupTestStore(t)

	if _, err := s.Save(context.Background(), &Cover{Data: []byte("x")}); err == nil {
		t.Error("expected an error for a cover without library id")
	}
}

func TestList(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for _, lib := range []string{"movies", "shows", "movies", "movies"} {
		saveCover(t, s, lib, "collage", []byte(lib))
	}

	tests := []struct {
		name    string
		library string
		limit   int
		want    int
	}{
		{name: "all libraries", want: 4},
		{name: "one library", library: "movies", want: 3},
		{name: "limited", library: "movies", limit: 2, want: 2},
		{name: "unknown library", library: "music", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			covers, err := s.List(ctx, tt.library, tt.limit)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(covers) != tt.want {
				t.Fatalf("len = %d, want %d", len(covers), tt.want)
			}
			for i, c := range covers {
				if c.Data != nil {
					t.Error("List returned cover data")
				}
				if i > 0 && c.ID > covers[i-1].ID {
					t.Error("List is not newest first")
				}
			}
		})
	}
}

func TestPrune(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	var newest int64
	for i := 0; i < 6; i++ {
		newest = saveCover(t, s, "movies", "collage", []byte{byte(i)})
	}
	saveCover(t, s, "shows", "collage", []byte("keep"))

	deleted, err := s.Prune(ctx, "movies", 2)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 4 {
		t.Errorf("deleted = %d, want 4", deleted)
	}

	covers, _ := s.List(ctx, "movies", 0)
	if len(covers) != 2 || covers[0].ID != newest {
		t.Errorf("remaining = %+v", covers)
	}
	if n, _ := s.Count(ctx); n != 3 {
		t.Errorf("Count = %d, want 3", n)
	}

	if deleted, err := s.Prune(ctx, "movies", -1); err != nil || deleted != 2 {
		t.Errorf("Prune(-1) = %d, %v; want 2", deleted, err)
	}
}

func TestRecordQuery(t *testing.T) {
	// Recording metrics must not panic for either outcome.
	recordQuery("test_operation", time.Now(), nil)
	recordQuery("test_operation", time.Now(), errors.New("test error"))
}
