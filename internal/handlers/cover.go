package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"media-covers/internal/artwork"
	"media-covers/internal/cover"
	"media-covers/internal/coverstore"
	"media-covers/internal/logging"

	"github.com/gorilla/mux"
)

// maxRequestBody bounds a generation request body.
const maxRequestBody = 64 << 10

// GenerateRequest is the JSON body of POST /api/cover/generate.
type GenerateRequest struct {
	LibraryID     string            `json:"library_id"`
	Style         string            `json:"style"`
	Title         string            `json:"title"`
	Subtitle      string            `json:"subtitle"`
	IsAnimated    bool              `json:"is_animated"`
	FrameCount    int               `json:"frame_count"`
	FrameDuration int               `json:"frame_duration"`
	OutputFormat  string            `json:"output_format"`
	Params        cover.StyleParams `json:"params"`
}

// ListLibraries returns every library of the artwork source.
func (h *Handlers) ListLibraries(w http.ResponseWriter, r *http.Request) {
	libraries, err := h.covers.Libraries(r.Context())
	if err != nil {
		logging.Error("ListLibraries failed: %v", err)
		writeJSONError(w, "Failed to list libraries", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{"libraries": libraries})
}

// PreviewLibrary returns the items a cover of the library would draw from.
func (h *Handlers) PreviewLibrary(w http.ResponseWriter, r *http.Request) {
	libraryID := mux.Vars(r)["library"]

	limit := cover.DefaultPreviewLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}

	items, err := h.covers.Preview(r.Context(), libraryID, limit)
	if err != nil {
		h.writeCoverError(w, "Preview", libraryID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"library_id": libraryID,
		"items":      items,
	})
}

// GenerateCover renders a static or animated cover and returns its bytes.
func (h *Handlers) GenerateCover(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.memory.Admit(ctx); err != nil {
		logging.Warn("GenerateCover for %s not admitted: %v", req.LibraryID, err)
		writeJSONError(w, "Server is under memory pressure, retry later", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	var (
		data   []byte
		style  = cover.StyleCollage
		kind   = "static"
		format = cover.FormatPNG
		err    error
	)
	if req.IsAnimated {
		kind = "animated"
		format, err = cover.ParseAnimationFormat(req.OutputFormat)
		if err == nil {
			data, err = h.covers.GenerateAnimated(ctx, cover.AnimatedRequest{
				LibraryID:       req.LibraryID,
				FrameCount:      req.FrameCount,
				FrameDurationMs: req.FrameDuration,
				Format:          format,
				Title:           req.Title,
				Subtitle:        req.Subtitle,
				Params:          req.Params,
			})
		}
	} else {
		style, err = cover.ParseStyle(req.Style)
		if err == nil {
			data, err = h.covers.GenerateStatic(ctx, cover.StaticRequest{
				LibraryID: req.LibraryID,
				Style:     style,
				Title:     req.Title,
				Subtitle:  req.Subtitle,
				Params:    req.Params,
			})
		}
	}
	if err != nil {
		h.writeCoverError(w, "GenerateCover", req.LibraryID, err)
		return
	}

	logging.Debug("GenerateCover %s %s cover for %s in %v", style, kind, req.LibraryID, time.Since(start))

	h.keepCover(r.Context(), &coverstore.Cover{
		LibraryID:   req.LibraryID,
		Style:       string(style),
		Kind:        kind,
		Format:      string(format),
		ContentType: format.ContentType(),
		Title:       req.Title,
		Subtitle:    req.Subtitle,
		Data:        data,
	})

	writeImage(w, data, format.ContentType())
}

// LatestCover serves the most recently generated cover of a library.
func (h *Handlers) LatestCover(w http.ResponseWriter, r *http.Request) {
	libraryID := mux.Vars(r)["library"]
	if h.store == nil {
		writeJSONError(w, "Cover store is disabled", http.StatusNotFound)
		return
	}

	c, err := h.store.Latest(r.Context(), libraryID)
	if errors.Is(err, coverstore.ErrNotFound) {
		writeJSONError(w, "No cover generated for this library", http.StatusNotFound)
		return
	}
	if err != nil {
		logging.Error("LatestCover failed for %s: %v", libraryID, err)
		writeJSONError(w, "Failed to load cover", http.StatusInternalServerError)
		return
	}

	writeImage(w, c.Data, c.ContentType)
}

// CoverHistory lists the stored covers of a library, newest first.
func (h *Handlers) CoverHistory(w http.ResponseWriter, r *http.Request) {
	libraryID := mux.Vars(r)["library"]
	if h.store == nil {
		writeJSONError(w, "Cover store is disabled", http.StatusNotFound)
		return
	}

	covers, err := h.store.List(r.Context(), libraryID, h.keep)
	if err != nil {
		logging.Error("CoverHistory failed for %s: %v", libraryID, err)
		writeJSONError(w, "Failed to list covers", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"library_id": libraryID,
		"covers":     covers,
	})
}

// keepCover stores c and prunes older covers of its library. Store failures
// never fail the request.
func (h *Handlers) keepCover(ctx context.Context, c *coverstore.Cover) {
	if h.store == nil {
		return
	}
	if _, err := h.store.Save(ctx, c); err != nil {
		logging.Warn("Failed to store cover for %s: %v", c.LibraryID, err)
		return
	}
	if _, err := h.store.Prune(ctx, c.LibraryID, h.keep); err != nil {
		logging.Warn("Failed to prune covers of %s: %v", c.LibraryID, err)
	}
}

// writeCoverError maps a generation error to its HTTP status.
func (h *Handlers) writeCoverError(w http.ResponseWriter, op, libraryID string, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.Error("%s failed for %s: %v", op, libraryID, err)
	} else {
		logging.Debug("%s rejected for %s: %v", op, libraryID, err)
	}
	writeJSONError(w, err.Error(), status)
}

// statusForError returns the HTTP status for a cover service error.
func statusForError(err error) int {
	switch {
	case errors.Is(err, cover.ErrUnsupportedStyle),
		errors.Is(err, cover.ErrUnsupportedOutputFormat),
		errors.Is(err, cover.ErrInvalidParams):
		return http.StatusBadRequest
	case errors.Is(err, artwork.ErrLibraryNotFound):
		return http.StatusNotFound
	case errors.Is(err, cover.ErrInsufficientArtwork),
		errors.Is(err, cover.ErrArtworkDecode):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
