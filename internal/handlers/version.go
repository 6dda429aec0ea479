package handlers

import (
	"net/http"

	"media-covers/internal/startup"
)

// VersionResponse is the build information plus the active renderer.
type VersionResponse struct {
	startup.BuildInfo
	Backend string `json:"backend,omitempty"`
}

// GetVersion returns the application version and build information
func (h *Handlers) GetVersion(w http.ResponseWriter, _ *http.Request) {
	response := VersionResponse{BuildInfo: startup.GetBuildInfo()}
	if h.covers != nil {
		response.Backend = h.covers.Backend().Name()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, response)
}
