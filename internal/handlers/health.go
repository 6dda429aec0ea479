package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"media-covers/internal/logging"
	"media-covers/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// healthCheckTimeout bounds the source and store checks of a health request.
const healthCheckTimeout = 2 * time.Second

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Backend string `json:"backend"`
	Error   string `json:"error,omitempty"`

	// Source and store summary
	Libraries    int  `json:"libraries"`
	StoreEnabled bool `json:"storeEnabled"`
	StoredCovers int  `json:"storedCovers,omitempty"`

	// Memory pressure
	MemoryUsage  float64 `json:"memoryUsage,omitempty"`
	MemoryPaused bool    `json:"memoryPaused"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. The service is
// degraded when the artwork source cannot be listed; the store is optional
// and only reported.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:       statusHealthy,
		Ready:        true,
		Version:      startup.Version,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Backend:      h.covers.Backend().Name(),
		StoreEnabled: h.store != nil,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	_, _, response.MemoryUsage = h.memory.GetStats()
	if h.memory.IsPaused() {
		response.MemoryPaused = true
		response.Status = statusDegraded
	}

	libraries, err := h.covers.Libraries(ctx)
	if err != nil {
		response.Status = statusDegraded
		response.Ready = false
		response.Error = err.Error()
	} else {
		response.Libraries = len(libraries)
	}

	if h.store != nil {
		if n, err := h.store.Count(ctx); err != nil {
			logging.Warn("Health check could not count stored covers: %v", err)
		} else {
			response.StoredCovers = n
		}
	}

	w.Header().Set("Content-Type", "application/json")

	// Return 503 only if the source is unusable
	if !response.Ready {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	writeJSON(w, response)
}

// LivenessCheck is a simple liveness check (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 only when the artwork source can be listed
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if _, err := h.covers.Libraries(ctx); err == nil {
		w.WriteHeader(http.StatusOK)
		writeJSON(w, map[string]string{
			"status": "ready",
		})
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		writeJSON(w, map[string]string{
			"status": "not_ready",
		})
	}
}
