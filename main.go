package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-covers/internal/artwork"
	"media-covers/internal/cover"
	"media-covers/internal/coverstore"
	"media-covers/internal/handlers"
	"media-covers/internal/logging"
	"media-covers/internal/memory"
	"media-covers/internal/metrics"
	"media-covers/internal/middleware"
	"media-covers/internal/raster"
	"media-covers/internal/startup"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Must run before the renderer allocates anything sizeable
	memory.ConfigureFromEnv()

	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	ctx := context.Background()

	// Cover store is optional
	var store *coverstore.Store
	if config.StoreEnabled {
		storeStart := time.Now()
		store, err = coverstore.New(ctx, config.DatabasePath)
		if err != nil {
			logging.Warn("Cover store unavailable, covers will not be kept: %v", err)
			store = nil
		} else {
			startup.LogStoreInit(time.Since(storeStart))
		}
	}

	backend := setupBackend(config.UseVips)

	fonts, err := cover.LoadFonts(config.TitleFontPath, config.SubFontPath)
	if err != nil {
		startup.LogFatal("Failed to load fonts: %v", err)
	}
	startup.LogRendererInit(backend.SupportsAnimatedWebP(), fonts.TitleSource, fonts.SubtitleSource)

	source := artwork.NewDirSource(config.LibraryDir)
	svc, err := cover.NewService(source,
		cover.WithBackend(backend),
		cover.WithFonts(fonts),
		cover.WithObserver(metrics.NewCoverObserver()),
		cover.WithFetchWorkers(config.FetchWorkers),
	)
	if err != nil {
		startup.LogFatal("Failed to create cover service: %v", err)
	}

	monitor := memory.NewMonitor(memory.DefaultConfig())
	monitor.Start()

	var collector *metrics.Collector
	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.AppInfo.WithLabelValues(startup.Version, startup.Commit, startup.GoVersion).Set(1)

		collector = metrics.NewCollector(inventoryStats(svc, store), time.Minute)
		collector.Start()

		metricsSrv = startMetricsServer(config.MetricsPort)
	}

	h := handlers.NewWithMonitor(svc, store, monitor, config)
	router := setupRouter(h)

	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Animations can take as long as the generation timeout
		WriteTimeout: config.GenerationTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go handleShutdown(srv, metricsSrv, collector, monitor, store)

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		startup.LogFatal("Server error: %v", err)
	}
}

// setupBackend prefers the libvips backend and falls back to pure Go.
func setupBackend(useVips bool) raster.Backend {
	if !useVips {
		return raster.NewImaging()
	}
	if err := raster.InitVips(); err != nil {
		logging.Warn("libvips initialization failed, using imaging: %v", err)
		return raster.NewImaging()
	}
	v, err := raster.NewVips()
	if err != nil {
		logging.Warn("libvips backend unavailable, using imaging: %v", err)
		return raster.NewImaging()
	}
	return v
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	// Health check and version routes
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods("GET")
	r.HandleFunc("/version", h.GetVersion).Methods("GET")

	// Cover API
	api := r.PathPrefix("/api/cover").Subrouter()
	api.HandleFunc("/libraries", h.ListLibraries).Methods("GET")
	api.HandleFunc("/preview/{library}", h.PreviewLibrary).Methods("GET")
	api.HandleFunc("/generate", h.GenerateCover).Methods("POST")
	api.HandleFunc("/{library}/latest", h.LatestCover).Methods("GET")
	api.HandleFunc("/{library}/history", h.CoverHistory).Methods("GET")

	return r
}

func startMetricsServer(port string) *http.Server {
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           metricsMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Metrics server error: %v", err)
		}
	}()
	return srv
}

// inventoryStats reports library and stored-cover counts to the collector.
func inventoryStats(covers *cover.Service, store *coverstore.Store) metrics.StatsFunc {
	return func(ctx context.Context) (metrics.Stats, error) {
		libs, err := covers.Libraries(ctx)
		if err != nil {
			return metrics.Stats{}, fmt.Errorf("listing libraries: %w", err)
		}
		stats := metrics.Stats{Libraries: len(libs)}
		if store != nil {
			n, err := store.Count(ctx)
			if err != nil {
				return metrics.Stats{}, fmt.Errorf("counting stored covers: %w", err)
			}
			stats.StoredCovers = n
		}
		return stats, nil
	}
}

func handleShutdown(srv, metricsSrv *http.Server, collector *metrics.Collector, monitor *memory.Monitor, store *coverstore.Store) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	if collector != nil {
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}

	monitor.Stop()
	startup.LogShutdownStepComplete("Memory monitor stopped")

	if store != nil {
		startup.LogShutdownStep("Closing cover store")
		if err := store.Close(); err != nil {
			logging.Warn("Cover store close error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Cover store closed")
		}
	}

	raster.ShutdownVips()
	startup.LogShutdownComplete()
}
