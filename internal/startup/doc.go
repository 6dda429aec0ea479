// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - LIBRARY_DIR: Root of the artwork libraries, one subdirectory per library (default: /media)
//   - DATABASE_DIR: Directory holding the cover history database (default: /database)
//   - FONT_DIR: Optional directory containing title.ttf and subtitle.ttf
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - COVER_USE_VIPS: Use libvips for decoding and WebP output (default: true)
//   - FETCH_WORKERS: Concurrent artwork fetches, 0 means auto (default: 0)
//   - GENERATION_TIMEOUT: Upper bound for one generation as Go duration (default: 2m)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_STATIC_FILES: Log static file requests (default: false)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// # Directory Setup
//
// The library directory must exist and is never written to. The database
// directory is created when missing; if it is not writable the cover store is
// disabled and generation still works.
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Example Usage
//
//	config, err := startup.LoadConfig()
//	if err != nil {
//	    startup.LogFatal("Configuration error: %v", err)
//	}
//
//	startup.LogServerStarted(startup.ServerConfig{
//	    Port:            config.Port,
//	    MetricsPort:     config.MetricsPort,
//	    MetricsEnabled:  config.MetricsEnabled,
//	    StartupDuration: time.Since(startTime),
//	})
package startup
