package startup

import (
	"time"

	"media-covers/internal/logging"
)

const rule = "------------------------------------------------------------"

// section starts a titled block of the startup log.
func section(title string) {
	logging.Info("")
	logging.Info(rule)
	logging.Info("%s", title)
	logging.Info(rule)
}

// logKeyValues logs alternating key/value pairs as an aligned table.
func logKeyValues(width int, pairs ...string) {
	for i := 0; i+1 < len(pairs); i += 2 {
		logging.Info("  %-*s %s", width, pairs[i]+":", pairs[i+1])
	}
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// LogStoreInit logs cover store initialization
func LogStoreInit(duration time.Duration) {
	section("COVER STORE INITIALIZATION")
	logging.Info("  [OK] Cover store initialized in %v", duration)
}

// LogRendererInit logs the raster backend and font setup
func LogRendererInit(vipsAvailable bool, titleFont, subtitleFont string) {
	section("RENDERER INITIALIZATION")
	if vipsAvailable {
		logging.Info("  [OK] libvips available (decode-time shrinking, animated WebP)")
	} else {
		logging.Warn("  libvips unavailable: WebP animations disabled, decoding via imaging")
	}
	logKeyValues(14, "Title font", titleFont, "Subtitle font", subtitleFont)
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs the listening addresses once the server is up.
func LogServerStarted(config ServerConfig) {
	section("SERVER STARTED")
	metricsAddr := "DISABLED"
	if config.MetricsEnabled {
		metricsAddr = "http://0.0.0.0:" + config.MetricsPort + "/metrics"
	}
	logKeyValues(16,
		"Startup time", config.StartupDuration.String(),
		"Cover API", "http://0.0.0.0:"+config.Port+"/api/cover",
		"Metrics", metricsAddr,
	)
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info(rule)
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	section("SHUTDOWN INITIATED (received " + signal + ")")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}
