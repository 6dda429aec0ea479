package startup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"media-covers/internal/logging"
)

const defaultGenerationTimeout = 2 * time.Minute

// fontExtensions are tried in order when resolving fonts in FONT_DIR.
var fontExtensions = []string{".ttf", ".otf", ".ttc"}

// Config holds all application configuration
type Config struct {
	LibraryDir        string
	DatabaseDir       string
	FontDir           string
	Port              string
	MetricsPort       string
	MetricsEnabled    bool
	UseVips           bool
	FetchWorkers      int
	GenerationTimeout time.Duration
	LogStaticFiles    bool
	LogHealthChecks   bool

	// Derived paths
	DatabasePath  string
	TitleFontPath string
	SubFontPath   string

	// StoreEnabled is false when DATABASE_DIR cannot be created or written.
	StoreEnabled bool
}

// LoadConfig reads the environment, logs the resulting settings and
// prepares the directories. Only an unreadable LIBRARY_DIR is an error.
func LoadConfig() (*Config, error) {
	printBanner()

	config := &Config{
		LibraryDir:        getEnv("LIBRARY_DIR", "/media"),
		DatabaseDir:       getEnv("DATABASE_DIR", "/database"),
		FontDir:           getEnv("FONT_DIR", ""),
		Port:              getEnv("PORT", "8080"),
		MetricsPort:       getEnv("METRICS_PORT", "9090"),
		MetricsEnabled:    getEnvBool("METRICS_ENABLED", true),
		UseVips:           getEnvBool("COVER_USE_VIPS", true),
		FetchWorkers:      getEnvInt("FETCH_WORKERS", 0),
		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", defaultGenerationTimeout),
		LogStaticFiles:    getEnvBool("LOG_STATIC_FILES", false),
		LogHealthChecks:   getEnvBool("LOG_HEALTH_CHECKS", true),
	}

	section("CONFIGURATION")
	logKeyValues(20,
		"LIBRARY_DIR", config.LibraryDir,
		"DATABASE_DIR", config.DatabaseDir,
		"FONT_DIR", valueOrNone(config.FontDir),
		"PORT", config.Port,
		"METRICS_PORT", config.MetricsPort,
		"METRICS_ENABLED", strconv.FormatBool(config.MetricsEnabled),
		"COVER_USE_VIPS", strconv.FormatBool(config.UseVips),
		"FETCH_WORKERS", strconv.Itoa(config.FetchWorkers),
		"GENERATION_TIMEOUT", config.GenerationTimeout.String(),
		"LOG_STATIC_FILES", strconv.FormatBool(config.LogStaticFiles),
		"LOG_HEALTH_CHECKS", strconv.FormatBool(config.LogHealthChecks),
		"LOG_LEVEL", logging.GetLevel().String(),
	)

	section("DIRECTORY SETUP")
	if err := config.resolveDirs(); err != nil {
		return nil, err
	}
	config.DatabasePath = filepath.Join(config.DatabaseDir, "covers.db")

	if config.FontDir != "" {
		config.TitleFontPath = findFont(config.FontDir, "title")
		config.SubFontPath = findFont(config.FontDir, "subtitle")
		logKeyValues(14,
			"Title font", valueOrNone(config.TitleFontPath),
			"Subtitle font", valueOrNone(config.SubFontPath),
		)
	}

	config.StoreEnabled = prepareWritableDir(config.DatabaseDir, "cover store")

	logging.Info("")
	logging.Info("  Feature availability:")
	logKeyValues(12,
		"  Cover store", enabledString(config.StoreEnabled),
		"  libvips", enabledString(config.UseVips),
		"  Metrics", enabledString(config.MetricsEnabled),
	)
	return config, nil
}

// resolveDirs makes the directories absolute and checks the library root.
func (c *Config) resolveDirs() error {
	var err error
	if c.LibraryDir, err = filepath.Abs(c.LibraryDir); err != nil {
		return fmt.Errorf("failed to resolve library directory path: %w", err)
	}
	if c.DatabaseDir, err = filepath.Abs(c.DatabaseDir); err != nil {
		return fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logKeyValues(10, "Libraries", c.LibraryDir, "Database", c.DatabaseDir)

	n, err := countLibraries(c.LibraryDir)
	if err != nil {
		return fmt.Errorf("library directory error: %w", err)
	}
	logging.Info("  [OK] %d libraries found", n)
	return nil
}

// countLibraries returns the number of subdirectories of a readable root.
func countLibraries(root string) (int, error) {
	info, err := os.Stat(root)
	if err != nil {
		return 0, fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return 0, errors.New("path exists but is not a directory")
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory: %w", err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			n++
		}
	}
	return n, nil
}

// findFont returns dir/<base>.{ttf,otf,ttc}, the first that exists, or "".
func findFont(dir, base string) string {
	for _, ext := range fontExtensions {
		candidate := filepath.Join(dir, base+ext)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// prepareWritableDir creates dir and checks it with a temporary file. The
// named feature is reported disabled when either step fails.
func prepareWritableDir(dir, feature string) bool {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logging.Warn("  Cannot create %s directory, %s disabled: %v", dir, feature, err)
		return false
	}
	tmp, err := os.CreateTemp(dir, ".write-test-*")
	if err != nil {
		logging.Warn("  %s is not writable, %s disabled: %v", dir, feature, err)
		return false
	}
	name := tmp.Name()
	_ = tmp.Close()
	if err := os.Remove(name); err != nil {
		logging.Warn("failed to remove write test file %s: %v", name, err)
	}
	logging.Debug("  [OK] %s directory ready: %s", feature, dir)
	return true
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseEnv reads key with parse, logging and falling back to defaultValue
// when the value is present but invalid.
func parseEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := parse(value)
	if err != nil {
		logging.Warn("Invalid value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, strconv.ParseBool)
}

// getEnvInt accepts non-negative integers only.
func getEnvInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		if err == nil && n < 0 {
			err = errors.New("negative")
		}
		return n, err
	})
}

// getEnvDuration accepts positive Go durations only.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(key, defaultValue, func(s string) (time.Duration, error) {
		d, err := time.ParseDuration(s)
		if err == nil && d <= 0 {
			err = errors.New("not positive")
		}
		return d, err
	})
}
