package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int32

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

var levelNames = [...]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
}

var (
	level     atomic.Int32
	levelOnce sync.Once
)

// ParseLevel converts a level name into a LogLevel.
// Unknown names resolve to LevelInfo and ok=false.
func ParseLevel(name string) (LogLevel, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	for l, n := range levelNames {
		if n == name {
			return LogLevel(l), true
		}
	}
	return LevelInfo, false
}

// levelFromEnv reads DEBUG (any truthy value forces debug) and LOG_LEVEL.
func levelFromEnv() LogLevel {
	switch strings.ToLower(os.Getenv("DEBUG")) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}
	l, _ := ParseLevel(os.Getenv("LOG_LEVEL"))
	return l
}

func ensureLevel() {
	levelOnce.Do(func() { level.Store(int32(levelFromEnv())) })
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	ensureLevel()
	return LogLevel(level.Load())
}

// SetLevel overrides the level picked up from the environment.
// The covergen CLI uses it for its -v flag.
func SetLevel(l LogLevel) {
	ensureLevel()
	level.Store(int32(l))
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

func logf(l LogLevel, tag, format string, args []interface{}) {
	if GetLevel() <= l {
		log.Printf(tag+format, args...)
	}
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug)
func Debug(format string, args ...interface{}) { logf(LevelDebug, "[DEBUG] ", format, args) }

// Info logs an info message
func Info(format string, args ...interface{}) { logf(LevelInfo, "[INFO] ", format, args) }

// Warn logs a warning message
func Warn(format string, args ...interface{}) { logf(LevelWarn, "[WARN] ", format, args) }

// Error logs an error message
func Error(format string, args ...interface{}) { logf(LevelError, "[ERROR] ", format, args) }

// Fatal logs an error message and exits
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}

// Timed logs the start of op at debug level and returns a function that logs
// the elapsed time when called. Typical use:
//
//	defer logging.Timed("fetch %d artworks from %s", n, libraryID)()
func Timed(format string, args ...interface{}) func() {
	if !IsDebugEnabled() {
		return func() {}
	}
	op := fmt.Sprintf(format, args...)
	start := time.Now()
	Debug("%s: started", op)
	return func() {
		Debug("%s: finished in %s", op, time.Since(start).Round(time.Millisecond))
	}
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
	if l >= 0 && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("unknown(%d)", l)
}
