package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"media-covers/internal/logging"
)

// LoggingConfig controls which requests the access log records.
type LoggingConfig struct {
	SkipPaths       []string
	SkipExtensions  []string
	LogStaticFiles  bool
	LogHealthChecks bool
	// SlowThreshold promotes requests slower than this to warnings.
	// Zero disables it.
	SlowThreshold time.Duration
}

// DefaultLoggingConfig logs API and health traffic and skips static assets.
// Generation can legitimately take tens of seconds, so only requests past
// 30s are reported as slow.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		SkipExtensions:  []string{".ico", ".txt", ".css", ".js"},
		LogHealthChecks: true,
		SlowThreshold:   30 * time.Second,
	}
}

var healthPaths = map[string]struct{}{
	"/health":  {},
	"/healthz": {},
	"/livez":   {},
	"/readyz":  {},
}

// skipRules is a LoggingConfig reduced to the checks made per request.
type skipRules struct {
	prefixes     []string
	extensions   []string
	healthChecks bool
}

func newSkipRules(config LoggingConfig) skipRules {
	rules := skipRules{
		prefixes:     config.SkipPaths,
		healthChecks: !config.LogHealthChecks,
	}
	if !config.LogStaticFiles {
		for _, ext := range config.SkipExtensions {
			rules.extensions = append(rules.extensions, strings.ToLower(ext))
		}
	}
	return rules
}

func (s skipRules) match(path string) bool {
	for _, p := range s.prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	if s.healthChecks {
		if _, ok := healthPaths[path]; ok {
			return true
		}
	}
	if len(s.extensions) > 0 {
		lower := strings.ToLower(path)
		for _, ext := range s.extensions {
			if strings.HasSuffix(lower, ext) {
				return true
			}
		}
	}
	return false
}

// Logger writes one W3C Extended Log Format line per request.
func Logger(config LoggingConfig) func(http.Handler) http.Handler {
	rules := newSkipRules(config)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rules.match(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := newResponseWriter(w)
			next.ServeHTTP(rw, r)
			elapsed := time.Since(start)

			line := formatW3C(time.Now().UTC(), r, rw, elapsed)
			if config.SlowThreshold > 0 && elapsed > config.SlowThreshold {
				logging.Warn("slow request: %s", line)
				return
			}
			logging.Info("%s", line)
		})
	}
}

// formatW3C renders the fields
// date time c-ip cs-method cs-uri-stem cs-uri-query sc-status sc-bytes time-taken sc(Content-Type) cs(User-Agent).
func formatW3C(now time.Time, r *http.Request, rw *responseWriter, elapsed time.Duration) string {
	fields := []string{
		now.Format(time.DateOnly),
		now.Format(time.TimeOnly),
		w3cField(clientIP(r)),
		w3cField(r.Method),
		w3cField(r.URL.Path),
		w3cField(r.URL.RawQuery),
		strconv.Itoa(rw.statusCode),
		strconv.FormatInt(rw.bytesWritten, 10),
		strconv.FormatInt(elapsed.Milliseconds(), 10),
		w3cField(rw.Header().Get("Content-Type")),
		w3cField(r.Header.Get("User-Agent")),
	}
	return strings.Join(fields, " ")
}

// w3cField sanitizes s for a log line, using "-" for empty values.
func w3cField(s string) string {
	s = sanitizeLogField(s)
	if s == "" {
		return "-"
	}
	return escapeW3CField(s)
}

// sanitizeLogField strips control characters so a client cannot forge log lines.
func sanitizeLogField(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r':
			return ' '
		case r == '\t':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, s)
}

// escapeW3CField quotes a field containing spaces, tabs or quotes.
func escapeW3CField(s string) string {
	if !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection address without its port.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
