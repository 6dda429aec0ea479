package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestNewResponseWriter(t *testing.T) {
	rw := newResponseWriter(httptest.NewRecorder())

	if rw.statusCode != http.StatusOK {
		t.Errorf("Expected default status code 200, got %d", rw.statusCode)
	}
	if rw.bytesWritten != 0 {
		t.Errorf("Expected bytesWritten to be 0, got %d", rw.bytesWritten)
	}
	if rw.wroteHeader {
		t.Error("Expected wroteHeader to be false initially")
	}
}

func TestResponseWriterWriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	rw.WriteHeader(http.StatusNotFound)
	if rw.statusCode != http.StatusNotFound {
		t.Errorf("Expected status code 404, got %d", rw.statusCode)
	}

	// Write header again - should be ignored
	rw.WriteHeader(http.StatusInternalServerError)
	if rw.statusCode != http.StatusNotFound || w.Code != http.StatusNotFound {
		t.Error("Status code should not change after first WriteHeader")
	}
}

func TestResponseWriterWrite(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)

	if _, err := rw.Write([]byte("hello ")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := rw.Write([]byte("world")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if rw.bytesWritten != 11 {
		t.Errorf("Expected 11 bytes written, got %d", rw.bytesWritten)
	}
	if !rw.wroteHeader {
		t.Error("Write should mark the header as written")
	}
	if w.Body.String() != "hello world" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestSkipRules(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		config LoggingConfig
		want   bool
	}{
		{name: "api request", path: "/api/cover/generate", config: DefaultLoggingConfig(), want: false},
		{name: "health logged by default", path: "/healthz", config: DefaultLoggingConfig(), want: false},
		{name: "health skipped", path: "/healthz", config: LoggingConfig{LogHealthChecks: false}, want: true},
		{name: "favicon skipped", path: "/favicon.ICO", config: DefaultLoggingConfig(), want: true},
		{name: "favicon logged", path: "/favicon.ico", config: LoggingConfig{LogStaticFiles: true, LogHealthChecks: true, SkipExtensions: []string{".ico"}}, want: false},
		{name: "static logged when enabled", path: "/robots.txt", config: LoggingConfig{LogStaticFiles: true, LogHealthChecks: true, SkipExtensions: []string{".txt"}}, want: false},
		{name: "skip path prefix", path: "/metrics/x", config: LoggingConfig{SkipPaths: []string{"/metrics"}, LogHealthChecks: true}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newSkipRules(tt.config).match(tt.path); got != tt.want {
				t.Errorf("match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "plain", want: "plain"},
		{in: "line\nbreak", want: "line break"},
		{in: "cr\rlf", want: "cr lf"},
		{in: "nul\x00byte", want: "nulbyte"},
		{in: "\x1b[31mred", want: "[31mred"},
		{in: "tab\tkept", want: "tab\tkept"},
		{in: "bell\x07", want: "bell"},
		{in: "del\x7f", want: "del"},
	}
	for _, tt := range tests {
		if got := sanitizeLogField(tt.in); got != tt.want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, want: "10.0.0.1"},
		{name: "forwarded single", headers: map[string]string{"X-Forwarded-For": " 10.0.0.3 "}, want: "10.0.0.3"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": "10.0.0.4"}, want: "10.0.0.4"},
		{name: "remote addr", remote: "192.168.1.5:4321", want: "192.168.1.5"},
		{name: "remote ipv6", remote: "[::1]:8080", want: "::1"},
		{name: "remote without port", remote: "unix", want: "unix"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.remote != "" {
				r.RemoteAddr = tt.remote
			}
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatW3C(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/cover/generate?x=1", http.NoBody)
	r.RemoteAddr = "127.0.0.1:9999"
	r.Header.Set("User-Agent", "covers test")

	w := httptest.NewRecorder()
	rw := newResponseWriter(w)
	rw.Header().Set("Content-Type", "image/png")
	rw.WriteHeader(http.StatusOK)
	_, _ = rw.Write(make([]byte, 42))

	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	got := formatW3C(now, r, rw, 1500*time.Millisecond)
	want := `2026-03-04 05:06:07 127.0.0.1 POST /api/cover/generate x=1 200 42 1500 image/png "covers test"`
	if got != want {
		t.Errorf("formatW3C =\n%s\nwant\n%s", got, want)
	}
}

func TestEscapeW3CField(t *testing.T) {
	if got := escapeW3CField("simple"); got != "simple" {
		t.Errorf("escapeW3CField(simple) = %q", got)
	}
	if got := escapeW3CField(`say "hi"`); got != `"say ""hi"""` {
		t.Errorf("escapeW3CField(quoted) = %q", got)
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("body"))
	}))

	for _, path := range []string{"/api/cover/libraries", "/favicon.ico"} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		if w.Code != http.StatusTeapot || w.Body.String() != "body" {
			t.Errorf("%s: got %d %q", path, w.Code, w.Body.String())
		}
	}
}

func TestDefaultMetricsConfig(t *testing.T) {
	config := DefaultMetricsConfig()
	for _, path := range []string{"/metrics", "/health", "/healthz", "/livez", "/readyz"} {
		found := false
		for _, p := range config.SkipPaths {
			if p == path {
				found = true
			}
		}
		if !found {
			t.Errorf("%s is not skipped", path)
		}
	}
}

func TestMetricsMiddlewareRouteLabel(t *testing.T) {
	var label string
	router := mux.NewRouter()
	router.Use(Metrics(DefaultMetricsConfig()))
	router.HandleFunc("/api/cover/{library}/latest", func(w http.ResponseWriter, r *http.Request) {
		label = routeLabel(r)
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cover/movies/latest", http.NoBody))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if label != "/api/cover/{library}/latest" {
		t.Errorf("label = %q, want the route template", label)
	}
}

func TestRouteLabelUnmatched(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/nowhere", http.NoBody)
	if got := routeLabel(r); got != "unmatched" {
		t.Errorf("routeLabel = %q, want unmatched", got)
	}
}

func TestMetricsMiddlewareSkipsHealth(t *testing.T) {
	called := false
	handler := Metrics(DefaultMetricsConfig())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		_, _ = w.Write([]byte(strings.Repeat("x", 3)))
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	if !called || w.Body.String() != "xxx" {
		t.Error("skipped path was not passed through")
	}
}

func TestResponseWriterUnwrap(t *testing.T) {
	w := httptest.NewRecorder()
	rw := newResponseWriter(w)
	if rw.Unwrap() != w {
		t.Error("Unwrap did not return the underlying writer")
	}
	if err := http.NewResponseController(rw).Flush(); err != nil {
		t.Errorf("Flush through ResponseController: %v", err)
	}
}
