package memory

import (
	"math"
	"runtime/debug"
	"testing"
)

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestConfigure(t *testing.T) {
	// Restore whatever limit the test binary started with.
	original := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(original) })

	tests := []struct {
		name       string
		env        map[string]string
		wantSource string
		wantLimit  int64
		wantRatio  float64
	}{
		{name: "nothing set", env: map[string]string{}, wantSource: "none"},
		{name: "invalid limit", env: map[string]string{"MEMORY_LIMIT": "lots"}, wantSource: "none"},
		{name: "negative limit", env: map[string]string{"MEMORY_LIMIT": "-5"}, wantSource: "none"},
		{
			name:       "default ratio",
			env:        map[string]string{"MEMORY_LIMIT": "1073741824"},
			wantSource: "MEMORY_LIMIT",
			wantLimit:  805306368,
			wantRatio:  DefaultMemoryRatio,
		},
		{
			name:       "custom ratio",
			env:        map[string]string{"MEMORY_LIMIT": "1000000000", "MEMORY_RATIO": "0.5"},
			wantSource: "MEMORY_LIMIT",
			wantLimit:  500000000,
			wantRatio:  0.5,
		},
		{
			name:       "ratio out of range",
			env:        map[string]string{"MEMORY_LIMIT": "1000000000", "MEMORY_RATIO": "1.5"},
			wantSource: "MEMORY_LIMIT",
			wantLimit:  750000000,
			wantRatio:  DefaultMemoryRatio,
		},
		{
			name:       "unparsable ratio",
			env:        map[string]string{"MEMORY_LIMIT": "1000000000", "MEMORY_RATIO": "half"},
			wantSource: "MEMORY_LIMIT",
			wantLimit:  750000000,
			wantRatio:  DefaultMemoryRatio,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debug.SetMemoryLimit(math.MaxInt64)
			got := configure(envOf(tt.env))

			if got.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", got.Source, tt.wantSource)
			}
			if got.GoMemLimit != tt.wantLimit {
				t.Errorf("GoMemLimit = %d, want %d", got.GoMemLimit, tt.wantLimit)
			}
			if got.Ratio != tt.wantRatio {
				t.Errorf("Ratio = %v, want %v", got.Ratio, tt.wantRatio)
			}
			if got.Configured != (tt.wantLimit > 0) {
				t.Errorf("Configured = %v", got.Configured)
			}
			if tt.wantLimit > 0 && debug.SetMemoryLimit(-1) != tt.wantLimit {
				t.Error("GOMEMLIMIT was not applied")
			}
		})
	}
}

func TestConfigureExplicitGOMEMLIMIT(t *testing.T) {
	original := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(original) })

	debug.SetMemoryLimit(256 << 20)
	got := configure(envOf(map[string]string{"GOMEMLIMIT": "256MiB", "MEMORY_LIMIT": "1000"}))
	if got.Source != "GOMEMLIMIT" || got.GoMemLimit != 256<<20 {
		t.Errorf("result = %+v", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{in: 512, want: "512 B"},
		{in: 1024, want: "1.0 KiB"},
		{in: 1536, want: "1.5 KiB"},
		{in: 256 << 20, want: "256.0 MiB"},
		{in: 3 << 30, want: "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
