package artwork

import (
	"context"
	"errors"
	"os"
	"syscall"
	"time"

	"media-covers/internal/logging"
	"media-covers/internal/metrics"
)

// RetryConfig configures retry behavior for library reads.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns sensible defaults for NFS retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// isNFSStaleError checks if an error is an NFS stale file handle error.
func isNFSStaleError(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE
	}
	return false
}

// withRetry runs fn, retrying with exponential backoff while it fails with
// ESTALE. Any other error is returned immediately.
func withRetry[T any](ctx context.Context, op, path string, cfg RetryConfig, fn func() (T, error)) (T, error) {
	backoff := cfg.InitialBackoff
	var (
		zero    T
		lastErr error
	)

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		v, err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", op, attempt, path)
				metrics.ArtworkReadRetries.WithLabelValues(op, "success").Inc()
			}
			return v, nil
		}

		lastErr = err
		if !isNFSStaleError(err) {
			return zero, err
		}

		if attempt < cfg.MaxRetries {
			metrics.ArtworkReadRetries.WithLabelValues(op, "retry").Inc()
			logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
				op, path, backoff, attempt+1, cfg.MaxRetries)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return zero, ctx.Err()
			}

			backoff *= 2
			if backoff > cfg.MaxBackoff {
				backoff = cfg.MaxBackoff
			}
		}
	}

	logging.Warn("NFS %s failed after %d retries for %s: %v", op, cfg.MaxRetries, path, lastErr)
	metrics.ArtworkReadRetries.WithLabelValues(op, "failure").Inc()
	return zero, lastErr
}

func readFileWithRetry(ctx context.Context, path string, cfg RetryConfig) ([]byte, error) {
	return withRetry(ctx, "read", path, cfg, func() ([]byte, error) {
		return os.ReadFile(path)
	})
}

func readDirWithRetry(ctx context.Context, path string, cfg RetryConfig) ([]os.DirEntry, error) {
	return withRetry(ctx, "readdir", path, cfg, func() ([]os.DirEntry, error) {
		return os.ReadDir(path)
	})
}
