// Package logging provides a simple leveled logging interface for the
// cover generation service.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information (per-stage render timings)
//   - INFO: General operational messages
//   - WARN: Warning conditions (skipped artwork, fallback palettes)
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable, or
// forced to debug with DEBUG=1.
package logging
