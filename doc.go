// Package main provides the entry point for the cover service.
//
// The service turns the artwork of a media library into a 1920x1080 cover:
// a rotated collage of poster tiles, a diagonal split of one image, or a
// fanned stack of cards, each with a blurred backdrop, film grain and an
// optional title block. The collage can also be rendered as a seamless
// scrolling loop in GIF or, with libvips, animated WebP.
//
// # Application Lifecycle
//
//  1. Memory Configuration: sets GOMEMLIMIT from MEMORY_LIMIT
//  2. Configuration Loading: reads environment variables and validates directories
//  3. Cover Store: opens the SQLite store of generated covers (optional)
//  4. Renderer: starts libvips when enabled, loads title and subtitle fonts
//  5. Background services: memory monitor, metrics collector
//  6. HTTP Server Setup: registers routes and middleware, starts serving
//  7. Graceful Shutdown: handles SIGINT/SIGTERM
//
// # HTTP Server
//
// The main server (default port 8080) serves:
//
//   - GET  /api/cover/libraries
//   - GET  /api/cover/preview/{library}?limit=9
//   - POST /api/cover/generate
//   - GET  /api/cover/{library}/latest
//   - GET  /api/cover/{library}/history
//   - GET  /health, /healthz, /livez, /readyz, /version
//
// The metrics server (default port 9090, optional) serves /metrics.
//
// # Environment Variables
//
//   - LIBRARY_DIR: root directory, one subdirectory per library (default: /media)
//   - DATABASE_DIR: directory for the cover store (default: /database)
//   - FONT_DIR: directory holding title.* and subtitle.* fonts (optional)
//   - PORT: main HTTP server port (default: 8080)
//   - METRICS_PORT: metrics server port (default: 9090)
//   - METRICS_ENABLED: enable metrics server (default: true)
//   - COVER_USE_VIPS: use libvips when available (default: true)
//   - FETCH_WORKERS: concurrent artwork fetches, 0 sizes automatically
//   - GENERATION_TIMEOUT: upper bound for one generation (default: 2m)
//   - LOG_LEVEL: logging level (debug/info/warn/error)
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: see package memory
//
// # Graceful Shutdown
//
//  1. Shutdown main HTTP server (30s timeout)
//  2. Shutdown metrics server (if running)
//  3. Stop metrics collector and memory monitor
//  4. Close the cover store
//  5. Shut down libvips
//
// # Build Requirements
//
// CGO is required for SQLite and libvips.
//
// # Related Packages
//
//   - [media-covers/internal/cover]: cover composition and animation
//   - [media-covers/internal/artwork]: artwork sources and concurrent fetching
//   - [media-covers/internal/raster]: raster backends, masks and quantization
//   - [media-covers/internal/palette]: colour extraction
//   - [media-covers/internal/coverstore]: SQLite store of generated covers
//   - [media-covers/internal/handlers]: HTTP request handlers
//   - [media-covers/internal/middleware]: HTTP middleware (logging, metrics)
//   - [media-covers/internal/startup]: configuration and initialization
package main
