// Package middleware provides HTTP middleware for the cover service.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics labelled by route template
//   - Configurable filtering for health checks and asset requests
package middleware
