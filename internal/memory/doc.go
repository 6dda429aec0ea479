// Package memory keeps cover generation inside the container's memory limit.
//
// A full-resolution animation holds dozens of 1920x1080 frames and libvips
// allocates outside the Go heap, so the service is sensitive to OOM kills.
// The package does two things:
//
//   - [ConfigureFromEnv] sets GOMEMLIMIT from the container limit passed in
//     MEMORY_LIMIT (Kubernetes Downward API), leaving MEMORY_RATIO of it to
//     the Go heap and the rest to libvips and goroutine stacks. An explicit
//     GOMEMLIMIT always wins.
//   - [Monitor] samples heap usage and, above the critical water mark,
//     holds new generations in [Monitor.Admit] until usage falls back below
//     the high water mark.
//
// Example Downward API wiring:
//
//	env:
//	  - name: MEMORY_LIMIT
//	    valueFrom:
//	      resourceFieldRef:
//	        resource: limits.memory
package memory
