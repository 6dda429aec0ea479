// Package handlers provides HTTP request handlers for the cover API.
//
// It includes handlers for:
//   - Library listing and artwork previews
//   - Static and animated cover generation
//   - Stored cover retrieval and history
//   - Health checks and version information
package handlers
