// Package coverstore keeps generated covers in SQLite so that the last cover
// of each library can be served again without re-rendering it.
//
// The store runs in WAL mode with a busy timeout and records every query in
// the media_covers_db_* Prometheus metrics. Prune bounds how many covers are
// retained per library.
package coverstore
