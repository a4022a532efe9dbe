// Package store persists analysis runs, per-region results and contour
// shapes in SQLite. The schema is managed by golang-migrate from migrations
// embedded in the binary.
package store
