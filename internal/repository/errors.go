// Package repository defines the storage contracts used by the service
// layer and the error tags every store adapter must return.  Adapters
// translate driver-specific failures (MySQL error numbers, Mongo write
// exceptions) into these sentinel values so that higher layers never
// inspect driver error shapes.
package repository

import "errors"

// ErrNotFound is returned when no record matches the lookup.  For owned
// records this also covers an id that exists but belongs to someone
// else, and ids the adapter cannot parse.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a write violates a unique constraint
// (user email, or owner+email for active friends).
var ErrDuplicate = errors.New("duplicate key")
