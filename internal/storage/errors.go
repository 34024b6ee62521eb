package storage

import "errors"

// Storage errors shared by all implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record with a
	// key that already exists. Ingest is append-only; re-loading the same
	// CSV surfaces duplicates instead of silently updating.
	ErrDuplicateKey = errors.New("duplicate key: store does not allow updates")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
