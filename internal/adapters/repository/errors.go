package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	// ErrConflict means a snapshot already exists for the (category,
	// createdAt) key. Callers treat it as idempotent success.
	ErrConflict = errors.New("snapshot already exists")

	// ErrNotFound means no snapshot exists for the category yet.
	ErrNotFound = errors.New("snapshot not found")
)
