package repository

import "errors"

var (
	// ErrNotFound is wrapped by repositories when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is wrapped when a unique constraint rejects a write.
	ErrDuplicate = errors.New("already exists")
)
