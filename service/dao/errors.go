package dao

import "errors"

var (
	// ErrNotFound is returned when no record has the requested key
	ErrNotFound = errors.New("dao: not found")

	// ErrNilEntity is returned when saving a nil record
	ErrNilEntity = errors.New("dao: nil entity")
)
