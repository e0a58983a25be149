package storage

import "errors"

var (
	// ErrGraphNotFound is returned when no graph is stored under the requested id.
	ErrGraphNotFound = errors.New("graph not found")

	// ErrRunNotFound is returned when the store holds no matching run.
	ErrRunNotFound = errors.New("run not found")
)
