package exas

import "errors"

var (
	// ErrEmptySequence is returned when a label sequence has no positions.
	ErrEmptySequence = errors.New("empty label sequence")

	// ErrSequenceTooLong is returned when a label sequence exceeds MaxLength positions.
	ErrSequenceTooLong = errors.New("label sequence too long")
)
