package graph

import "errors"

var (
	// ErrInvalidVersion is returned when a node version is neither Old nor New.
	// It aborts construction of the graph being built.
	ErrInvalidVersion = errors.New("invalid version value")

	// ErrUnknownEndpoint is returned when a descriptor edge references a node
	// index outside the descriptor.
	ErrUnknownEndpoint = errors.New("edge endpoint not in graph")
)
