package engine

import "errors"

var (
	// ErrInnerDimsRequired is returned when OOG evaluation, bias analysis or
	// packing is requested against a spec that lacks a full inner envelope.
	// This is a configuration fault; the caller must fix the container spec.
	ErrInnerDimsRequired = errors.New("standard container inner dimensions are required")
	// ErrInvalidCount is returned when validate is asked for fewer than one
	// container instance.
	ErrInvalidCount = errors.New("container count must be at least 1")
)
