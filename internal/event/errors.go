package event

import "errors"

// Sentinel errors for the event bus.
var (
	// ErrHandlerPanic is reported when a handler panics.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")
)
