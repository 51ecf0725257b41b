package demoscope

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Demo operations.
var (
	// ErrNotFound is returned when the demo file does not exist.
	ErrNotFound = errors.New("demo file not found")
	// ErrIsDirectory is returned when the demo path names a directory.
	ErrIsDirectory = errors.New("demo path is a directory")
	// ErrNoCollectors is returned when a parse config enables nothing.
	ErrNoCollectors = errors.New("no collectors enabled")
	// ErrTooManyCheckpoints aborts index builds whose checkpoint count
	// would exceed the configured limit.
	ErrTooManyCheckpoints = errors.New("checkpoint limit exceeded")
	// ErrUnresolvedReference is returned when an entity handle or name
	// index does not resolve against the state table.
	ErrUnresolvedReference = errors.New("unresolved reference")
)

// UnknownKindError rejects message collector configs naming a kind the
// dispatcher has no registration for.
type UnknownKindError struct {
	// Kind is the unrecognized message kind.
	Kind string
}

// Error implements the error interface.
func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown message kind %q", e.Kind)
}

// DecodeError reports a demo stream that could not be decoded to the end.
// Collectors keep everything gathered before the failure, so callers can
// unwrap a partial result alongside this error.
type DecodeError struct {
	// Path is the demo file being decoded.
	Path string
	// Tick is the last tick reached before the failure.
	Tick uint32
	// Err is the underlying decoder error.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: failed at tick %d: %v", e.Path, e.Tick, e.Err)
}

// Unwrap returns the underlying decoder error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}
