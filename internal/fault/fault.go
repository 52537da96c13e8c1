// Package fault defines the error classes shared by the pool, the prefetch
// reader and the engine. Package-level sentinels wrap one of these so callers
// can classify any error with errors.Is.
package fault

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks invalid settings detected before any worker starts.
	ErrConfig = errors.New("configuration error")
	// ErrResource marks files that cannot be opened, read or written.
	ErrResource = errors.New("resource error")
	// ErrProtocol marks misuse of an API contract (double shutdown,
	// submit after shutdown, out-of-range block access).
	ErrProtocol = errors.New("protocol error")
)

// Configf returns an ErrConfig with a formatted message.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// Resource wraps err as an ErrResource, keeping err in the chain.
func Resource(op string, err error) error {
	return &resourceError{op: op, err: err}
}

type resourceError struct {
	op  string
	err error
}

func (e *resourceError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *resourceError) Unwrap() []error {
	return []error{ErrResource, e.err}
}
