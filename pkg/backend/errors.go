// pkg/backend/errors.go
package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrPackageNotFound indicates the package is absent from a given
	// backend; the router silently tries the next candidate.
	ErrPackageNotFound = errors.New("package not found")

	// ErrBackendUnavailable indicates a required external program is
	// missing. Fatal at backend construction.
	ErrBackendUnavailable = errors.New("backend not available")

	// ErrAuth indicates the elevation credential was rejected. Fatal
	// for the whole run.
	ErrAuth = errors.New("authentication failed")

	// ErrUnknownBackend indicates an id with no registered constructor.
	ErrUnknownBackend = errors.New("unknown backend")
)

// Error wraps an error with operation and package context.
type Error struct {
	Op      string // Operation that failed
	Package string // Package name if applicable
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Package != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Package, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
