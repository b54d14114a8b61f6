// errors.go
package zap

import (
	"github.com/zap-pm/zap/pkg/backend"
	"github.com/zap-pm/zap/pkg/sudo"
)

var (
	// ErrPackageNotFound indicates the package was not found
	ErrPackageNotFound = backend.ErrPackageNotFound

	// ErrBackendUnavailable indicates the backend's tools are missing
	ErrBackendUnavailable = backend.ErrBackendUnavailable

	// ErrUnknownBackend indicates the backend ID is not registered
	ErrUnknownBackend = backend.ErrUnknownBackend

	// ErrAuth indicates privilege elevation failed
	ErrAuth = sudo.ErrAuth
)

// Error wraps an error with additional context
type Error = backend.Error
