// pkg/backend/registry_test.go
package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisteredBackends(t *testing.T) {
	ids := Registered()

	for _, id := range []string{"pacman", "apt", "dnf", "flatpak", "snap", "npm", "pip", "cargo", "go"} {
		assert.Contains(t, ids, id)
	}
	assert.IsIncreasing(t, ids)
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New("slackpkg", Options{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownBackend))

	var backendErr *Error
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "slackpkg", backendErr.Package)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	assert.Panics(t, func() {
		Register("pacman", func(Options) (PackageManager, error) { return nil, nil })
	})
}

func TestErrorFormatting(t *testing.T) {
	err := &Error{Op: "install", Package: "htop", Err: ErrPackageNotFound}
	assert.Equal(t, "install htop: package not found", err.Error())
	assert.True(t, errors.Is(err, ErrPackageNotFound))

	bare := &Error{Op: "detect", Err: ErrBackendUnavailable}
	assert.Equal(t, "detect: backend not available", bare.Error())
}
