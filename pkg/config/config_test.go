// pkg/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://aur.archlinux.org/rpc/v5", cfg.RegistryURL)
	assert.Equal(t, "https://aur.archlinux.org", cfg.SnapshotBaseURL)
	assert.NotEmpty(t, cfg.BuildDir)
	assert.Equal(t, 2*time.Minute, cfg.Timeout.Duration)
	assert.Equal(t, 30, cfg.MaxResults)
	assert.Empty(t, cfg.DefaultBackend)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
default_backend: aur
registry_url: https://registry.internal/rpc/v5
max_results: 5
timeout: 30s
debug: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "aur", cfg.DefaultBackend)
	assert.Equal(t, "https://registry.internal/rpc/v5", cfg.RegistryURL)
	assert.Equal(t, 5, cfg.MaxResults)
	assert.Equal(t, 30*time.Second, cfg.Timeout.Duration)
	assert.True(t, cfg.Debug)

	// Untouched keys keep their defaults.
	assert.Equal(t, "https://aur.archlinux.org", cfg.SnapshotBaseURL)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("registry_url: [broken"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadClampsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_results: -1\ntimeout: 0s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.MaxResults)
	assert.Equal(t, 2*time.Minute, cfg.Timeout.Duration)
}
