// pkg/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so yaml values like "30s" or "2m"
// decode naturally.
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Config holds the zap configuration, loaded from
// $XDG_CONFIG_HOME/zap/config.yaml when present.
type Config struct {
	// DefaultBackend pins a single backend instead of auto-routing.
	DefaultBackend string `yaml:"default_backend"`

	// RegistryURL is the community registry RPC endpoint.
	RegistryURL string `yaml:"registry_url"`

	// SnapshotBaseURL is the host serving source snapshot archives;
	// the registry returns fetch paths relative to it.
	SnapshotBaseURL string `yaml:"snapshot_base_url"`

	// BuildDir is the scratch root for extracting and building
	// community packages.
	BuildDir string `yaml:"build_dir"`

	// Timeout bounds network operations.
	Timeout Duration `yaml:"timeout"`

	// MaxResults caps search results per backend.
	MaxResults int `yaml:"max_results"`

	// Debug enables debug logging.
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RegistryURL:     "https://aur.archlinux.org/rpc/v5",
		SnapshotBaseURL: "https://aur.archlinux.org",
		BuildDir:        filepath.Join(xdg.CacheHome, "zap", "builds"),
		Timeout:         Duration{2 * time.Minute},
		MaxResults:      30,
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "zap", "config.yaml")
}

// Load reads the config file at path, falling back to DefaultPath when
// path is empty. A missing file is not an error: defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Timeout.Duration <= 0 {
		cfg.Timeout = Duration{2 * time.Minute}
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 30
	}

	return cfg, nil
}
