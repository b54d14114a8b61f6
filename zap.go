// zap.go
package zap

import (
	"github.com/zap-pm/zap/pkg/backend"
	"github.com/zap-pm/zap/pkg/config"
	"github.com/zap-pm/zap/pkg/multi"

	// Register the community source-build backend.
	_ "github.com/zap-pm/zap/pkg/aur"
)

// Re-export backend types for convenience
type (
	Package          = backend.Package
	PackageExtra     = backend.PackageExtra
	InstallResult    = backend.InstallResult
	InstalledPackage = backend.InstalledPackage
	PackageManager   = backend.PackageManager
	Options          = backend.Options
	Config           = config.Config
	Router           = multi.Router
	BackendPackages  = multi.BackendPackages
	PackageType      = multi.PackageType
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return config.DefaultConfig()
}

// Detect returns the IDs of every backend whose tools are present on
// this system.
func Detect() []string {
	return backend.Detect()
}

// Classify guesses which ecosystem a package name belongs to.
func Classify(name string) PackageType {
	return multi.Classify(name)
}

func optionsFromConfig(cfg *Config) Options {
	return Options{
		RegistryURL:     cfg.RegistryURL,
		SnapshotBaseURL: cfg.SnapshotBaseURL,
		BuildDir:        cfg.BuildDir,
		Timeout:         cfg.Timeout.Duration,
		MaxResults:      cfg.MaxResults,
	}
}

// NewBackend constructs a single backend by ID.
func NewBackend(id string, cfg *Config) (PackageManager, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return backend.New(id, optionsFromConfig(cfg))
}

// NewRouter detects the backends available on this system and wires
// them into a router. A backend whose constructor fails is skipped;
// the router errors only when nothing at all is usable.
func NewRouter(cfg *Config) (*Router, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	opts := optionsFromConfig(cfg)

	var backends []PackageManager
	for _, id := range backend.Detect() {
		pm, err := backend.New(id, opts)
		if err != nil {
			continue
		}
		backends = append(backends, pm)
	}
	return multi.NewRouter(backends...)
}
