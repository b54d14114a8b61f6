// internal/cli/router.go
package cli

import (
	"fmt"

	"github.com/zap-pm/zap/pkg/backend"
	"github.com/zap-pm/zap/pkg/multi"

	// Register the community source-build backend.
	_ "github.com/zap-pm/zap/pkg/aur"
)

func backendOptions() backend.Options {
	return backend.Options{
		RegistryURL:     cfg.RegistryURL,
		SnapshotBaseURL: cfg.SnapshotBaseURL,
		BuildDir:        cfg.BuildDir,
		Timeout:         cfg.Timeout.Duration,
		MaxResults:      cfg.MaxResults,
	}
}

// newRouter wires the available backends into a router. With
// --backend set, the router carries only that backend.
func newRouter() (*multi.Router, error) {
	opts := backendOptions()

	if cfg.DefaultBackend != "" {
		pm, err := backend.New(cfg.DefaultBackend, opts)
		if err != nil {
			return nil, fmt.Errorf("initializing backend %s: %w", cfg.DefaultBackend, err)
		}
		return multi.NewRouter(pm)
	}

	var backends []backend.PackageManager
	for _, id := range backend.Detect() {
		pm, err := backend.New(id, opts)
		if err != nil {
			continue
		}
		backends = append(backends, pm)
	}
	return multi.NewRouter(backends...)
}
