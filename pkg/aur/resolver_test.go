// pkg/aur/resolver_test.go
package aur

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zap-pm/zap/pkg/backend"
)

// graphResolver builds a Resolver over an in-memory dependency graph.
func graphResolver(graph map[string][]string, installed, primary map[string]bool) *Resolver {
	return &Resolver{
		FetchDescriptor: func(ctx context.Context, pkg backend.Package) (string, error) {
			deps, ok := graph[pkg.Name]
			if !ok {
				return "", errors.New("snapshot not found")
			}
			descriptor := "depends=("
			for _, dep := range deps {
				descriptor += fmt.Sprintf(" '%s'", dep)
			}
			return descriptor + " )", nil
		},
		IsInstalled:   func(name string) bool { return installed[name] },
		InPrimaryRepo: func(name string) bool { return primary[name] },
		RegistryInfo: func(ctx context.Context, names []string) ([]backend.Package, error) {
			var out []backend.Package
			for _, name := range names {
				if _, ok := graph[name]; ok {
					out = append(out, backend.Package{Name: name, Version: "1.0.0"})
				}
			}
			return out, nil
		},
		Log: zerolog.Nop(),
	}
}

func depNames(pkgs []backend.Package) []string {
	var names []string
	for _, pkg := range pkgs {
		names = append(names, pkg.Name)
	}
	return names
}

func TestResolveTransitive(t *testing.T) {
	graph := map[string][]string{
		"root":  {"lib-a"},
		"lib-a": {"lib-b"},
		"lib-b": {},
	}
	r := graphResolver(graph, nil, nil)

	deps, err := r.Resolve(context.Background(), backend.Package{Name: "root"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"lib-a", "lib-b"}, depNames(deps))
}

func TestResolveCycleTerminates(t *testing.T) {
	graph := map[string][]string{
		"root":  {"lib-a"},
		"lib-a": {"lib-b"},
		"lib-b": {"lib-a", "root"},
	}
	r := graphResolver(graph, nil, nil)

	deps, err := r.Resolve(context.Background(), backend.Package{Name: "root"})
	require.NoError(t, err)
	// Each node appears once despite the cycle.
	assert.ElementsMatch(t, []string{"lib-a", "lib-b"}, depNames(deps))
}

func TestResolveSkipsInstalledAndPrimary(t *testing.T) {
	graph := map[string][]string{
		"root":    {"already", "in-repo", "needed"},
		"already": {},
		"in-repo": {},
		"needed":  {},
	}
	installed := map[string]bool{"already": true}
	primary := map[string]bool{"in-repo": true}
	r := graphResolver(graph, installed, primary)

	deps, err := r.Resolve(context.Background(), backend.Package{Name: "root"})
	require.NoError(t, err)
	assert.Equal(t, []string{"needed"}, depNames(deps))
}

func TestResolveSkipsUnknownRegistryNames(t *testing.T) {
	// "mystery" is declared as a dependency but the registry has no
	// record of it: it is neither buildable here nor fatal.
	graph := map[string][]string{
		"root":  {"mystery", "lib-a"},
		"lib-a": {},
	}
	r := graphResolver(graph, nil, nil)

	deps, err := r.Resolve(context.Background(), backend.Package{Name: "root"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lib-a"}, depNames(deps))
}

func TestResolveFetchFailureSkipsBranch(t *testing.T) {
	graph := map[string][]string{
		"root":   {"broken", "lib-a"},
		"lib-a":  {},
		"broken": {"never-reached"},
	}
	r := graphResolver(graph, nil, nil)
	fetched := map[string]int{}
	inner := r.FetchDescriptor
	r.FetchDescriptor = func(ctx context.Context, pkg backend.Package) (string, error) {
		fetched[pkg.Name]++
		if pkg.Name == "broken" {
			return "", errors.New("download failed")
		}
		return inner(ctx, pkg)
	}

	deps, err := r.Resolve(context.Background(), backend.Package{Name: "root"})
	require.NoError(t, err)

	// "broken" stays in the result (it was resolvable by name) but its
	// subtree is skipped.
	assert.ElementsMatch(t, []string{"broken", "lib-a"}, depNames(deps))
	assert.Zero(t, fetched["never-reached"])
}

func TestResolveContextCancellation(t *testing.T) {
	graph := map[string][]string{"root": {"lib-a"}, "lib-a": {}}
	r := graphResolver(graph, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, backend.Package{Name: "root"})
	assert.ErrorIs(t, err, context.Canceled)
}
