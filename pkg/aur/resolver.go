// pkg/aur/resolver.go
package aur

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/zap-pm/zap/pkg/backend"
)

// Resolver discovers the transitive community-registry dependencies of
// a package. Collaborators are injected so the traversal can be tested
// without a network or a package database.
type Resolver struct {
	// FetchDescriptor fetches and extracts a package's source snapshot
	// and returns its build descriptor text.
	FetchDescriptor func(ctx context.Context, pkg backend.Package) (string, error)

	// IsInstalled reports whether a package is installed locally.
	IsInstalled func(name string) bool

	// InPrimaryRepo reports whether the primary system repository can
	// provide a package (the primary manager will pull it itself).
	InPrimaryRepo func(name string) bool

	// RegistryInfo looks names up in the community registry.
	RegistryInfo func(ctx context.Context, names []string) ([]backend.Package, error)

	Log zerolog.Logger
}

// Resolve returns the flat, de-duplicated set of community packages
// that must be built before or alongside root, excluding anything
// already installed or available from the primary repository.
//
// The traversal uses an explicit worklist instead of recursion so a
// malformed or cyclic dependency graph cannot exhaust the call stack;
// the visited set is finite and strictly growing, so it terminates.
// A node whose descriptor cannot be fetched or parsed is logged and
// skipped; resolution continues for the rest of the worklist.
func (r *Resolver) Resolve(ctx context.Context, root backend.Package) ([]backend.Package, error) {
	var deps []backend.Package
	visited := map[string]bool{}
	inResult := map[string]bool{}
	worklist := []backend.Package{root}

	for len(worklist) > 0 {
		current := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		if visited[current.Name] {
			continue
		}
		visited[current.Name] = true

		if err := ctx.Err(); err != nil {
			return deps, err
		}

		descriptor, err := r.FetchDescriptor(ctx, current)
		if err != nil {
			r.Log.Warn().Str("package", current.Name).Err(err).
				Msg("could not fetch dependencies, skipping branch")
			continue
		}

		for _, dep := range ParseDependencies(descriptor) {
			if r.IsInstalled(dep) {
				continue
			}
			if r.InPrimaryRepo(dep) {
				continue
			}

			records, err := r.RegistryInfo(ctx, []string{dep})
			if err != nil {
				r.Log.Warn().Str("package", dep).Err(err).
					Msg("registry lookup failed, skipping dependency")
				continue
			}
			if len(records) == 0 {
				continue
			}

			depPkg := records[0]
			if inResult[depPkg.Name] {
				continue
			}
			inResult[depPkg.Name] = true
			deps = append(deps, depPkg)
			worklist = append(worklist, depPkg)
		}
	}

	return deps, nil
}
