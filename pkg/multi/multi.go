// pkg/multi/multi.go

// Package multi routes bare package names across every available
// package manager: it classifies each name, walks backends in priority
// order, groups matches into per-backend batches, and falls back from
// the community backend to the primary repository when a source build
// fails.
package multi

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/zap-pm/zap/pkg/backend"
	"github.com/zap-pm/zap/pkg/logging"
)

// Router holds the set of initialized backends in priority order.
type Router struct {
	backends []entry
	byID     map[string]backend.PackageManager
	log      zerolog.Logger
}

type entry struct {
	id string
	pm backend.PackageManager
}

// NewRouter creates a router over the given backends. Order is
// preserved and used for the remaining-backend fallback walk.
func NewRouter(backends ...backend.PackageManager) (*Router, error) {
	if len(backends) == 0 {
		return nil, fmt.Errorf("no package managers available")
	}

	r := &Router{
		byID: make(map[string]backend.PackageManager, len(backends)),
		log:  logging.GetLogger("router"),
	}
	for _, pm := range backends {
		r.backends = append(r.backends, entry{id: pm.ID(), pm: pm})
		r.byID[pm.ID()] = pm
	}
	return r, nil
}

// IDs returns the registered backend ids in registration order.
func (r *Router) IDs() []string {
	ids := make([]string, 0, len(r.backends))
	for _, e := range r.backends {
		ids = append(ids, e.id)
	}
	return ids
}

// Backend returns the backend registered under id.
func (r *Router) Backend(id string) (backend.PackageManager, bool) {
	pm, ok := r.byID[id]
	return pm, ok
}

// BackendPackages pairs a backend id with packages it returned.
type BackendPackages struct {
	ID       string
	Packages []backend.Package
}

// SearchAll queries every backend concurrently and coalesces the
// non-error, non-empty responses. A single backend's outage degrades
// the aggregate instead of failing it.
func (r *Router) SearchAll(ctx context.Context, query string) []BackendPackages {
	return r.fanOut(ctx, func(ctx context.Context, pm backend.PackageManager) ([]backend.Package, error) {
		return pm.Search(ctx, query)
	})
}

// InfoAll fetches a single name's record from every backend
// concurrently, with the same degradation rule as SearchAll.
func (r *Router) InfoAll(ctx context.Context, name string) []BackendPackages {
	return r.fanOut(ctx, func(ctx context.Context, pm backend.PackageManager) ([]backend.Package, error) {
		return pm.Info(ctx, []string{name})
	})
}

func (r *Router) fanOut(ctx context.Context, query func(context.Context, backend.PackageManager) ([]backend.Package, error)) []BackendPackages {
	slots := make([][]backend.Package, len(r.backends))

	var g errgroup.Group
	for i, e := range r.backends {
		i, e := i, e
		g.Go(func() error {
			pkgs, err := query(ctx, e.pm)
			if err != nil {
				r.log.Debug().Str("backend", e.id).Err(err).Msg("query failed, skipping backend")
				return nil
			}
			slots[i] = pkgs
			return nil
		})
	}
	g.Wait()

	var results []BackendPackages
	for i, pkgs := range slots {
		if len(pkgs) > 0 {
			results = append(results, BackendPackages{ID: r.backends[i].id, Packages: pkgs})
		}
	}
	return results
}

// InstallAuto resolves each name to the best backend and installs all
// matches in one batched install per backend. Per-package failures are
// captured in that package's result and never unwind the batch.
func (r *Router) InstallAuto(ctx context.Context, names []string) []backend.InstallResult {
	var results []backend.InstallResult
	groups := map[string][]backend.Package{}
	var groupOrder []string

	for _, name := range names {
		pkgType := Classify(name)
		candidates := InstallCandidates(pkgType, r.IDs())

		id, pkgs := r.locate(ctx, name, candidates)
		if id == "" {
			// Fall back to every backend not yet tried, in
			// registration order.
			tried := map[string]bool{}
			for _, c := range candidates {
				tried[c] = true
			}
			var remaining []string
			for _, e := range r.backends {
				if !tried[e.id] {
					remaining = append(remaining, e.id)
				}
			}
			id, pkgs = r.locate(ctx, name, remaining)
		}

		if id == "" {
			results = append(results, backend.InstallResult{
				Package: name,
				Message: fmt.Sprintf("package %q not found in any backend", name),
			})
			continue
		}

		r.log.Info().Str("package", name).Str("backend", id).Msg("matched")
		if _, seen := groups[id]; !seen {
			groupOrder = append(groupOrder, id)
		}
		groups[id] = append(groups[id], pkgs...)
	}

	for _, id := range groupOrder {
		results = append(results, r.installGroup(ctx, id, groups[id])...)
	}
	return results
}

// locate walks candidate backends in order and returns the first
// non-empty, valid info result.
func (r *Router) locate(ctx context.Context, name string, candidates []string) (string, []backend.Package) {
	for _, id := range candidates {
		pm, ok := r.byID[id]
		if !ok {
			continue
		}

		pkgs, err := pm.Info(ctx, []string{name})
		if err != nil {
			r.log.Debug().Str("backend", id).Str("package", name).Err(err).Msg("info failed")
			continue
		}

		// A community record without a fetch path cannot be built from
		// source; treat it as not found there.
		if id == backend.CommunityID {
			pkgs = buildable(pkgs)
		}
		if len(pkgs) == 0 {
			continue
		}
		return id, pkgs
	}
	return "", nil
}

func buildable(pkgs []backend.Package) []backend.Package {
	var out []backend.Package
	for _, p := range pkgs {
		if p.Extra.AurURLPath != "" {
			out = append(out, p)
		}
	}
	return out
}

// installGroup runs one batched install for a backend and applies the
// community-to-primary recovery rule: packages the community backend
// failed to build are re-routed through the primary repository when it
// carries them, and the primary outcome is reported instead.
//
// The re-route matches by name only; it does not verify the primary
// repository's version against the community one. That gap is
// inherited behavior (version constraint solving is out of scope).
func (r *Router) installGroup(ctx context.Context, id string, pkgs []backend.Package) []backend.InstallResult {
	pm := r.byID[id]

	batch, err := pm.Install(ctx, pkgs)
	if err != nil {
		// The whole batch errored. For the community backend, each
		// package still gets a primary-repository attempt.
		if id == backend.CommunityID {
			var results []backend.InstallResult
			for _, pkg := range pkgs {
				if rerouted, ok := r.reroute(ctx, pkg.Name); ok {
					results = append(results, rerouted...)
					continue
				}
				results = append(results, backend.InstallResult{
					Package: pkg.Name,
					Message: fmt.Sprintf("install via %s failed: %v", id, err),
				})
			}
			return results
		}

		results := make([]backend.InstallResult, 0, len(pkgs))
		for _, pkg := range pkgs {
			results = append(results, backend.InstallResult{
				Package: pkg.Name,
				Message: fmt.Sprintf("install via %s failed: %v", id, err),
			})
		}
		return results
	}

	if id != backend.CommunityID {
		return batch
	}

	var results []backend.InstallResult
	for _, res := range batch {
		if res.Success {
			results = append(results, res)
			continue
		}
		if rerouted, ok := r.reroute(ctx, res.Package); ok {
			results = append(results, rerouted...)
			continue
		}
		results = append(results, res)
	}
	return results
}

// reroute attempts a primary-repository install for one failed
// community package.
func (r *Router) reroute(ctx context.Context, name string) ([]backend.InstallResult, bool) {
	primary := r.primaryBackend()
	if primary == nil {
		return nil, false
	}

	pkgs, err := primary.Info(ctx, []string{name})
	if err != nil || len(pkgs) == 0 {
		return nil, false
	}

	r.log.Info().Str("package", name).Str("backend", primary.ID()).
		Msg("community install failed, re-routing through primary repository")

	results, err := primary.Install(ctx, pkgs)
	if err != nil || len(results) == 0 {
		return nil, false
	}
	return results, true
}

// primaryBackend returns the highest-priority native system backend.
func (r *Router) primaryBackend() backend.PackageManager {
	for _, id := range backend.SystemIDs {
		if pm, ok := r.byID[id]; ok {
			return pm
		}
	}
	return nil
}

// UpdateAll checks every backend for updates and applies them. The
// walk is sequential: updates may need the shared credential session.
func (r *Router) UpdateAll(ctx context.Context) []backend.InstallResult {
	var results []backend.InstallResult
	for _, e := range r.backends {
		updates, err := e.pm.CheckUpdates(ctx)
		if err != nil {
			r.log.Warn().Str("backend", e.id).Err(err).Msg("update check failed")
			continue
		}
		if len(updates) == 0 {
			continue
		}

		res, err := e.pm.Update(ctx, updates)
		if err != nil {
			for _, pkg := range updates {
				results = append(results, backend.InstallResult{
					Package: pkg.Name,
					Message: fmt.Sprintf("update via %s failed: %v", e.id, err),
				})
			}
			continue
		}
		results = append(results, res...)
	}
	return results
}
