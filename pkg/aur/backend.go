// pkg/aur/backend.go

// Package aur implements the community-registry backend: dependency
// resolution against the registry RPC and local source builds driven
// by the native build tool.
package aur

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"sort"
	"strings"

	"github.com/zap-pm/zap/pkg/backend"
	"github.com/zap-pm/zap/pkg/logging"
	"github.com/zap-pm/zap/pkg/sudo"
)

func init() {
	backend.Register("aur", func(opts backend.Options) (backend.PackageManager, error) {
		return New(opts)
	})
}

// Backend is the community registry package manager.
type Backend struct {
	client     *Client
	builder    *Builder
	maxResults int
}

// New constructs the community backend. Both the native package
// manager and the build tool must be present.
func New(opts backend.Options) (*Backend, error) {
	for _, tool := range []string{"pacman", "makepkg"} {
		if _, err := exec.LookPath(tool); err != nil {
			return nil, &backend.Error{Op: "aur init", Package: tool, Err: backend.ErrBackendUnavailable}
		}
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 30
	}

	log := logging.GetLogger("aur")
	client := NewClient(opts.RegistryURL, opts.SnapshotBaseURL, opts.Timeout)
	return &Backend{
		client:     client,
		builder:    NewBuilder(client, opts.BuildDir, sudo.Default, log),
		maxResults: maxResults,
	}, nil
}

// Name returns the human-readable backend name.
func (b *Backend) Name() string { return "AUR (Arch User Repository)" }

// ID returns the backend identifier.
func (b *Backend) ID() string { return "aur" }

// Search queries the registry by name, falling back to a
// name-and-description search when the narrow one finds nothing.
// Results are sorted by popularity and truncated.
func (b *Backend) Search(ctx context.Context, query string) ([]backend.Package, error) {
	if len(query) < 2 {
		return nil, nil
	}

	results, err := b.client.Search(ctx, query, "name")
	if err != nil || len(results) == 0 {
		results, err = b.client.Search(ctx, query, "name-desc")
		if err != nil {
			var regErr RegistryError
			if errors.As(err, &regErr) && strings.Contains(string(regErr), "Too many") {
				return nil, nil
			}
			return nil, err
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Popularity > results[j].Popularity
	})
	if len(results) > b.maxResults {
		results = results[:b.maxResults]
	}
	return results, nil
}

// Info returns the registry records for the given names.
func (b *Backend) Info(ctx context.Context, names []string) ([]backend.Package, error) {
	return b.client.Info(ctx, names)
}

// Install builds and installs each package with its community
// dependencies. One failed package never aborts its siblings.
func (b *Backend) Install(ctx context.Context, pkgs []backend.Package) ([]backend.InstallResult, error) {
	results := make([]backend.InstallResult, 0, len(pkgs))

	for _, pkg := range pkgs {
		err := b.installWithDeps(ctx, pkg, false)
		res := backend.InstallResult{Package: pkg.Name, Success: err == nil}
		if err != nil {
			res.Message = err.Error()
		}
		results = append(results, res)
	}

	return results, nil
}

// installWithDeps resolves and builds a package. With force set, an
// already-installed package is rebuilt anyway (the update path).
func (b *Backend) installWithDeps(ctx context.Context, pkg backend.Package, force bool) error {
	if !force {
		if installed, _ := b.IsInstalled(pkg.Name); installed {
			return nil
		}
	}

	log := logging.GetLogger("aur")
	log.Info().Str("package", pkg.Name).Msg("resolving dependencies")

	resolver := &Resolver{
		FetchDescriptor: b.fetchDescriptor,
		IsInstalled: func(name string) bool {
			installed, _ := b.IsInstalled(name)
			return installed
		},
		InPrimaryRepo: b.inPrimaryRepo,
		RegistryInfo:  b.client.Info,
		Log:           log,
	}

	deps, err := resolver.Resolve(ctx, pkg)
	if err != nil {
		return err
	}

	if len(deps) > 0 {
		log.Info().Str("package", pkg.Name).Int("count", len(deps)).Msg("installing dependencies")
	}
	for _, dep := range deps {
		if installed, _ := b.IsInstalled(dep.Name); installed {
			continue
		}
		if err := b.builder.Install(ctx, dep); err != nil {
			// A failed dependency is reported but does not stop the
			// main package; the build may still succeed without it.
			log.Warn().Str("package", dep.Name).Err(err).Msg("dependency install failed, continuing")
		}
	}

	return b.builder.Install(ctx, pkg)
}

// fetchDescriptor downloads and extracts a package snapshot and reads
// its build descriptor.
func (b *Backend) fetchDescriptor(ctx context.Context, pkg backend.Package) (string, error) {
	data, err := b.client.DownloadSnapshot(ctx, pkg.Extra.AurURLPath)
	if err != nil {
		return "", err
	}
	pkgDir, err := b.builder.extractSnapshot(pkg.Name, data)
	if err != nil {
		return "", err
	}
	return readDescriptor(pkgDir)
}

// IsInstalled checks the local package database.
func (b *Backend) IsInstalled(name string) (bool, error) {
	cmd := exec.Command("pacman", "-Q", name)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	return cmd.Run() == nil, nil
}

// ListInstalled returns foreign packages, i.e. those not present in
// the primary repositories.
func (b *Backend) ListInstalled() ([]backend.InstalledPackage, error) {
	out, err := exec.Command("pacman", "-Qm").Output()
	if err != nil {
		return nil, nil
	}

	var installed []backend.InstalledPackage
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			installed = append(installed, backend.InstalledPackage{Name: fields[0], Version: fields[1]})
		}
	}
	return installed, nil
}

// Update rebuilds the given packages from source even when a version
// is already installed.
func (b *Backend) Update(ctx context.Context, pkgs []backend.Package) ([]backend.InstallResult, error) {
	results := make([]backend.InstallResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		err := b.installWithDeps(ctx, pkg, true)
		res := backend.InstallResult{Package: pkg.Name, Success: err == nil}
		if err != nil {
			res.Message = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

// CheckUpdates compares installed foreign packages against the
// registry's current versions.
func (b *Backend) CheckUpdates(ctx context.Context) ([]backend.Package, error) {
	installed, err := b.ListInstalled()
	if err != nil || len(installed) == 0 {
		return nil, err
	}

	names := make([]string, 0, len(installed))
	byName := make(map[string]string, len(installed))
	for _, p := range installed {
		names = append(names, p.Name)
		byName[p.Name] = p.Version
	}

	records, err := b.client.Info(ctx, names)
	if err != nil {
		return nil, err
	}

	var updates []backend.Package
	for _, rec := range records {
		if current, ok := byName[rec.Name]; ok && current != rec.Version {
			updates = append(updates, rec)
		}
	}
	return updates, nil
}

// inPrimaryRepo reports whether the primary repositories carry a
// package; such dependencies are left to the primary manager.
func (b *Backend) inPrimaryRepo(name string) bool {
	out, err := exec.Command("pacman", "-Ss", "^"+name+"$").Output()
	if err != nil {
		return false
	}

	for _, line := range strings.Split(string(out), "\n") {
		for _, repo := range []string{"core/", "extra/", "community/", "multilib/"} {
			if strings.HasPrefix(line, repo+name+" ") || line == repo+name {
				return true
			}
		}
	}
	return false
}
