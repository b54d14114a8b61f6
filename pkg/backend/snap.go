// pkg/backend/snap.go
package backend

import (
	"context"
	"strings"

	"github.com/zap-pm/zap/pkg/sudo"
)

func init() {
	Register("snap", func(opts Options) (PackageManager, error) {
		return NewSnap(opts)
	})
}

// Snap drives the snap universal package manager.
type Snap struct {
	maxResults int
	elevate    *sudo.Executor
}

// NewSnap creates the snap backend.
func NewSnap(opts Options) (*Snap, error) {
	if err := requireTool("snap init", "snap"); err != nil {
		return nil, err
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 30
	}
	return &Snap{maxResults: maxResults, elevate: sudo.Default}, nil
}

func (s *Snap) Name() string { return "Snap" }
func (s *Snap) ID() string   { return "snap" }

// Search parses snap find columns (Name Version Publisher Notes Summary).
func (s *Snap) Search(ctx context.Context, query string) ([]Package, error) {
	if len(query) < 2 {
		return nil, nil
	}

	out, err := runOutput(ctx, "snap", "find", query)
	if err != nil {
		return nil, nil
	}

	var pkgs []Package
	for i, line := range strings.Split(out, "\n") {
		if i == 0 { // header
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		pkg := Package{Name: fields[0], Version: fields[1]}
		if len(fields) >= 5 {
			pkg.Description = strings.Join(fields[4:], " ")
		}
		pkg.Installed, _ = s.IsInstalled(pkg.Name)
		pkgs = append(pkgs, pkg)
		if len(pkgs) >= s.maxResults {
			break
		}
	}
	return pkgs, nil
}

// Info parses snap info key: value output per name.
func (s *Snap) Info(ctx context.Context, names []string) ([]Package, error) {
	var results []Package
	for _, name := range names {
		out, err := runOutput(ctx, "snap", "info", name)
		if err != nil {
			continue
		}

		pkg := Package{Name: name}
		for _, line := range strings.Split(out, "\n") {
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)
			switch strings.TrimSpace(key) {
			case "summary":
				pkg.Description = value
			case "license":
				pkg.Extra.License = []string{value}
			case "contact":
				pkg.URL = value
			case "latest/stable":
				if fields := strings.Fields(value); len(fields) > 0 {
					pkg.Version = fields[0]
				}
			}
		}
		pkg.Installed, _ = s.IsInstalled(name)
		results = append(results, pkg)
	}
	return results, nil
}

// Install installs each snap; the store client does not batch.
func (s *Snap) Install(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	results := make([]InstallResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		err := s.elevate.Run(ctx, "snap", "install", pkg.Name)
		res := InstallResult{Package: pkg.Name, Success: err == nil}
		if err != nil {
			res.Message = "snap install failed"
		}
		results = append(results, res)
	}
	return results, nil
}

// IsInstalled checks the local snap list.
func (s *Snap) IsInstalled(name string) (bool, error) {
	return commandSucceeds("snap", "list", name), nil
}

// ListInstalled lists installed snaps.
func (s *Snap) ListInstalled() ([]InstalledPackage, error) {
	out, err := runOutput(context.Background(), "snap", "list")
	if err != nil {
		return nil, nil
	}

	var installed []InstalledPackage
	for i, line := range strings.Split(out, "\n") {
		if i == 0 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			installed = append(installed, InstalledPackage{Name: fields[0], Version: fields[1]})
		}
	}
	return installed, nil
}

// Update refreshes the given snaps.
func (s *Snap) Update(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	results := make([]InstallResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		err := s.elevate.Run(ctx, "snap", "refresh", pkg.Name)
		res := InstallResult{Package: pkg.Name, Success: err == nil}
		if err != nil {
			res.Message = "snap refresh failed"
		}
		results = append(results, res)
	}
	return results, nil
}

// CheckUpdates parses snap refresh --list.
func (s *Snap) CheckUpdates(ctx context.Context) ([]Package, error) {
	out, err := runOutput(ctx, "snap", "refresh", "--list")
	if err != nil {
		return nil, nil
	}

	var updates []Package
	for i, line := range strings.Split(out, "\n") {
		if i == 0 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			updates = append(updates, Package{Name: fields[0], Version: fields[1], Installed: true})
		}
	}
	return updates, nil
}
