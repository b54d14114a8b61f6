// pkg/backend/apt.go
package backend

import (
	"context"
	"strings"

	"github.com/zap-pm/zap/pkg/sudo"
)

func init() {
	Register("apt", func(opts Options) (PackageManager, error) {
		return NewApt(opts)
	})
}

// Apt drives the Debian/Ubuntu package manager.
type Apt struct {
	maxResults int
	elevate    *sudo.Executor
}

// NewApt creates the apt backend.
func NewApt(opts Options) (*Apt, error) {
	if err := requireTool("apt init", "apt-get"); err != nil {
		return nil, err
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 30
	}
	return &Apt{maxResults: maxResults, elevate: sudo.Default}, nil
}

func (a *Apt) Name() string { return "APT" }
func (a *Apt) ID() string   { return "apt" }

// Search parses apt-cache search ("name - description" lines).
func (a *Apt) Search(ctx context.Context, query string) ([]Package, error) {
	if len(query) < 2 {
		return nil, nil
	}

	out, err := runOutput(ctx, "apt-cache", "search", query)
	if err != nil {
		return nil, err
	}

	var pkgs []Package
	for _, line := range strings.Split(out, "\n") {
		name, desc, ok := strings.Cut(line, " - ")
		if !ok || name == "" {
			continue
		}
		pkg := Package{Name: strings.TrimSpace(name), Description: strings.TrimSpace(desc)}
		pkg.Installed, _ = a.IsInstalled(pkg.Name)
		pkgs = append(pkgs, pkg)
		if len(pkgs) >= a.maxResults {
			break
		}
	}
	return pkgs, nil
}

// Info parses apt-cache show output per name.
func (a *Apt) Info(ctx context.Context, names []string) ([]Package, error) {
	var results []Package
	for _, name := range names {
		out, err := runOutput(ctx, "apt-cache", "show", name)
		if err != nil {
			continue
		}

		var pkg Package
		for _, line := range strings.Split(out, "\n") {
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)
			switch key {
			case "Package":
				if pkg.Name == "" {
					pkg.Name = value
				}
			case "Version":
				if pkg.Version == "" {
					pkg.Version = value
				}
			case "Description", "Description-en":
				if pkg.Description == "" {
					pkg.Description = value
				}
			case "Homepage":
				pkg.URL = value
			case "Depends":
				pkg.Extra.Depends = strings.Split(value, ", ")
			}
		}
		if pkg.Name != "" {
			pkg.Installed, _ = a.IsInstalled(pkg.Name)
			results = append(results, pkg)
		}
	}
	return results, nil
}

// Install runs one batched apt-get install.
func (a *Apt) Install(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	if len(pkgs) == 0 {
		return nil, nil
	}

	argv := []string{"apt-get", "install", "-y"}
	for _, pkg := range pkgs {
		argv = append(argv, pkg.Name)
	}

	err := a.elevate.Run(ctx, argv...)
	results := make([]InstallResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		res := InstallResult{Package: pkg.Name, Success: err == nil}
		if err != nil {
			res.Message = "apt-get install failed"
		}
		results = append(results, res)
	}
	return results, nil
}

// IsInstalled asks dpkg for the package status.
func (a *Apt) IsInstalled(name string) (bool, error) {
	return commandSucceeds("dpkg", "-s", name), nil
}

// ListInstalled queries the dpkg database.
func (a *Apt) ListInstalled() ([]InstalledPackage, error) {
	out, err := runOutput(context.Background(), "dpkg-query", "-W", "-f=${Package} ${Version}\n")
	if err != nil {
		return nil, nil
	}
	return parseNameVersionLines(out), nil
}

// Update reinstalls through the batched install path.
func (a *Apt) Update(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	return a.Install(ctx, pkgs)
}

// CheckUpdates parses apt list --upgradable.
func (a *Apt) CheckUpdates(ctx context.Context) ([]Package, error) {
	out, err := runOutput(ctx, "apt", "list", "--upgradable")
	if err != nil {
		return nil, nil
	}

	var updates []Package
	for _, line := range strings.Split(out, "\n") {
		// Format: name/suite version arch [upgradable from: old]
		name, rest, ok := strings.Cut(line, "/")
		if !ok || strings.HasPrefix(line, "Listing") {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) >= 2 {
			updates = append(updates, Package{Name: name, Version: fields[1], Installed: true})
		}
	}
	return updates, nil
}
