// pkg/backend/flatpak.go
package backend

import (
	"context"
	"strings"
)

func init() {
	Register("flatpak", func(opts Options) (PackageManager, error) {
		return NewFlatpak(opts)
	})
}

// Flatpak drives the flatpak universal package manager against the
// flathub remote.
type Flatpak struct {
	maxResults int
}

// NewFlatpak creates the flatpak backend.
func NewFlatpak(opts Options) (*Flatpak, error) {
	if err := requireTool("flatpak init", "flatpak"); err != nil {
		return nil, err
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 30
	}
	return &Flatpak{maxResults: maxResults}, nil
}

func (f *Flatpak) Name() string { return "Flatpak" }
func (f *Flatpak) ID() string   { return "flatpak" }

// Search parses flatpak search tab-separated columns
// (name, description, application id, version, branch, remotes).
func (f *Flatpak) Search(ctx context.Context, query string) ([]Package, error) {
	if len(query) < 2 {
		return nil, nil
	}

	out, err := runOutput(ctx, "flatpak", "search", query)
	if err != nil {
		return nil, nil
	}

	var pkgs []Package
	for _, line := range strings.Split(out, "\n") {
		cols := strings.Split(line, "\t")
		if len(cols) < 4 || strings.HasPrefix(line, "No matches") {
			continue
		}
		// The application id is the installable name.
		pkgs = append(pkgs, Package{
			Name:        strings.TrimSpace(cols[2]),
			Version:     strings.TrimSpace(cols[3]),
			Description: strings.TrimSpace(cols[1]),
		})
		if len(pkgs) >= f.maxResults {
			break
		}
	}
	return pkgs, nil
}

// Info queries the flathub remote per application id.
func (f *Flatpak) Info(ctx context.Context, names []string) ([]Package, error) {
	var results []Package
	for _, name := range names {
		out, err := runOutput(ctx, "flatpak", "remote-info", "--system", "flathub", name)
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
			case "Version":
				pkg.Version = value
			case "License":
				pkg.Extra.License = []string{value}
			}
		}
		pkg.Installed, _ = f.IsInstalled(name)
		results = append(results, pkg)
	}
	return results, nil
}

// Install installs each application from flathub; flatpak manages its
// own privileges for system installs.
func (f *Flatpak) Install(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	results := make([]InstallResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		_, err := runOutput(ctx, "flatpak", "install", "-y", "flathub", pkg.Name)
		res := InstallResult{Package: pkg.Name, Success: err == nil}
		if err != nil {
			res.Message = "flatpak install failed"
		}
		results = append(results, res)
	}
	return results, nil
}

// IsInstalled checks the local installation.
func (f *Flatpak) IsInstalled(name string) (bool, error) {
	return commandSucceeds("flatpak", "info", name), nil
}

// ListInstalled lists installed applications.
func (f *Flatpak) ListInstalled() ([]InstalledPackage, error) {
	out, err := runOutput(context.Background(), "flatpak", "list", "--app", "--columns=application,version")
	if err != nil {
		return nil, nil
	}

	var installed []InstalledPackage
	for _, line := range strings.Split(out, "\n") {
		cols := strings.Split(line, "\t")
		if len(cols) >= 2 && cols[0] != "" {
			installed = append(installed, InstalledPackage{Name: strings.TrimSpace(cols[0]), Version: strings.TrimSpace(cols[1])})
		}
	}
	return installed, nil
}

// Update upgrades the given applications in place.
func (f *Flatpak) Update(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	results := make([]InstallResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		_, err := runOutput(ctx, "flatpak", "update", "-y", pkg.Name)
		res := InstallResult{Package: pkg.Name, Success: err == nil}
		if err != nil {
			res.Message = "flatpak update failed"
		}
		results = append(results, res)
	}
	return results, nil
}

// CheckUpdates lists applications with pending updates.
func (f *Flatpak) CheckUpdates(ctx context.Context) ([]Package, error) {
	out, err := runOutput(ctx, "flatpak", "remote-ls", "--updates", "--columns=application,version")
	if err != nil {
		return nil, nil
	}

	var updates []Package
	for _, line := range strings.Split(out, "\n") {
		cols := strings.Split(line, "\t")
		if len(cols) >= 2 && cols[0] != "" {
			updates = append(updates, Package{Name: strings.TrimSpace(cols[0]), Version: strings.TrimSpace(cols[1]), Installed: true})
		}
	}
	return updates, nil
}
