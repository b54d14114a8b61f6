// pkg/backend/pacman.go
package backend

import (
	"context"
	"strings"

	"github.com/zap-pm/zap/pkg/sudo"
)

func init() {
	Register("pacman", func(opts Options) (PackageManager, error) {
		return NewPacman(opts)
	})
}

// Pacman drives the native Arch Linux package manager for the official
// repositories only; community packages are the aur backend's job.
type Pacman struct {
	maxResults int
	elevate    *sudo.Executor
}

// NewPacman creates the pacman backend.
func NewPacman(opts Options) (*Pacman, error) {
	if err := requireTool("pacman init", "pacman"); err != nil {
		return nil, err
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 30
	}
	return &Pacman{maxResults: maxResults, elevate: sudo.Default}, nil
}

func (p *Pacman) Name() string { return "pacman (Arch Linux)" }
func (p *Pacman) ID() string   { return "pacman" }

// Search runs pacman -Ss and parses its two-line record format.
func (p *Pacman) Search(ctx context.Context, query string) ([]Package, error) {
	if len(query) < 2 {
		return nil, nil
	}

	out, err := runOutput(ctx, "pacman", "-Ss", query)
	if err != nil {
		// pacman exits non-zero on no matches.
		return nil, nil
	}

	pkgs := parsePacmanSearch(out)
	if len(pkgs) > p.maxResults {
		pkgs = pkgs[:p.maxResults]
	}
	for i := range pkgs {
		installed, _ := p.IsInstalled(pkgs[i].Name)
		pkgs[i].Installed = installed
	}
	return pkgs, nil
}

// parsePacmanSearch parses "repo/name version" header lines followed
// by indented description lines.
func parsePacmanSearch(out string) []Package {
	var pkgs []Package
	var current *Package

	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "    ") {
			if current != nil {
				current.Description += strings.TrimSpace(line)
			}
			continue
		}
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		_, name, ok := strings.Cut(fields[0], "/")
		if !ok {
			continue
		}
		pkgs = append(pkgs, Package{Name: name, Version: fields[1]})
		current = &pkgs[len(pkgs)-1]
	}
	return pkgs
}

// Info runs pacman -Si per name and parses its key: value output.
func (p *Pacman) Info(ctx context.Context, names []string) ([]Package, error) {
	var results []Package
	for _, name := range names {
		out, err := runOutput(ctx, "pacman", "-Si", name)
		if err != nil {
			continue
		}
		if pkg, ok := parsePacmanInfo(out); ok {
			pkg.Installed, _ = p.IsInstalled(pkg.Name)
			results = append(results, pkg)
		}
	}
	return results, nil
}

func parsePacmanInfo(out string) (Package, bool) {
	var pkg Package
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Name":
			pkg.Name = value
		case "Version":
			pkg.Version = value
		case "Description":
			pkg.Description = value
		case "URL":
			if value != "" && value != "None" {
				pkg.URL = value
			}
		case "Licenses":
			pkg.Extra.License = strings.Fields(value)
		case "Depends On":
			if value != "None" {
				pkg.Extra.Depends = strings.Fields(value)
			}
		}
	}
	return pkg, pkg.Name != ""
}

// Install runs one batched pacman -S for all packages.
func (p *Pacman) Install(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	if len(pkgs) == 0 {
		return nil, nil
	}

	argv := []string{"pacman", "-S", "--noconfirm", "--needed"}
	for _, pkg := range pkgs {
		argv = append(argv, pkg.Name)
	}

	err := p.elevate.Run(ctx, argv...)
	results := make([]InstallResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		res := InstallResult{Package: pkg.Name, Success: err == nil}
		if err != nil {
			res.Message = "pacman install failed"
		}
		results = append(results, res)
	}
	return results, nil
}

// IsInstalled checks the local database.
func (p *Pacman) IsInstalled(name string) (bool, error) {
	return commandSucceeds("pacman", "-Q", name), nil
}

// ListInstalled returns native (repository) packages.
func (p *Pacman) ListInstalled() ([]InstalledPackage, error) {
	out, err := runOutput(context.Background(), "pacman", "-Qn")
	if err != nil {
		return nil, nil
	}
	return parseNameVersionLines(out), nil
}

// Update reinstalls through the same batched install path.
func (p *Pacman) Update(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	return p.Install(ctx, pkgs)
}

// CheckUpdates parses pacman -Qu ("name old -> new" lines).
func (p *Pacman) CheckUpdates(ctx context.Context) ([]Package, error) {
	out, err := runOutput(ctx, "pacman", "-Qu")
	if err != nil {
		// Non-zero exit means no updates.
		return nil, nil
	}

	var updates []Package
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 4 && fields[2] == "->" {
			updates = append(updates, Package{Name: fields[0], Version: fields[3], Installed: true})
		}
	}
	return updates, nil
}

// parseNameVersionLines parses "name version" pairs, one per line.
func parseNameVersionLines(out string) []InstalledPackage {
	var installed []InstalledPackage
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			installed = append(installed, InstalledPackage{Name: fields[0], Version: fields[1]})
		}
	}
	return installed
}
