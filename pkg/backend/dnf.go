// pkg/backend/dnf.go
package backend

import (
	"context"
	"strings"

	"github.com/zap-pm/zap/pkg/sudo"
)

func init() {
	Register("dnf", func(opts Options) (PackageManager, error) {
		return NewDnf(opts)
	})
}

// Dnf drives the Fedora/RHEL package manager.
type Dnf struct {
	maxResults int
	elevate    *sudo.Executor
}

// NewDnf creates the dnf backend.
func NewDnf(opts Options) (*Dnf, error) {
	if err := requireTool("dnf init", "dnf"); err != nil {
		return nil, err
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 30
	}
	return &Dnf{maxResults: maxResults, elevate: sudo.Default}, nil
}

func (d *Dnf) Name() string { return "DNF" }
func (d *Dnf) ID() string   { return "dnf" }

// Search parses dnf search ("name.arch : summary" lines).
func (d *Dnf) Search(ctx context.Context, query string) ([]Package, error) {
	if len(query) < 2 {
		return nil, nil
	}

	out, err := runOutput(ctx, "dnf", "search", query)
	if err != nil {
		return nil, nil
	}

	var pkgs []Package
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "=") || strings.TrimSpace(line) == "" {
			continue
		}
		nameArch, desc, ok := strings.Cut(line, " : ")
		if !ok {
			continue
		}
		name := strings.TrimSuffix(nameArch, ".x86_64")
		name = strings.TrimSuffix(name, ".noarch")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		pkg := Package{Name: name, Description: strings.TrimSpace(desc)}
		pkg.Installed, _ = d.IsInstalled(pkg.Name)
		pkgs = append(pkgs, pkg)
		if len(pkgs) >= d.maxResults {
			break
		}
	}
	return pkgs, nil
}

// Info parses dnf info key: value output per name.
func (d *Dnf) Info(ctx context.Context, names []string) ([]Package, error) {
	var results []Package
	for _, name := range names {
		out, err := runOutput(ctx, "dnf", "info", name)
		if err != nil {
			continue
		}

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
				if pkg.Name == "" {
					pkg.Name = value
				}
			case "Version":
				if pkg.Version == "" {
					pkg.Version = value
				}
			case "Summary":
				if pkg.Description == "" {
					pkg.Description = value
				}
			case "URL":
				pkg.URL = value
			case "License":
				pkg.Extra.License = []string{value}
			}
		}
		if pkg.Name != "" {
			pkg.Installed, _ = d.IsInstalled(pkg.Name)
			results = append(results, pkg)
		}
	}
	return results, nil
}

// Install runs one batched dnf install.
func (d *Dnf) Install(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	if len(pkgs) == 0 {
		return nil, nil
	}

	argv := []string{"dnf", "install", "-y"}
	for _, pkg := range pkgs {
		argv = append(argv, pkg.Name)
	}

	err := d.elevate.Run(ctx, argv...)
	results := make([]InstallResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		res := InstallResult{Package: pkg.Name, Success: err == nil}
		if err != nil {
			res.Message = "dnf install failed"
		}
		results = append(results, res)
	}
	return results, nil
}

// IsInstalled queries the rpm database.
func (d *Dnf) IsInstalled(name string) (bool, error) {
	return commandSucceeds("rpm", "-q", name), nil
}

// ListInstalled queries the rpm database.
func (d *Dnf) ListInstalled() ([]InstalledPackage, error) {
	out, err := runOutput(context.Background(), "rpm", "-qa", "--queryformat", "%{NAME} %{VERSION}\n")
	if err != nil {
		return nil, nil
	}
	return parseNameVersionLines(out), nil
}

// Update reinstalls through the batched install path.
func (d *Dnf) Update(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	return d.Install(ctx, pkgs)
}

// CheckUpdates parses dnf check-update ("name.arch version repo").
func (d *Dnf) CheckUpdates(ctx context.Context) ([]Package, error) {
	// Exit code 100 means updates are available, so the error is
	// ignored and the output parsed regardless.
	out, _ := runOutput(ctx, "dnf", "check-update")

	var updates []Package
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 3 || !strings.Contains(fields[0], ".") {
			continue
		}
		name := fields[0][:strings.LastIndex(fields[0], ".")]
		updates = append(updates, Package{Name: name, Version: fields[1], Installed: true})
	}
	return updates, nil
}
