// pkg/backend/pip.go
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

func init() {
	Register("pip", func(opts Options) (PackageManager, error) {
		return NewPip(opts)
	})
}

const pypiURL = "https://pypi.org/pypi"

// Pip wraps pip3 installs and the PyPI JSON API.
type Pip struct {
	client     *http.Client
	maxResults int
}

// NewPip creates the pip backend.
func NewPip(opts Options) (*Pip, error) {
	if err := requireTool("pip init", "pip3"); err != nil {
		return nil, err
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 30
	}
	return &Pip{client: newHTTPClient(opts.Timeout), maxResults: maxResults}, nil
}

func (p *Pip) Name() string { return "pip" }
func (p *Pip) ID() string   { return "pip" }

type pypiProject struct {
	Info struct {
		Name        string `json:"name"`
		Version     string `json:"version"`
		Summary     string `json:"summary"`
		Author      string `json:"author"`
		HomePage    string `json:"home_page"`
		License     string `json:"license"`
		PackageURL  string `json:"package_url"`
	} `json:"info"`
}

func (p *Pip) lookup(ctx context.Context, name string) (Package, error) {
	u := fmt.Sprintf("%s/%s/json", pypiURL, url.PathEscape(name))
	var proj pypiProject
	if err := getJSON(ctx, p.client, u, &proj); err != nil {
		return Package{}, err
	}

	homepage := proj.Info.HomePage
	if homepage == "" {
		homepage = proj.Info.PackageURL
	}
	pkg := Package{
		Name:        proj.Info.Name,
		Version:     proj.Info.Version,
		Description: proj.Info.Summary,
		Maintainer:  proj.Info.Author,
		URL:         homepage,
	}
	if proj.Info.License != "" {
		pkg.Extra.License = []string{proj.Info.License}
	}
	return pkg, nil
}

// Search resolves the query as an exact project name. PyPI removed its
// XML-RPC search API, so a direct lookup is the only stable option.
func (p *Pip) Search(ctx context.Context, query string) ([]Package, error) {
	pkg, err := p.lookup(ctx, query)
	if err != nil {
		if errors.Is(err, ErrPackageNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []Package{pkg}, nil
}

// Info fetches project metadata for each name.
func (p *Pip) Info(ctx context.Context, names []string) ([]Package, error) {
	var results []Package
	for _, name := range names {
		pkg, err := p.lookup(ctx, name)
		if err != nil {
			if errors.Is(err, ErrPackageNotFound) {
				continue
			}
			return nil, err
		}
		pkg.Installed, _ = p.IsInstalled(pkg.Name)
		results = append(results, pkg)
	}
	return results, nil
}

// Install runs one batched user-scope pip install.
func (p *Pip) Install(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	if len(pkgs) == 0 {
		return nil, nil
	}

	args := []string{"install", "--user"}
	for _, pkg := range pkgs {
		args = append(args, pkg.Name)
	}

	_, err := runOutput(ctx, "pip3", args...)
	results := make([]InstallResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		res := InstallResult{Package: pkg.Name, Success: err == nil}
		if err != nil {
			res.Message = "pip install failed"
		}
		results = append(results, res)
	}
	return results, nil
}

// IsInstalled checks pip3 show.
func (p *Pip) IsInstalled(name string) (bool, error) {
	return commandSucceeds("pip3", "show", "-q", name), nil
}

// ListInstalled parses pip3 list --format=json.
func (p *Pip) ListInstalled() ([]InstalledPackage, error) {
	out, err := runOutput(context.Background(), "pip3", "list", "--user", "--format=json")
	if err != nil {
		return nil, err
	}

	var parsed []struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &parsed); err != nil {
		return nil, err
	}

	list := make([]InstalledPackage, 0, len(parsed))
	for _, entry := range parsed {
		list = append(list, InstalledPackage{Name: entry.Name, Version: entry.Version})
	}
	return list, nil
}

// Update upgrades through pip install --upgrade.
func (p *Pip) Update(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	if len(pkgs) == 0 {
		return nil, nil
	}

	args := []string{"install", "--user", "--upgrade"}
	for _, pkg := range pkgs {
		args = append(args, pkg.Name)
	}

	_, err := runOutput(ctx, "pip3", args...)
	results := make([]InstallResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		res := InstallResult{Package: pkg.Name, Success: err == nil}
		if err != nil {
			res.Message = "pip upgrade failed"
		}
		results = append(results, res)
	}
	return results, nil
}

// CheckUpdates parses pip3 list --outdated --format=json.
func (p *Pip) CheckUpdates(ctx context.Context) ([]Package, error) {
	out, err := runOutput(ctx, "pip3", "list", "--user", "--outdated", "--format=json")
	if err != nil {
		return nil, nil
	}

	var parsed []struct {
		Name          string `json:"name"`
		LatestVersion string `json:"latest_version"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &parsed); err != nil {
		return nil, nil
	}

	var updates []Package
	for _, entry := range parsed {
		updates = append(updates, Package{Name: entry.Name, Version: entry.LatestVersion, Installed: true})
	}
	return updates, nil
}
