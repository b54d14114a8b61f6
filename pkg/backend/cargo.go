// pkg/backend/cargo.go
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

func init() {
	Register("cargo", func(opts Options) (PackageManager, error) {
		return NewCargo(opts)
	})
}

const cratesURL = "https://crates.io/api/v1/crates"

// Cargo wraps cargo install and the crates.io API.
type Cargo struct {
	client     *http.Client
	maxResults int
}

// NewCargo creates the cargo backend.
func NewCargo(opts Options) (*Cargo, error) {
	if err := requireTool("cargo init", "cargo"); err != nil {
		return nil, err
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 30
	}
	return &Cargo{client: newHTTPClient(opts.Timeout), maxResults: maxResults}, nil
}

func (c *Cargo) Name() string { return "cargo" }
func (c *Cargo) ID() string   { return "cargo" }

type crateInfo struct {
	Name        string  `json:"name"`
	MaxVersion  string  `json:"max_version"`
	Description string  `json:"description"`
	Downloads   float64 `json:"downloads"`
	Homepage    string  `json:"homepage"`
	Repository  string  `json:"repository"`
}

func crateToPackage(crate crateInfo) Package {
	homepage := crate.Homepage
	if homepage == "" {
		homepage = crate.Repository
	}
	return Package{
		Name:        crate.Name,
		Version:     crate.MaxVersion,
		Description: crate.Description,
		Popularity:  crate.Downloads,
		URL:         homepage,
	}
}

// Search queries the crates.io search endpoint.
func (c *Cargo) Search(ctx context.Context, query string) ([]Package, error) {
	u := fmt.Sprintf("%s?q=%s&per_page=%d", cratesURL, url.QueryEscape(query), c.maxResults)
	var resp struct {
		Crates []crateInfo `json:"crates"`
	}
	if err := getJSON(ctx, c.client, u, &resp); err != nil {
		return nil, err
	}

	pkgs := make([]Package, 0, len(resp.Crates))
	for _, crate := range resp.Crates {
		pkgs = append(pkgs, crateToPackage(crate))
	}
	return pkgs, nil
}

// Info fetches each crate's metadata.
func (c *Cargo) Info(ctx context.Context, names []string) ([]Package, error) {
	var results []Package
	for _, name := range names {
		u := fmt.Sprintf("%s/%s", cratesURL, url.PathEscape(name))
		var resp struct {
			Crate crateInfo `json:"crate"`
		}
		if err := getJSON(ctx, c.client, u, &resp); err != nil {
			if errors.Is(err, ErrPackageNotFound) {
				continue
			}
			return nil, err
		}

		pkg := crateToPackage(resp.Crate)
		pkg.Installed, _ = c.IsInstalled(pkg.Name)
		results = append(results, pkg)
	}
	return results, nil
}

// Install builds each crate with cargo install. Installs run per
// package because cargo aborts the whole invocation when one crate
// fails to compile.
func (c *Cargo) Install(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	results := make([]InstallResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		_, err := runOutput(ctx, "cargo", "install", pkg.Name)
		res := InstallResult{Package: pkg.Name, Success: err == nil}
		if err != nil {
			res.Message = "cargo install failed"
		}
		results = append(results, res)
	}
	return results, nil
}

// installedCrates parses cargo install --list.
//
// Output format:
//
//	ripgrep v14.1.0:
//	    rg
func (c *Cargo) installedCrates() (map[string]string, error) {
	out, err := runOutput(context.Background(), "cargo", "install", "--list")
	if err != nil {
		return nil, err
	}

	installed := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		if line == "" || strings.HasPrefix(line, " ") {
			continue
		}
		fields := strings.Fields(strings.TrimSuffix(line, ":"))
		if len(fields) < 2 {
			continue
		}
		installed[fields[0]] = strings.TrimPrefix(fields[1], "v")
	}
	return installed, nil
}

// IsInstalled checks the cargo install list.
func (c *Cargo) IsInstalled(name string) (bool, error) {
	installed, err := c.installedCrates()
	if err != nil {
		return false, nil
	}
	_, ok := installed[name]
	return ok, nil
}

// ListInstalled lists cargo-installed binaries.
func (c *Cargo) ListInstalled() ([]InstalledPackage, error) {
	installed, err := c.installedCrates()
	if err != nil {
		return nil, nil
	}

	list := make([]InstalledPackage, 0, len(installed))
	for name, version := range installed {
		list = append(list, InstalledPackage{Name: name, Version: version})
	}
	return list, nil
}

// Update reinstalls with --force to pick up the latest release.
func (c *Cargo) Update(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	results := make([]InstallResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		_, err := runOutput(ctx, "cargo", "install", "--force", pkg.Name)
		res := InstallResult{Package: pkg.Name, Success: err == nil}
		if err != nil {
			res.Message = "cargo install failed"
		}
		results = append(results, res)
	}
	return results, nil
}

// CheckUpdates compares installed versions against crates.io.
func (c *Cargo) CheckUpdates(ctx context.Context) ([]Package, error) {
	installed, err := c.installedCrates()
	if err != nil {
		return nil, nil
	}

	var updates []Package
	for name, version := range installed {
		u := fmt.Sprintf("%s/%s", cratesURL, url.PathEscape(name))
		var resp struct {
			Crate crateInfo `json:"crate"`
		}
		if err := getJSON(ctx, c.client, u, &resp); err != nil {
			continue
		}
		if resp.Crate.MaxVersion != "" && resp.Crate.MaxVersion != version {
			updates = append(updates, Package{Name: name, Version: resp.Crate.MaxVersion, Installed: true})
		}
	}
	return updates, nil
}
