// pkg/backend/npm.go
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
	Register("npm", func(opts Options) (PackageManager, error) {
		return NewNpm(opts)
	})
}

const npmRegistryURL = "https://registry.npmjs.org"

// Npm drives the npm CLI for installs and the public registry API for
// search and info.
type Npm struct {
	client     *http.Client
	maxResults int
}

// NewNpm creates the npm backend.
func NewNpm(opts Options) (*Npm, error) {
	if err := requireTool("npm init", "npm"); err != nil {
		return nil, err
	}
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 30
	}
	return &Npm{client: newHTTPClient(opts.Timeout), maxResults: maxResults}, nil
}

func (n *Npm) Name() string { return "npm" }
func (n *Npm) ID() string   { return "npm" }

type npmSearchResponse struct {
	Objects []struct {
		Package struct {
			Name        string `json:"name"`
			Version     string `json:"version"`
			Description string `json:"description"`
			Publisher   struct {
				Username string `json:"username"`
			} `json:"publisher"`
			Links struct {
				Npm      string `json:"npm"`
				Homepage string `json:"homepage"`
			} `json:"links"`
		} `json:"package"`
		Score struct {
			Final float64 `json:"final"`
		} `json:"score"`
	} `json:"objects"`
}

type npmPackumentResponse struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	DistTags    map[string]string `json:"dist-tags"`
	Homepage    string            `json:"homepage"`
	License     string            `json:"license"`
}

// Search queries the registry search endpoint.
func (n *Npm) Search(ctx context.Context, query string) ([]Package, error) {
	if len(query) < 2 {
		return nil, nil
	}

	u := fmt.Sprintf("%s/-/v1/search?text=%s&size=%d", npmRegistryURL, url.QueryEscape(query), n.maxResults)
	var resp npmSearchResponse
	if err := getJSON(ctx, n.client, u, &resp); err != nil {
		return nil, err
	}

	pkgs := make([]Package, 0, len(resp.Objects))
	for _, obj := range resp.Objects {
		homepage := obj.Package.Links.Homepage
		if homepage == "" {
			homepage = obj.Package.Links.Npm
		}
		pkgs = append(pkgs, Package{
			Name:        obj.Package.Name,
			Version:     obj.Package.Version,
			Description: obj.Package.Description,
			Popularity:  obj.Score.Final * 100,
			Maintainer:  obj.Package.Publisher.Username,
			URL:         homepage,
		})
	}
	return pkgs, nil
}

// Info fetches the packument for each name.
func (n *Npm) Info(ctx context.Context, names []string) ([]Package, error) {
	var results []Package
	for _, name := range names {
		u := fmt.Sprintf("%s/%s", npmRegistryURL, strings.ReplaceAll(url.PathEscape(name), "%2F", "/"))
		var resp npmPackumentResponse
		if err := getJSON(ctx, n.client, u, &resp); err != nil {
			if errors.Is(err, ErrPackageNotFound) {
				continue
			}
			return nil, err
		}

		pkg := Package{
			Name:        resp.Name,
			Version:     resp.DistTags["latest"],
			Description: resp.Description,
			URL:         resp.Homepage,
		}
		if resp.License != "" {
			pkg.Extra.License = []string{resp.License}
		}
		pkg.Installed, _ = n.IsInstalled(pkg.Name)
		results = append(results, pkg)
	}
	return results, nil
}

// Install runs one batched global npm install.
func (n *Npm) Install(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	if len(pkgs) == 0 {
		return nil, nil
	}

	args := []string{"install", "-g"}
	for _, pkg := range pkgs {
		args = append(args, pkg.Name)
	}

	_, err := runOutput(ctx, "npm", args...)
	results := make([]InstallResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		res := InstallResult{Package: pkg.Name, Success: err == nil}
		if err != nil {
			res.Message = "npm install failed"
		}
		results = append(results, res)
	}
	return results, nil
}

// globalList returns the globally installed packages as a name to
// version map.
func (n *Npm) globalList() (map[string]string, error) {
	out, err := runOutput(context.Background(), "npm", "list", "-g", "--depth", "0", "--json")
	if err != nil && out == "" {
		return nil, err
	}

	var parsed struct {
		Dependencies map[string]struct {
			Version string `json:"version"`
		} `json:"dependencies"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, err
	}

	installed := make(map[string]string, len(parsed.Dependencies))
	for name, dep := range parsed.Dependencies {
		installed[name] = dep.Version
	}
	return installed, nil
}

// IsInstalled checks the global installation.
func (n *Npm) IsInstalled(name string) (bool, error) {
	installed, err := n.globalList()
	if err != nil {
		return false, nil
	}
	_, ok := installed[name]
	return ok, nil
}

// ListInstalled lists global packages.
func (n *Npm) ListInstalled() ([]InstalledPackage, error) {
	installed, err := n.globalList()
	if err != nil {
		return nil, nil
	}

	list := make([]InstalledPackage, 0, len(installed))
	for name, version := range installed {
		list = append(list, InstalledPackage{Name: name, Version: version})
	}
	return list, nil
}

// Update reinstalls through the batched install path.
func (n *Npm) Update(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	return n.Install(ctx, pkgs)
}

// CheckUpdates parses npm outdated -g --json.
func (n *Npm) CheckUpdates(ctx context.Context) ([]Package, error) {
	// npm outdated exits non-zero when anything is outdated.
	out, _ := runOutput(ctx, "npm", "outdated", "-g", "--json")
	if strings.TrimSpace(out) == "" {
		return nil, nil
	}

	var parsed map[string]struct {
		Current string `json:"current"`
		Latest  string `json:"latest"`
	}
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, nil
	}

	var updates []Package
	for name, entry := range parsed {
		if entry.Current != entry.Latest {
			updates = append(updates, Package{Name: name, Version: entry.Latest, Installed: true})
		}
	}
	return updates, nil
}
