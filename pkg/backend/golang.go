// pkg/backend/golang.go
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

func init() {
	Register("go", func(opts Options) (PackageManager, error) {
		return NewGolang(opts)
	})
}

const goProxyURL = "https://proxy.golang.org"

// Golang installs Go tools with go install and resolves versions
// through the module proxy.
type Golang struct {
	client *http.Client
}

// NewGolang creates the go backend.
func NewGolang(opts Options) (*Golang, error) {
	if err := requireTool("go init", "go"); err != nil {
		return nil, err
	}
	return &Golang{client: newHTTPClient(opts.Timeout)}, nil
}

func (g *Golang) Name() string { return "go" }
func (g *Golang) ID() string   { return "go" }

// latestVersion asks the module proxy for the latest tagged version of
// a module path.
func (g *Golang) latestVersion(ctx context.Context, path string) (string, error) {
	u := fmt.Sprintf("%s/%s/@latest", goProxyURL, strings.ToLower(path))
	var resp struct {
		Version string `json:"Version"`
	}
	if err := getJSON(ctx, g.client, u, &resp); err != nil {
		return "", err
	}
	return resp.Version, nil
}

// Search resolves the query as a module path. There is no search API
// for Go modules, so a proxy lookup is the closest equivalent.
func (g *Golang) Search(ctx context.Context, query string) ([]Package, error) {
	if !strings.Contains(query, "/") {
		return nil, nil
	}

	version, err := g.latestVersion(ctx, query)
	if err != nil {
		if errors.Is(err, ErrPackageNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return []Package{{
		Name:    query,
		Version: version,
		URL:     "https://" + query,
	}}, nil
}

// Info resolves each module path through the proxy.
func (g *Golang) Info(ctx context.Context, names []string) ([]Package, error) {
	var results []Package
	for _, name := range names {
		version, err := g.latestVersion(ctx, name)
		if err != nil {
			if errors.Is(err, ErrPackageNotFound) {
				continue
			}
			return nil, err
		}

		pkg := Package{Name: name, Version: version, URL: "https://" + name}
		pkg.Installed, _ = g.IsInstalled(name)
		results = append(results, pkg)
	}
	return results, nil
}

// Install runs go install path@latest per package.
func (g *Golang) Install(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	results := make([]InstallResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		target := pkg.Name
		if !strings.Contains(target, "@") {
			target += "@latest"
		}
		_, err := runOutput(ctx, "go", "install", target)
		res := InstallResult{Package: pkg.Name, Success: err == nil}
		if err != nil {
			res.Message = "go install failed"
		}
		results = append(results, res)
	}
	return results, nil
}

// binDir resolves where go install drops binaries: GOBIN, then
// GOPATH/bin, then ~/go/bin.
func (g *Golang) binDir() string {
	if out, err := runOutput(context.Background(), "go", "env", "GOBIN"); err == nil {
		if dir := strings.TrimSpace(out); dir != "" {
			return dir
		}
	}
	if out, err := runOutput(context.Background(), "go", "env", "GOPATH"); err == nil {
		if dir := strings.TrimSpace(out); dir != "" {
			return filepath.Join(dir, "bin")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "go", "bin")
}

// IsInstalled checks for the tool's binary in the go bin directory.
// The binary name is the last element of the module path.
func (g *Golang) IsInstalled(name string) (bool, error) {
	dir := g.binDir()
	if dir == "" {
		return false, nil
	}
	binary := filepath.Base(strings.TrimSuffix(name, "/"))
	if at := strings.IndexByte(binary, '@'); at >= 0 {
		binary = binary[:at]
	}
	_, err := os.Stat(filepath.Join(dir, binary))
	return err == nil, nil
}

// ListInstalled scans the go bin directory. Versions are not tracked
// on disk, so entries carry the binary name only.
func (g *Golang) ListInstalled() ([]InstalledPackage, error) {
	dir := g.binDir()
	if dir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil
	}

	var list []InstalledPackage
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		list = append(list, InstalledPackage{Name: entry.Name()})
	}
	return list, nil
}

// Update reinstalls at the latest version.
func (g *Golang) Update(ctx context.Context, pkgs []Package) ([]InstallResult, error) {
	return g.Install(ctx, pkgs)
}

// CheckUpdates cannot map installed binaries back to module paths, so
// it reports nothing.
func (g *Golang) CheckUpdates(ctx context.Context) ([]Package, error) {
	return nil, nil
}
