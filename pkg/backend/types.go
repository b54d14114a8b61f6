// pkg/backend/types.go
package backend

import (
	"context"
	"fmt"
)

// Package is a generic package representation that works across all
// package managers. Instances are transient: a backend's parse step
// creates them from CLI output or an API payload, and the router,
// resolver and build pipeline consume them.
type Package struct {
	Name        string
	Version     string
	Description string
	// Popularity is normalized to 0-100 for sorting within a single
	// backend's results. Scores from different backends are not
	// comparable.
	Popularity float64
	Installed  bool
	Maintainer string
	URL        string

	// Extra holds package-manager specific metadata.
	Extra PackageExtra
}

// PackageExtra is the open metadata bag attached to a Package.
type PackageExtra struct {
	// Community registry (AUR) fields.
	AurID      uint64
	AurVotes   uint32
	AurURLPath string // relative snapshot fetch path; empty means not buildable
	OutOfDate  int64  // unix timestamp, 0 if current

	// Depends holds raw dependency tokens as declared by the source;
	// they may still carry version-constraint operators until cleaned.
	Depends []string
	License []string
}

// NewPackage creates a package with just a name and version.
func NewPackage(name, version string) Package {
	return Package{Name: name, Version: version}
}

func (p Package) String() string {
	return fmt.Sprintf("%s %s", p.Name, p.Version)
}

// InstallResult is the terminal outcome for one requested package.
type InstallResult struct {
	Package string
	Success bool
	Message string
}

// InstalledPackage is one entry of a ListInstalled result.
type InstalledPackage struct {
	Name    string
	Version string
}

// PackageManager is the uniform capability interface implemented once
// per native backend.
type PackageManager interface {
	// Name returns the human-readable name (e.g. "AUR", "APT").
	Name() string

	// ID returns the short lowercase identifier (e.g. "aur", "apt").
	ID() string

	// Search returns packages matching a query.
	Search(ctx context.Context, query string) ([]Package, error)

	// Info returns detailed records for specific package names.
	Info(ctx context.Context, names []string) ([]Package, error)

	// Install installs a batch of packages, one result per package.
	Install(ctx context.Context, pkgs []Package) ([]InstallResult, error)

	// IsInstalled reports whether a package is installed locally.
	IsInstalled(name string) (bool, error)

	// ListInstalled returns (name, version) pairs this manager handles.
	ListInstalled() ([]InstalledPackage, error)

	// Update upgrades packages. Most backends treat this as a reinstall.
	Update(ctx context.Context, pkgs []Package) ([]InstallResult, error)

	// CheckUpdates returns installed packages with newer versions available.
	CheckUpdates(ctx context.Context) ([]Package, error)
}

// Backend tiers, used by the router to build candidate orderings.
var (
	// SystemIDs are native system package managers in priority order.
	// The primary manager of the running system must come before the
	// community backend so main-repo packages are never built from
	// source.
	SystemIDs = []string{"pacman", "apt", "dnf", "zypper", "pkg", "brew", "winget", "scoop", "choco"}

	// UniversalIDs are cross-distribution package managers.
	UniversalIDs = []string{"flatpak", "snap"}

	// LanguageIDs are language ecosystem package managers.
	LanguageIDs = []string{"npm", "pip", "cargo", "go"}
)

// CommunityID is the source-build community registry backend.
const CommunityID = "aur"
