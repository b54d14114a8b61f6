// pkg/aur/build.go
package aur

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zap-pm/zap/pkg/archive"
	"github.com/zap-pm/zap/pkg/backend"
	"github.com/zap-pm/zap/pkg/sudo"
)

// artifactSuffixes are the file extensions of built binary-package
// artifacts a build may leave in its scratch directory.
var artifactSuffixes = []string{".pkg.tar.zst", ".pkg.tar.xz"}

// BuildError reports a failed source build for a single package. It
// never aborts sibling packages in the same batch.
type BuildError struct {
	Package string
	Err     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("building %s: %v", e.Package, e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// Builder runs the download, extract, build, install pipeline for one
// community package at a time.
type Builder struct {
	client   *Client
	buildDir string
	sudo     *sudo.Executor
	log      zerolog.Logger

	// Test seams.
	runBuild        func(ctx context.Context, dir string, args ...string) error
	installArtifact func(ctx context.Context, path string) error
}

// NewBuilder creates a builder rooted at buildDir.
func NewBuilder(client *Client, buildDir string, elevate *sudo.Executor, log zerolog.Logger) *Builder {
	b := &Builder{
		client:   client,
		buildDir: buildDir,
		sudo:     elevate,
		log:      log,
	}
	b.runBuild = b.makepkg
	b.installArtifact = func(ctx context.Context, path string) error {
		return elevate.Run(ctx, "pacman", "-U", "--noconfirm", "--needed", path)
	}
	return b
}

// Install downloads, builds and installs a single package. Any failure
// is reported as a BuildError for this package only.
func (b *Builder) Install(ctx context.Context, pkg backend.Package) error {
	data, err := b.client.DownloadSnapshot(ctx, pkg.Extra.AurURLPath)
	if err != nil {
		return &BuildError{Package: pkg.Name, Err: fmt.Errorf("downloading snapshot: %w", err)}
	}

	pkgDir, err := b.extractSnapshot(pkg.Name, data)
	if err != nil {
		return &BuildError{Package: pkg.Name, Err: fmt.Errorf("extracting snapshot: %w", err)}
	}

	b.log.Info().Str("package", pkg.Name).Msg("building and installing")

	// Build, install on success, pull missing repo dependencies, and
	// skip integrity checks. Skipping the checks is a documented
	// speed/safety tradeoff inherited from the non-interactive flow.
	if err := b.runBuild(ctx, pkgDir, "-si", "--needed", "--noconfirm", "--skipinteg"); err == nil {
		return nil
	}

	// Retry building without installing build-time dependencies; the
	// resolver has already handled community ones.
	b.log.Info().Str("package", pkg.Name).Msg("retrying build without automatic dependency installation")
	if err := b.runBuild(ctx, pkgDir, "-s", "--needed", "--noconfirm", "--skipinteg"); err != nil {
		return &BuildError{Package: pkg.Name, Err: fmt.Errorf("build tool failed: %w", err)}
	}

	artifact, err := findArtifact(pkgDir)
	if err != nil {
		return &BuildError{Package: pkg.Name, Err: err}
	}

	if err := b.installArtifact(ctx, artifact); err != nil {
		return &BuildError{Package: pkg.Name, Err: fmt.Errorf("installing built artifact: %w", err)}
	}
	return nil
}

// extractSnapshot unpacks a snapshot archive into the scratch root,
// removing any stale same-named directory first.
func (b *Builder) extractSnapshot(pkgName string, data []byte) (string, error) {
	pkgDir := filepath.Join(b.buildDir, pkgName)

	if _, err := os.Stat(pkgDir); err == nil {
		if err := os.RemoveAll(pkgDir); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(b.buildDir, 0o755); err != nil {
		return "", err
	}

	if err := archive.Extract(data, b.buildDir); err != nil {
		return "", err
	}
	return pkgDir, nil
}

// makepkg invokes the native build tool in dir with the parent's
// standard streams attached.
func (b *Builder) makepkg(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "makepkg", args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// readDescriptor reads the build descriptor in dir. A missing
// descriptor is treated as "no dependencies", not an error.
func readDescriptor(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, "PKGBUILD"))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}

// findArtifact locates the binary-package artifact a build produced.
func findArtifact(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("scanning build output: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		for _, suffix := range artifactSuffixes {
			if strings.HasSuffix(entry.Name(), suffix) {
				return filepath.Join(dir, entry.Name()), nil
			}
		}
	}
	return "", fmt.Errorf("no built package artifact found in %s", dir)
}
