// pkg/aur/build_test.go
package aur

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zap-pm/zap/pkg/backend"
	"github.com/zap-pm/zap/pkg/sudo"
)

// snapshotArchive builds a gzipped tar holding pkgName/PKGBUILD.
func snapshotArchive(t *testing.T, pkgName, descriptor string) []byte {
	t.Helper()

	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     pkgName + "/",
		Typeflag: tar.TypeDir,
		Mode:     0o755,
	}))
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name:     pkgName + "/PKGBUILD",
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     int64(len(descriptor)),
	}))
	_, err := tw.Write([]byte(descriptor))
	require.NoError(t, err)
	require.NoError(t, tw.Close())

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err = zw.Write(tarBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func testBuilder(t *testing.T, pkgName, descriptor string) *Builder {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(snapshotArchive(t, pkgName, descriptor))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, srv.URL, 5*time.Second)
	return NewBuilder(client, t.TempDir(), sudo.NewExecutor(), zerolog.Nop())
}

func testPackage(name string) backend.Package {
	return backend.Package{
		Name:  name,
		Extra: backend.PackageExtra{AurURLPath: "/snapshot/" + name + ".tar.gz"},
	}
}

func TestBuilderInstallHappyPath(t *testing.T) {
	b := testBuilder(t, "demo", "pkgname=demo\n")

	var builtDir string
	var builtArgs []string
	b.runBuild = func(ctx context.Context, dir string, args ...string) error {
		builtDir = dir
		builtArgs = args
		return nil
	}
	b.installArtifact = func(ctx context.Context, path string) error {
		t.Fatal("the combined build+install must not fall back to a separate artifact install")
		return nil
	}

	require.NoError(t, b.Install(context.Background(), testPackage("demo")))

	// The snapshot was extracted into the scratch root first.
	_, err := os.Stat(filepath.Join(builtDir, "PKGBUILD"))
	assert.NoError(t, err)
	assert.Contains(t, builtArgs, "-si")
	assert.Contains(t, builtArgs, "--skipinteg")
}

func TestBuilderInstallRetriesWithoutDepInstall(t *testing.T) {
	b := testBuilder(t, "demo", "pkgname=demo\n")

	var calls [][]string
	b.runBuild = func(ctx context.Context, dir string, args ...string) error {
		calls = append(calls, args)
		if len(calls) == 1 {
			return errors.New("pacman dependency install refused")
		}
		// Second pass succeeds and leaves an artifact behind.
		artifact := filepath.Join(dir, "demo-1.0.0-1-x86_64.pkg.tar.zst")
		return os.WriteFile(artifact, []byte("built"), 0o644)
	}

	var installed string
	b.installArtifact = func(ctx context.Context, path string) error {
		installed = path
		return nil
	}

	require.NoError(t, b.Install(context.Background(), testPackage("demo")))

	require.Len(t, calls, 2)
	assert.Contains(t, calls[0], "-si")
	assert.Contains(t, calls[1], "-s")
	assert.NotContains(t, calls[1], "-si")
	assert.Contains(t, installed, ".pkg.tar.zst")
}

func TestBuilderInstallBuildFailure(t *testing.T) {
	b := testBuilder(t, "demo", "pkgname=demo\n")
	b.runBuild = func(ctx context.Context, dir string, args ...string) error {
		return errors.New("compile error")
	}

	err := b.Install(context.Background(), testPackage("demo"))
	require.Error(t, err)

	var buildErr *BuildError
	require.ErrorAs(t, err, &buildErr)
	assert.Equal(t, "demo", buildErr.Package)
}

func TestBuilderInstallNoArtifact(t *testing.T) {
	b := testBuilder(t, "demo", "pkgname=demo\n")

	calls := 0
	b.runBuild = func(ctx context.Context, dir string, args ...string) error {
		calls++
		if calls == 1 {
			return errors.New("first pass failed")
		}
		return nil // succeeds but produces nothing
	}

	err := b.Install(context.Background(), testPackage("demo"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no built package artifact")
}

func TestBuilderInstallMissingSnapshotPath(t *testing.T) {
	b := testBuilder(t, "demo", "pkgname=demo\n")

	err := b.Install(context.Background(), backend.Package{Name: "demo"})
	require.Error(t, err)

	var buildErr *BuildError
	assert.ErrorAs(t, err, &buildErr)
}

func TestBuilderReplacesStaleScratchDir(t *testing.T) {
	b := testBuilder(t, "demo", "pkgname=demo\ndepends=('ncurses')\n")

	// Simulate a leftover directory from an earlier run.
	stale := filepath.Join(b.buildDir, "demo")
	require.NoError(t, os.MkdirAll(stale, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "old-artifact.txt"), []byte("stale"), 0o644))

	b.runBuild = func(ctx context.Context, dir string, args ...string) error { return nil }

	require.NoError(t, b.Install(context.Background(), testPackage("demo")))

	_, err := os.Stat(filepath.Join(stale, "old-artifact.txt"))
	assert.True(t, os.IsNotExist(err))

	descriptor, err := readDescriptor(stale)
	require.NoError(t, err)
	assert.Contains(t, descriptor, "ncurses")
}

func TestReadDescriptorMissing(t *testing.T) {
	descriptor, err := readDescriptor(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, descriptor)
}
