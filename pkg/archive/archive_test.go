// pkg/archive/archive_test.go
package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

type tarEntry struct {
	name string
	body string
	dir  bool
	link string
}

func buildTar(t *testing.T, entries []tarEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, entry := range entries {
		switch {
		case entry.dir:
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name:     entry.name,
				Typeflag: tar.TypeDir,
				Mode:     0o755,
			}))
		case entry.link != "":
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name:     entry.name,
				Typeflag: tar.TypeSymlink,
				Linkname: entry.link,
				Mode:     0o777,
			}))
		default:
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name:     entry.name,
				Typeflag: tar.TypeReg,
				Mode:     0o644,
				Size:     int64(len(entry.body)),
			}))
			_, err := tw.Write([]byte(entry.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func gzipCompress(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func snapshotData(t *testing.T) []byte {
	return gzipCompress(t, buildTar(t, []tarEntry{
		{name: "pkg/", dir: true},
		{name: "pkg/PKGBUILD", body: "pkgname=demo\ndepends=('ncurses')\n"},
		{name: "pkg/install.sh", body: "#!/bin/sh\n"},
	}))
}

func TestExtractGzipTar(t *testing.T) {
	dest := t.TempDir()
	require.NoError(t, Extract(snapshotData(t), dest))

	data, err := os.ReadFile(filepath.Join(dest, "pkg", "PKGBUILD"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "pkgname=demo")
}

func TestExtractXzTar(t *testing.T) {
	tarData := buildTar(t, []tarEntry{{name: "file.txt", body: "xz payload"}})

	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = xw.Write(tarData)
	require.NoError(t, err)
	require.NoError(t, xw.Close())

	dest := t.TempDir()
	require.NoError(t, Extract(buf.Bytes(), dest))

	data, err := os.ReadFile(filepath.Join(dest, "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "xz payload", string(data))
}

func TestExtractZstdTar(t *testing.T) {
	tarData := buildTar(t, []tarEntry{{name: "file.txt", body: "zstd payload"}})

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write(tarData)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	dest := t.TempDir()
	require.NoError(t, Extract(buf.Bytes(), dest))

	data, err := os.ReadFile(filepath.Join(dest, "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "zstd payload", string(data))
}

func TestExtractSymlink(t *testing.T) {
	archive := gzipCompress(t, buildTar(t, []tarEntry{
		{name: "real.txt", body: "target"},
		{name: "alias.txt", link: "real.txt"},
	}))

	dest := t.TempDir()
	require.NoError(t, Extract(archive, dest))

	link, err := os.Readlink(filepath.Join(dest, "alias.txt"))
	require.NoError(t, err)
	assert.Equal(t, "real.txt", link)
}

func TestExtractFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.tar.gz")
	require.NoError(t, os.WriteFile(path, snapshotData(t), 0o644))

	dest := t.TempDir()
	require.NoError(t, ExtractFile(path, dest))

	_, err := os.Stat(filepath.Join(dest, "pkg", "install.sh"))
	assert.NoError(t, err)
}

func TestExtractRejectsPathEscape(t *testing.T) {
	archive := gzipCompress(t, buildTar(t, []tarEntry{
		{name: "../evil.txt", body: "outside"},
	}))

	dest := t.TempDir()
	err := Extract(archive, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes destination")
}

func TestExtractUnknownFormat(t *testing.T) {
	err := Extract([]byte("plain text, not an archive"), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized archive format")
}
