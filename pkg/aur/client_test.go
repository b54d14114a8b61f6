// pkg/aur/client_test.go
package aur

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registryServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, srv.URL, 5*time.Second)
}

func TestClientSearch(t *testing.T) {
	_, client := registryServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/htop-vim", r.URL.Path)
		assert.Equal(t, "name", r.URL.Query().Get("by"))
		assert.Contains(t, r.Header.Get("User-Agent"), "zap/")

		w.Write([]byte(`{
			"type": "search",
			"resultcount": 1,
			"results": [{
				"ID": 717,
				"Name": "htop-vim",
				"Version": "3.2.2-1",
				"Description": "htop with vim keybindings",
				"NumVotes": 42,
				"Popularity": 1.5,
				"Maintainer": "someone",
				"URLPath": "/cgit/aur.git/snapshot/htop-vim.tar.gz",
				"License": ["GPL"]
			}]
		}`))
	})

	pkgs, err := client.Search(context.Background(), "htop-vim", "name")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	pkg := pkgs[0]
	assert.Equal(t, "htop-vim", pkg.Name)
	assert.Equal(t, "3.2.2-1", pkg.Version)
	assert.Equal(t, uint64(717), pkg.Extra.AurID)
	assert.Equal(t, uint32(42), pkg.Extra.AurVotes)
	assert.Equal(t, 1.5, pkg.Popularity)
	assert.Equal(t, "/cgit/aur.git/snapshot/htop-vim.tar.gz", pkg.Extra.AurURLPath)
}

func TestClientSearchRegistryError(t *testing.T) {
	_, client := registryServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"type": "error", "resultcount": 0, "results": [], "error": "Too many package results."}`))
	})

	_, err := client.Search(context.Background(), "a", "name-desc")
	require.Error(t, err)

	var regErr RegistryError
	require.ErrorAs(t, err, &regErr)
	assert.Contains(t, regErr.Error(), "Too many package results")
}

func TestClientInfoBatch(t *testing.T) {
	_, client := registryServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/info", r.URL.Path)
		assert.Equal(t, []string{"htop-vim", "paru"}, r.URL.Query()["arg[]"])

		w.Write([]byte(`{
			"type": "multiinfo",
			"resultcount": 2,
			"results": [
				{"Name": "htop-vim", "Version": "3.2.2-1"},
				{"Name": "paru", "Version": "2.0.3-1"}
			]
		}`))
	})

	pkgs, err := client.Info(context.Background(), []string{"htop-vim", "paru"})
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	assert.Equal(t, "paru", pkgs[1].Name)
}

func TestClientInfoNoNames(t *testing.T) {
	client := NewClient("http://unreachable.invalid", "http://unreachable.invalid", time.Second)

	pkgs, err := client.Info(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, pkgs)
}

func TestClientDownloadSnapshot(t *testing.T) {
	_, client := registryServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cgit/aur.git/snapshot/htop-vim.tar.gz", r.URL.Path)
		w.Write([]byte("archive-bytes"))
	})

	data, err := client.DownloadSnapshot(context.Background(), "/cgit/aur.git/snapshot/htop-vim.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, []byte("archive-bytes"), data)
}

func TestClientDownloadSnapshotEmptyPath(t *testing.T) {
	client := NewClient("http://unreachable.invalid", "http://unreachable.invalid", time.Second)

	_, err := client.DownloadSnapshot(context.Background(), "")
	assert.Error(t, err)
}

func TestClientHTTPErrorStatus(t *testing.T) {
	_, client := registryServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "backend down", http.StatusBadGateway)
	})

	_, err := client.Search(context.Background(), "anything", "name")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
