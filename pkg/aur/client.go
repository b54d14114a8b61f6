// pkg/aur/client.go
package aur

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zap-pm/zap/pkg/backend"
)

// Client talks to the community registry RPC and snapshot endpoints.
type Client struct {
	httpClient   *http.Client
	registryURL  string
	snapshotBase string
	userAgent    string
}

// NewClient creates a registry client with a tuned transport.
func NewClient(registryURL, snapshotBase string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    100,
				IdleConnTimeout: 90 * time.Second,
			},
		},
		registryURL:  strings.TrimRight(registryURL, "/"),
		snapshotBase: strings.TrimRight(snapshotBase, "/"),
		userAgent:    "zap/0.1.0",
	}
}

// Search queries the registry search endpoint. by selects the search
// field ("name" or "name-desc").
func (c *Client) Search(ctx context.Context, query, by string) ([]backend.Package, error) {
	u := fmt.Sprintf("%s/search/%s?by=%s", c.registryURL, url.PathEscape(query), url.QueryEscape(by))

	resp, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, RegistryError(resp.Error)
	}

	return toPackages(resp.Results), nil
}

// Info queries the batch-info endpoint with one repeated name
// parameter per package.
func (c *Client) Info(ctx context.Context, names []string) ([]backend.Package, error) {
	if len(names) == 0 {
		return nil, nil
	}

	params := url.Values{}
	for _, name := range names {
		params.Add("arg[]", name)
	}
	u := fmt.Sprintf("%s/info?%s", c.registryURL, params.Encode())

	resp, err := c.getJSON(ctx, u)
	if err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, RegistryError(resp.Error)
	}

	return toPackages(resp.Results), nil
}

// DownloadSnapshot fetches the source archive at the registry-relative
// fetch path.
func (c *Client) DownloadSnapshot(ctx context.Context, urlPath string) ([]byte, error) {
	if urlPath == "" {
		return nil, fmt.Errorf("package has no snapshot path")
	}

	body, err := c.get(ctx, c.snapshotBase+urlPath)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, url string) (*rpcResponse, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var resp rpcResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("parsing registry response: %w", err)
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	return resp.Body, nil
}

func toPackages(records []rpcPackage) []backend.Package {
	pkgs := make([]backend.Package, 0, len(records))
	for _, r := range records {
		pkgs = append(pkgs, r.toPackage())
	}
	return pkgs
}
