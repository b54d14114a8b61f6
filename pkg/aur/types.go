// pkg/aur/types.go
package aur

import (
	"github.com/zap-pm/zap/pkg/backend"
)

// rpcPackage is one record of the registry's RPC v5 wire format. The
// search and batch-info endpoints share this shape.
type rpcPackage struct {
	ID          uint64   `json:"ID"`
	Name        string   `json:"Name"`
	Description string   `json:"Description"`
	Version     string   `json:"Version"`
	NumVotes    uint32   `json:"NumVotes"`
	Popularity  float64  `json:"Popularity"`
	Maintainer  string   `json:"Maintainer"`
	URL         string   `json:"URL"`
	URLPath     string   `json:"URLPath"`
	OutOfDate   int64    `json:"OutOfDate"`
	Depends     []string `json:"Depends"`
	License     []string `json:"License"`
}

// rpcResponse is the envelope of every RPC endpoint. The registry may
// return a top-level error string (e.g. rate limiting) instead of
// results.
type rpcResponse struct {
	Type        string       `json:"type"`
	ResultCount int          `json:"resultcount"`
	Results     []rpcPackage `json:"results"`
	Error       string       `json:"error"`
}

func (p rpcPackage) toPackage() backend.Package {
	return backend.Package{
		Name:        p.Name,
		Version:     p.Version,
		Description: p.Description,
		Popularity:  p.Popularity,
		Maintainer:  p.Maintainer,
		URL:         p.URL,
		Extra: backend.PackageExtra{
			AurID:      p.ID,
			AurVotes:   p.NumVotes,
			AurURLPath: p.URLPath,
			OutOfDate:  p.OutOfDate,
			Depends:    p.Depends,
			License:    p.License,
		},
	}
}

// RegistryError is an error string returned by the registry itself.
type RegistryError string

func (e RegistryError) Error() string {
	return "registry error: " + string(e)
}
