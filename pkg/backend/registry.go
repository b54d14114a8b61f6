// pkg/backend/registry.go
package backend

import (
	"fmt"
	"sort"
	"time"
)

// Options carries the shared construction parameters for backends.
// Fields irrelevant to a given backend are ignored by it.
type Options struct {
	// RegistryURL is the community registry RPC endpoint.
	RegistryURL string

	// SnapshotBaseURL is the host serving source snapshot archives.
	SnapshotBaseURL string

	// BuildDir is the scratch root for source builds.
	BuildDir string

	// Timeout bounds network operations.
	Timeout time.Duration

	// MaxResults caps search results.
	MaxResults int
}

// Constructor builds a backend from shared options.
type Constructor func(opts Options) (PackageManager, error)

var constructors = map[string]Constructor{}

// Register adds a backend constructor under an id. Implementations
// register themselves from init; a duplicate id panics early.
func Register(id string, ctor Constructor) {
	if _, dup := constructors[id]; dup {
		panic(fmt.Sprintf("backend: duplicate registration for %q", id))
	}
	constructors[id] = ctor
}

// New constructs the backend registered under id.
func New(id string, opts Options) (PackageManager, error) {
	ctor, ok := constructors[id]
	if !ok {
		return nil, &Error{Op: "new backend", Package: id, Err: ErrUnknownBackend}
	}
	return ctor(opts)
}

// Registered returns all registered ids, sorted.
func Registered() []string {
	ids := make([]string, 0, len(constructors))
	for id := range constructors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
