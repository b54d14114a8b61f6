// pkg/multi/classify.go
package multi

import "strings"

// PackageType is the coarse ecosystem hint derived from a bare package
// name. It is a derived value, never stored.
type PackageType int

const (
	// TypeSystem is a native system package.
	TypeSystem PackageType = iota
	// TypeNpm is an npm package.
	TypeNpm
	// TypePip is a Python package.
	TypePip
	// TypeCargo is a Rust crate.
	TypeCargo
	// TypeGo is a Go module path.
	TypeGo
	// TypeUnknown means every backend tier is a candidate.
	TypeUnknown
)

func (t PackageType) String() string {
	switch t {
	case TypeSystem:
		return "system"
	case TypeNpm:
		return "npm"
	case TypePip:
		return "pip"
	case TypeCargo:
		return "cargo"
	case TypeGo:
		return "go"
	default:
		return "unknown"
	}
}

// goModulePrefixes are hosts whose paths identify Go modules.
var goModulePrefixes = []string{"github.com/", "golang.org/", "gopkg.in/"}

// Classify maps a bare package name to its likely ecosystem. It is
// deterministic, total, and does no I/O.
func Classify(name string) PackageType {
	// Scoped registry names are unambiguous.
	if strings.HasPrefix(name, "@") {
		return TypeNpm
	}

	for _, prefix := range goModulePrefixes {
		if strings.HasPrefix(name, prefix) {
			return TypeGo
		}
	}

	// A path separator without a known module prefix is most likely an
	// unscoped registry path; npm is tried first.
	if strings.Contains(name, "/") {
		return TypeNpm
	}

	return TypeUnknown
}
