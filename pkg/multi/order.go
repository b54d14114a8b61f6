// pkg/multi/order.go
package multi

import (
	"github.com/zap-pm/zap/pkg/backend"
)

// candidateRules maps a package type to the backend ids to try, in
// order. The listing is a rule table, not a decision tree: building an
// order is a pure function of (type, registered ids).
//
// System names walk native managers in priority order, then universal
// managers, then the community backend; the primary manager must
// precede the community one so main-repo packages are never built from
// source. Unknown names additionally try the language ecosystems last.
var candidateRules = map[PackageType][]string{
	TypeNpm:     {"npm"},
	TypePip:     {"pip"},
	TypeCargo:   {"cargo"},
	TypeGo:      {"go"},
	TypeSystem:  systemTierOrder(),
	TypeUnknown: append(systemTierOrder(), backend.LanguageIDs...),
}

func systemTierOrder() []string {
	order := make([]string, 0, len(backend.SystemIDs)+len(backend.UniversalIDs)+1)
	order = append(order, backend.SystemIDs...)
	order = append(order, backend.UniversalIDs...)
	order = append(order, backend.CommunityID)
	return order
}

// InstallCandidates returns the ordered backend ids to query for a
// name of type t, restricted to the registered set.
func InstallCandidates(t PackageType, registered []string) []string {
	rule, ok := candidateRules[t]
	if !ok {
		rule = candidateRules[TypeUnknown]
	}

	present := make(map[string]bool, len(registered))
	for _, id := range registered {
		present[id] = true
	}

	var candidates []string
	for _, id := range rule {
		if present[id] {
			candidates = append(candidates, id)
		}
	}
	return candidates
}
