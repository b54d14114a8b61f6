// pkg/multi/order_test.go
package multi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstallCandidatesEcosystem(t *testing.T) {
	registered := []string{"pacman", "aur", "npm", "go"}

	assert.Equal(t, []string{"npm"}, InstallCandidates(TypeNpm, registered))
	assert.Equal(t, []string{"go"}, InstallCandidates(TypeGo, registered))
	// pip is not registered, so the rule yields nothing.
	assert.Empty(t, InstallCandidates(TypePip, registered))
}

func TestInstallCandidatesUnknown(t *testing.T) {
	registered := []string{"npm", "aur", "flatpak", "pacman"}

	// Rule order wins over registration order: primary repo first,
	// universal tier next, community last, then language managers.
	got := InstallCandidates(TypeUnknown, registered)
	assert.Equal(t, []string{"pacman", "flatpak", "aur", "npm"}, got)
}

func TestInstallCandidatesSystemExcludesLanguages(t *testing.T) {
	registered := []string{"pacman", "aur", "npm", "pip", "cargo"}

	got := InstallCandidates(TypeSystem, registered)
	assert.Equal(t, []string{"pacman", "aur"}, got)
}

func TestPrimaryPrecedesCommunity(t *testing.T) {
	got := InstallCandidates(TypeUnknown, []string{"aur", "pacman"})

	var pacmanAt, aurAt int
	for i, id := range got {
		switch id {
		case "pacman":
			pacmanAt = i
		case "aur":
			aurAt = i
		}
	}
	assert.Less(t, pacmanAt, aurAt)
}
