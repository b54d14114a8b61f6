// pkg/backend/detect_test.go
package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func toolSet(tools ...string) func(string) bool {
	present := map[string]bool{}
	for _, tool := range tools {
		present[tool] = true
	}
	return func(name string) bool { return present[name] }
}

func TestDetectArchSystem(t *testing.T) {
	got := detect(toolSet("pacman", "makepkg", "flatpak", "npm"))
	assert.Equal(t, []string{"pacman", "flatpak", "aur", "npm"}, got)
}

func TestDetectCommunityNeedsBuildTool(t *testing.T) {
	// pacman alone is not enough for source builds.
	got := detect(toolSet("pacman"))
	assert.Equal(t, []string{"pacman"}, got)
}

func TestDetectDebianSystem(t *testing.T) {
	got := detect(toolSet("apt-get", "snap", "pip3"))
	assert.Equal(t, []string{"apt", "snap", "pip"}, got)
}

func TestDetectNothing(t *testing.T) {
	assert.Empty(t, detect(toolSet()))
}

func TestDetectOrderIsStable(t *testing.T) {
	all := []string{"pacman", "apt-get", "dnf", "flatpak", "snap", "makepkg", "npm", "pip3", "cargo", "go"}
	got := detect(toolSet(all...))
	assert.Equal(t, detectOrder, got)
}
