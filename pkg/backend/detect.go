// pkg/backend/detect.go
package backend

import (
	"os/exec"
)

// detectTools maps backend ids to the external program each one drives.
// The aur backend rides on pacman/makepkg; it is only usable on systems
// that carry both.
var detectTools = map[string][]string{
	"pacman":  {"pacman"},
	"apt":     {"apt-get"},
	"dnf":     {"dnf"},
	"flatpak": {"flatpak"},
	"snap":    {"snap"},
	"aur":     {"pacman", "makepkg"},
	"npm":     {"npm"},
	"pip":     {"pip3"},
	"cargo":   {"cargo"},
	"go":      {"go"},
}

// detectOrder keeps Detect output stable: system managers first, then
// universal, then the community backend, then language ecosystems.
var detectOrder = []string{"pacman", "apt", "dnf", "flatpak", "snap", "aur", "npm", "pip", "cargo", "go"}

// Detect returns the ids of all package managers whose external tools
// are present on PATH, in tier order.
func Detect() []string {
	return detect(commandExists)
}

func detect(exists func(string) bool) []string {
	var available []string
	for _, id := range detectOrder {
		ok := true
		for _, tool := range detectTools[id] {
			if !exists(tool) {
				ok = false
				break
			}
		}
		if ok {
			available = append(available, id)
		}
	}
	return available
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
