// internal/cli/list.go
package cli

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/zap-pm/zap/pkg/backend"
)

var listInstalled bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available backends",
	Long: `List the package manager backends available on this system.
With --installed, list the packages each backend has installed instead.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listInstalled, "installed", false, "list installed packages per backend")
}

func runList(cmd *cobra.Command, args []string) error {
	available := backend.Detect()

	if !listInstalled {
		fmt.Println("Available backends:")
		for _, id := range available {
			fmt.Printf("  %s\n", id)
		}
		fmt.Printf("\nRegistered backends: %v\n", backend.Registered())
		return nil
	}

	router, err := newRouter()
	if err != nil {
		return fmt.Errorf("initializing backends: %w", err)
	}

	for _, id := range router.IDs() {
		pm, ok := router.Backend(id)
		if !ok {
			continue
		}
		pkgs, err := pm.ListInstalled()
		if err != nil || len(pkgs) == 0 {
			continue
		}

		pterm.DefaultSection.Println(id)
		for _, pkg := range pkgs {
			if pkg.Version != "" {
				fmt.Printf("  %s %s\n", pkg.Name, pkg.Version)
			} else {
				fmt.Printf("  %s\n", pkg.Name)
			}
		}
	}
	return nil
}
