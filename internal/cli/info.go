// internal/cli/info.go
package cli

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [package]",
	Short: "Show information about a package",
	Long:  `Display detailed information about a package from every backend that carries it.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]

	router, err := newRouter()
	if err != nil {
		return fmt.Errorf("initializing backends: %w", err)
	}

	groups := router.InfoAll(ctx, name)
	if len(groups) == 0 {
		pterm.Info.Printf("No package named %s found\n", name)
		return nil
	}

	for _, group := range groups {
		for _, pkg := range group.Packages {
			renderInfo(group.ID, pkg)
		}
	}
	return nil
}
