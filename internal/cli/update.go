// internal/cli/update.go
package cli

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var updateCheckOnly bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update installed packages",
	Long: `Check every backend for outdated packages and update them.
With --check, report what is outdated without changing anything.`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().BoolVar(&updateCheckOnly, "check", false, "only report available updates")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	router, err := newRouter()
	if err != nil {
		return fmt.Errorf("initializing backends: %w", err)
	}

	if updateCheckOnly {
		found := false
		for _, id := range router.IDs() {
			pm, ok := router.Backend(id)
			if !ok {
				continue
			}
			updates, err := pm.CheckUpdates(ctx)
			if err != nil || len(updates) == 0 {
				continue
			}
			found = true
			pterm.DefaultSection.Println(id)
			for _, pkg := range updates {
				fmt.Printf("  %s -> %s\n", pkg.Name, pkg.Version)
			}
		}
		if !found {
			pterm.Success.Println("Everything is up to date")
		}
		return nil
	}

	results := router.UpdateAll(ctx)
	if len(results) == 0 {
		pterm.Success.Println("Everything is up to date")
		return nil
	}
	return renderResults(results)
}
