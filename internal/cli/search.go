// internal/cli/search.go
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search for packages across all backends",
	Long: `Search every available backend concurrently and print the
results grouped by backend.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := strings.Join(args, " ")

	router, err := newRouter()
	if err != nil {
		return fmt.Errorf("initializing backends: %w", err)
	}

	renderSearch(router.SearchAll(ctx, query))
	return nil
}
