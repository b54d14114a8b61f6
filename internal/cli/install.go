// internal/cli/install.go
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install [package...]",
	Short: "Install one or more packages",
	Long: `Install packages, routing each one to the backend that carries it.

Names are classified first: module paths go to their language manager,
plain names walk the system tier and fall back to the community
registry when no repository carries them.

Examples:
  zap install htop
  zap install htop --backend=aur
  zap install @angular/cli github.com/junegunn/fzf ripgrep`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInstall,
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	router, err := newRouter()
	if err != nil {
		return fmt.Errorf("initializing backends: %w", err)
	}

	results := router.InstallAuto(ctx, args)
	return renderResults(results)
}
