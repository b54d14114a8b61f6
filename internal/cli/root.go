// internal/cli/root.go
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zap-pm/zap/pkg/config"
	"github.com/zap-pm/zap/pkg/logging"
)

var (
	cfgFile   string
	backendID string
	verbosity int
	cfg       *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "zap",
	Short: "Fast cross-backend package manager",
	Long: `zap - fast cross-backend package manager

Routes installs across system, universal and language package managers,
and builds community packages from source when nothing else carries them.`,
	Version: "0.1.0",
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/zap/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&backendID, "backend", "", "pin a single backend (pacman, apt, aur, npm, ...)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v, -vv)")

	// Add commands
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	// Override config with flags
	if backendID != "" {
		cfg.DefaultBackend = backendID
	}
	if cfg.Debug && verbosity < 1 {
		verbosity = 1
	}

	logging.SetupLogger(verbosity)
}
