package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/logging"
)

var (
	verbose      bool
	jsonOutput   bool
	configDir    string
	stateDir     string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "forage-ns",
	Short: "Namespace sandbox lifecycle and address pool manager",
	Long: `forage-ns creates, tracks and tears down lightweight process sandboxes.

Each sandbox is a supervised process with:
  - Its own /30 address block from a shared pool
  - A workspace directory
  - A persistent registry entry (index, name, pid, network)
  - Command execution by entering its namespaces with nsenter`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbose, jsonOutput, cmd.ErrOrStderr())
		return validateOutputFormat(outputFormat)
	},
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && !errors.IsSilent(err) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", config.DefaultConfigDir, "Directory holding config.toml")
	rootCmd.PersistentFlags().StringVar(&stateDir, "state-dir", "", "Override the configured state directory")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatTable, "Output format: table, json or yaml")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// Helper aliases for user-facing output (delegates to logging package)
var (
	logInfo    = logging.UserInfo
	logSuccess = logging.UserSuccess
	logWarning = logging.UserWarning
)
