package cmd

import (
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell <id|index|name> [-- <command>...]",
	Short: "Open an interactive shell inside a sandbox",
	Long: `Enters the namespaces of a running sandbox with the terminal attached.

Without a command the configured default command is started.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(cmd *cobra.Command, args []string) error {
	mgr, err := manager()
	if err != nil {
		return err
	}
	return mgr.Shell(cmd.Context(), args[0], args[1:])
}
