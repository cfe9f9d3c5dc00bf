package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove sandboxes whose process has exited",
	Long: `Checks every registered sandbox and removes those whose recorded process
no longer exists, releasing their address blocks.

Sandboxes that never recorded a pid are kept.`,
	Args: cobra.NoArgs,
	RunE: runCleanup,
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	mgr, err := manager()
	if err != nil {
		return err
	}

	report, err := mgr.Cleanup(cmd.Context())
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), report, func(w io.Writer) error {
		if len(report.Removed) == 0 {
			logInfo("Checked %d sandboxes, nothing to clean up", report.Checked)
			return nil
		}
		for _, sb := range report.Removed {
			fmt.Fprintf(w, "  removed %s (index %d, pid %d)\n", sb.Name, sb.Index, sb.PID)
		}
		logSuccess("Removed %d of %d sandboxes", len(report.Removed), report.Checked)
		return nil
	})
}
