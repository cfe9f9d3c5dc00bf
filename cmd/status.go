package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/health"
)

var statusCmd = &cobra.Command{
	Use:     "get <id|index|name>",
	Aliases: []string{"status"},
	Short:   "Show detailed status of a sandbox",
	Args:    cobra.ExactArgs(1),
	RunE:    runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ref := args[0]

	mgr, err := manager()
	if err != nil {
		return err
	}

	sb, ok, err := mgr.Get(cmd.Context(), ref)
	if err != nil {
		return err
	}
	if !ok {
		return errors.SandboxNotFound(ref)
	}

	return render(cmd.OutOrStdout(), sb, func(w io.Writer) error {
		fmt.Fprintf(w, "Sandbox: %s\n", sb.Name)
		fmt.Fprintf(w, "ID: %s\n", sb.ID)
		fmt.Fprintf(w, "Index: %d\n", sb.Index)
		fmt.Fprintf(w, "Workspace: %s\n", sb.Workspace)
		if sb.CorrelationID != "" {
			fmt.Fprintf(w, "Correlation ID: %s\n", sb.CorrelationID)
		}
		fmt.Fprintf(w, "Created: %s\n", sb.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintln(w)

		fmt.Fprintln(w, "Network:")
		fmt.Fprintf(w, "  Block: %d\n", sb.BlockNum)
		fmt.Fprintf(w, "  Host: %s %s/%d\n", sb.Network.HostInterface, sb.Network.HostIP, sb.Network.CIDR)
		fmt.Fprintf(w, "  Sandbox: %s %s/%d\n", sb.Network.SandboxInterface, sb.Network.SandboxIP, sb.Network.CIDR)
		fmt.Fprintln(w)

		fmt.Fprintln(w, "Process:")
		fmt.Fprintf(w, "  PID: %d\n", sb.PID)
		fmt.Fprintf(w, "  Status: %s\n", formatStatus(sb.Status))
		if sb.Status == health.StatusRunning {
			fmt.Fprintf(w, "  Uptime: %s\n", health.Uptime(sb.CreatedAt))
		}
		return nil
	})
}
