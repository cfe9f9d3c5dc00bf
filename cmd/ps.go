package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/health"
)

var psCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ps"},
	Short:   "List all sandboxes",
	Args:    cobra.NoArgs,
	RunE:    runPs,
}

func init() {
	rootCmd.AddCommand(psCmd)
}

func runPs(cmd *cobra.Command, args []string) error {
	mgr, err := manager()
	if err != nil {
		return err
	}

	sandboxes, err := mgr.List(cmd.Context())
	if err != nil {
		return err
	}

	if len(sandboxes) == 0 && outputFormat == formatTable {
		logInfo("No sandboxes found. Create one with: forage-ns create --name <name>")
		return nil
	}

	table := summaryTable(sandboxes)
	return render(cmd.OutOrStdout(), sandboxes, func(w io.Writer) error {
		if err := table(w); err != nil {
			return err
		}
		statuses := make([]health.Status, len(sandboxes))
		for i, sb := range sandboxes {
			statuses[i] = sb.Status
		}
		fmt.Fprintf(w, "\n%d sandboxes: %s\n", len(sandboxes), health.Count(statuses...))
		return nil
	})
}
