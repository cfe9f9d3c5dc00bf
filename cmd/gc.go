package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/sandbox"
)

var gcForce bool

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Garbage collect orphaned address blocks",
	Long: `Reconciles the address pool markers with the registry.

Without --force, prints what would be changed (dry run).
With --force, releases orphaned blocks and restores missing markers.

Detects:
  - Orphaned blocks: claimed markers that no registered sandbox owns
  - Missing markers: registered sandboxes whose block marker is gone`,
	Args: cobra.NoArgs,
	RunE: runGC,
}

func init() {
	gcCmd.Flags().BoolVar(&gcForce, "force", false, "Actually release and restore markers (default is dry run)")
	rootCmd.AddCommand(gcCmd)
}

func runGC(cmd *cobra.Command, args []string) error {
	mgr, err := manager()
	if err != nil {
		return err
	}

	report, err := mgr.CollectGarbage(cmd.Context(), !gcForce)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), report, func(w io.Writer) error {
		if report.Empty() {
			logInfo("No orphaned resources found")
			return nil
		}
		printGCReport(w, report)
		if report.DryRun {
			return nil
		}
		logSuccess("Garbage collection complete")
		return nil
	})
}

func printGCReport(w io.Writer, report *sandbox.GCReport) {
	if report.DryRun {
		fmt.Fprintln(w, "Dry run (use --force to actually clean up):")
		fmt.Fprintln(w)
	}

	if len(report.Orphans) > 0 {
		fmt.Fprintln(w, "Orphaned blocks (no matching sandbox):")
		for _, o := range report.Orphans {
			if o.Label != "" {
				fmt.Fprintf(w, "  %d (claimed by %s)\n", o.Block, o.Label)
			} else {
				fmt.Fprintf(w, "  %d\n", o.Block)
			}
		}
		fmt.Fprintln(w)
	}

	if len(report.Restored) > 0 {
		fmt.Fprintln(w, "Sandboxes with a missing block marker:")
		for _, sb := range report.Restored {
			fmt.Fprintf(w, "  %s (block %d)\n", sb.Name, sb.BlockNum)
		}
		fmt.Fprintln(w)
	}
}
