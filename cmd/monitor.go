package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/monitor"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch sandbox status changes",
	Long: `Polls the registry and prints every status change until interrupted.

Transitions of registered sandboxes are also written to their audit log.
Exited sandboxes are reported, not removed; run cleanup for that.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

var monitorInterval time.Duration

func init() {
	monitorCmd.Flags().DurationVar(&monitorInterval, "interval", 5*time.Second, "Time between checks")
	rootCmd.AddCommand(monitorCmd)
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if monitorInterval <= 0 {
		return fmt.Errorf("--interval must be positive")
	}

	mgr, err := manager()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	m := monitor.New(monitorInterval, mgr,
		monitor.WithAuditLogger(mgr.Audit()),
		monitor.WithOnChange(func(c monitor.Change) {
			fmt.Fprintf(out, "[%s] %s\n", time.Now().Format("15:04:05"), c)
		}),
	)

	err = m.Run(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
