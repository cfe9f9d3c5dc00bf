package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var auditLogCmd = &cobra.Command{
	Use:   "audit-log <id|index|name|correlation-id>",
	Short: "Display the audit trail for a sandbox",
	Long: `Prints the lifecycle events recorded for a sandbox.

The trail outlives the sandbox: deleted sandboxes are found by id, name or
correlation id.`,
	Args: cobra.ExactArgs(1),
	RunE: runAuditLog,
}

var auditLogJSON bool

func init() {
	auditLogCmd.Flags().BoolVar(&auditLogJSON, "jsonl", false, "Output events as JSON lines")
	rootCmd.AddCommand(auditLogCmd)
}

func runAuditLog(cmd *cobra.Command, args []string) error {
	ref := args[0]

	mgr, err := manager()
	if err != nil {
		return err
	}

	// A registered sandbox wins; otherwise search the logs of deleted ones.
	id := ref
	if sb, ok, err := mgr.Get(cmd.Context(), ref); err != nil {
		return err
	} else if ok {
		id = sb.ID
	} else if found, ok := mgr.Audit().Find(ref); ok {
		id = found
	}

	events, err := mgr.Audit().Events(id)
	if err != nil {
		return fmt.Errorf("failed to read audit log: %w", err)
	}

	if len(events) == 0 {
		logInfo("No events found for sandbox %s", ref)
		return nil
	}

	out := cmd.OutOrStdout()
	if outputFormat != formatTable {
		return render(out, events, nil)
	}

	for _, e := range events {
		if auditLogJSON {
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("failed to marshal event: %w", err)
			}
			fmt.Fprintln(out, string(data))
			continue
		}

		ts := e.Timestamp.Local().Format("2006-01-02 15:04:05")
		if e.Details != "" {
			fmt.Fprintf(out, "[%s] %-8s %s (%s)\n", ts, e.Type, e.Name, e.Details)
		} else {
			fmt.Fprintf(out, "[%s] %-8s %s\n", ts, e.Type, e.Name)
		}
	}

	return nil
}
