package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/health"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/sandbox"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateOutputFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return errors.ValidationError(fmt.Sprintf("unknown output format %q: expected table, json or yaml", format))
}

// render writes v in the selected structured format, or calls table for the
// human-readable one.
func render(w io.Writer, v any, table func(w io.Writer) error) error {
	switch outputFormat {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return table(w)
	}
}

func summaryTable(sandboxes []*sandbox.Summary) func(io.Writer) error {
	return func(out io.Writer) error {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "INDEX\tNAME\tIP\tPID\tWORKSPACE\tSTATUS\tUPTIME")
		fmt.Fprintln(w, "-----\t----\t--\t---\t---------\t------\t------")
		for _, sb := range sandboxes {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
				sb.Index, sb.Name, sb.Network.SandboxIP, sb.PID, sb.Workspace,
				formatStatus(sb.Status), health.Uptime(sb.CreatedAt))
		}
		return w.Flush()
	}
}

func formatStatus(status health.Status) string {
	return status.Icon() + " " + string(status)
}
