package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/runtime"
)

var runtimeCmd = &cobra.Command{
	Use:   "runtime",
	Short: "Show sandbox runtime information",
	Long: `Display the tools the runtime depends on and whether they resolve.

forage-ns spawns sandboxes with the configured runtime binary and enters
them with nsenter. Both must be on PATH, and namespaces require Linux.`,
	Args: cobra.NoArgs,
	RunE: runRuntime,
}

func init() {
	rootCmd.AddCommand(runtimeCmd)
}

func runRuntime(cmd *cobra.Command, args []string) error {
	a, err := application()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Active runtime: %s\n", a.Runtime.Name())

	ns, ok := a.Runtime.(*runtime.NamespaceRuntime)
	if !ok {
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Tools:")
	for _, tool := range ns.Detect() {
		if tool.Available() {
			fmt.Fprintf(out, "  ✓ %-8s %s\n", tool.Role, tool.Path)
		} else {
			fmt.Fprintf(out, "  ✗ %-8s %s (not found)\n", tool.Role, tool.Configured)
		}
	}

	fmt.Fprintln(out)
	if err := ns.Preflight(); err != nil {
		logWarning("Preflight failed: %v", err)
		return nil
	}
	logSuccess("Preflight passed")
	return nil
}
