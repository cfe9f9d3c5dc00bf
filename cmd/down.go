package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/logging"
)

var downCmd = &cobra.Command{
	Use:     "delete <id|index|name>",
	Aliases: []string{"down"},
	Short:   "Stop and remove a sandbox",
	Long: `Terminates the sandbox process, releases its address block and removes
it from the registry. The workspace directory is left in place.`,
	Args: cobra.ExactArgs(1),
	RunE: runDown,
}

func init() {
	rootCmd.AddCommand(downCmd)
}

func runDown(cmd *cobra.Command, args []string) error {
	ref := args[0]

	mgr, err := manager()
	if err != nil {
		return err
	}

	logging.Debug("removing sandbox", "ref", ref)

	sb, ok, err := mgr.Delete(cmd.Context(), ref)
	if err != nil {
		return err
	}
	if !ok {
		return errors.SandboxNotFound(ref)
	}

	return render(cmd.OutOrStdout(), sb, func(w io.Writer) error {
		logSuccess("Removed sandbox %s", sb.Name)
		fmt.Fprintf(w, "  Released block %d (%s)\n", sb.BlockNum, sb.Network.SandboxIP)
		return nil
	})
}
