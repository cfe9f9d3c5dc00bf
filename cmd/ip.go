package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/errors"
)

var ipCmd = &cobra.Command{
	Use:   "ip <index>",
	Short: "Print the sandbox-side address of a sandbox",
	Args:  cobra.ExactArgs(1),
	RunE:  runIP,
}

func init() {
	rootCmd.AddCommand(ipCmd)
}

func runIP(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return err
	}

	mgr, err := manager()
	if err != nil {
		return err
	}

	ip, ok, err := mgr.IPByIndex(cmd.Context(), index)
	if err != nil {
		return err
	}
	if !ok {
		return errors.SandboxNotFound(args[0])
	}

	fmt.Fprintln(cmd.OutOrStdout(), ip)
	return nil
}
