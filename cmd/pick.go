package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/sandbox"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/tui"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Interactive sandbox picker",
	Long: `Opens an interactive TUI for selecting sandboxes.

Use arrow keys or j/k to navigate, / to filter, Enter to open a shell.

Actions:
  Enter  - Open a shell in the selected sandbox
  n      - Create a new sandbox with a short wizard
  d      - Delete the selected sandbox
  q/Esc  - Quit`,
	Args: cobra.NoArgs,
	RunE: runPick,
}

var pickSimple bool

func init() {
	pickCmd.Flags().BoolVar(&pickSimple, "simple", false, "Print the sandbox list without the interactive picker")
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	mgr, err := manager()
	if err != nil {
		return err
	}

	logging.Debug("picker mode started")

	sandboxes, err := mgr.List(cmd.Context())
	if err != nil {
		return err
	}

	if pickSimple {
		fmt.Fprint(cmd.OutOrStdout(), tui.SimplePicker(sandboxes))
		return nil
	}

	result, err := tui.RunPicker(sandboxes)
	if err != nil {
		return fmt.Errorf("picker error: %w", err)
	}

	logging.Debug("picker result", "action", result.Action)

	switch result.Action {
	case tui.ActionShell:
		if result.Sandbox != nil {
			return mgr.Shell(cmd.Context(), result.Sandbox.ID, nil)
		}

	case tui.ActionNew:
		if result.CreateOptions != nil {
			return pickCreate(cmd, mgr, *result.CreateOptions)
		}

	case tui.ActionDelete:
		if result.Sandbox != nil {
			if _, ok, err := mgr.Delete(cmd.Context(), result.Sandbox.ID); err != nil {
				return err
			} else if !ok {
				return errors.SandboxNotFound(result.Sandbox.Name)
			}
			logSuccess("Removed sandbox %s", result.Sandbox.Name)
		}

	case tui.ActionQuit:
		// Just exit cleanly
	}

	return nil
}

func pickCreate(cmd *cobra.Command, mgr *sandbox.Manager, opts sandbox.CreateOptions) error {
	sb, err := mgr.Create(cmd.Context(), opts)
	if err != nil {
		return err
	}
	logSuccess("Created sandbox %s (index %d, %s)", sb.Name, sb.Index, sb.Network.SandboxIP)
	return nil
}
