package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/sandbox"
)

var createCmd = &cobra.Command{
	Use:   "create [flags] [-- <command>...]",
	Short: "Create a new sandbox",
	Long: `Allocates an address block, spawns the sandbox process and registers it.

Arguments after -- replace the default command run inside the sandbox.

Examples:
  forage-ns create --name web
  forage-ns create --workspace /srv/app --env MODE=dev -- /bin/sleep 3600`,
	RunE: runCreate,
}

var (
	createName          string
	createWorkspace     string
	createEnv           []string
	createCorrelationID string
)

func init() {
	createCmd.Flags().StringVarP(&createName, "name", "n", "", "Sandbox name (default sandbox-<index>)")
	createCmd.Flags().StringVarP(&createWorkspace, "workspace", "w", "", "Workspace directory (default: private directory under the state dir)")
	createCmd.Flags().StringArrayVarP(&createEnv, "env", "e", nil, "Environment variable KEY=VALUE (repeatable)")
	createCmd.Flags().StringVar(&createCorrelationID, "correlation-id", "", "Opaque tag stored with the sandbox")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	if len(args) > 0 && cmd.ArgsLenAtDash() != 0 {
		return errors.ValidationError("the sandbox command must follow --")
	}

	mgr, err := manager()
	if err != nil {
		return err
	}

	opts := sandbox.CreateOptions{
		Name:          createName,
		Workspace:     createWorkspace,
		Env:           createEnv,
		Command:       args,
		CorrelationID: createCorrelationID,
	}
	logging.Debug("creating sandbox", "name", opts.Name, "workspace", opts.Workspace, "command", opts.Command)

	sb, err := mgr.Create(cmd.Context(), opts)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), sb, func(w io.Writer) error {
		logSuccess("Created sandbox %s (index %d)", sb.Name, sb.Index)
		fmt.Fprintf(w, "  ID:        %s\n", sb.ID)
		fmt.Fprintf(w, "  PID:       %d\n", sb.PID)
		fmt.Fprintf(w, "  Host IP:   %s/%d\n", sb.Network.HostIP, sb.Network.CIDR)
		fmt.Fprintf(w, "  IP:        %s/%d\n", sb.Network.SandboxIP, sb.Network.CIDR)
		fmt.Fprintf(w, "  Workspace: %s\n", sb.Workspace)
		return nil
	})
}
