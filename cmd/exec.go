package cmd

import (
	"fmt"
	"io"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/sandbox"
)

var execCmd = &cobra.Command{
	Use:   "exec <id|index|name> [flags] -- <command>...",
	Short: "Execute command in sandbox",
	Long: `Execute a command inside the namespaces of a running sandbox.

Output is buffered and printed when the command finishes. forage-ns exits
with the exit status of the command.

Examples:
  forage-ns exec web -- ls -la
  forage-ns exec 3 --workdir /tmp --env DEBUG=1 -- env
  forage-ns exec web --shell "make test 2>&1 | tail -n 20"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

var (
	execWorkdir string
	execEnv     []string
	execShell   string
)

func init() {
	execCmd.Flags().StringVar(&execWorkdir, "workdir", "", "Working directory (default: sandbox workspace)")
	execCmd.Flags().StringArrayVarP(&execEnv, "env", "e", nil, "Environment variable KEY=VALUE (repeatable)")
	execCmd.Flags().StringVar(&execShell, "shell", "", "Shell-quoted command line instead of arguments after --")
	rootCmd.AddCommand(execCmd)
}

// execCommandLine returns the command to run from the arguments after the
// sandbox reference or from --shell.
func execCommandLine(cmd *cobra.Command, args []string) ([]string, error) {
	if dash := cmd.ArgsLenAtDash(); dash > 1 {
		return nil, errors.ValidationError("usage: forage-ns exec <ref> -- <command>")
	}
	rest := args[1:]

	if execShell != "" {
		if len(rest) > 0 {
			return nil, errors.ValidationError("--shell cannot be combined with a command after --")
		}
		words, err := shellquote.Split(execShell)
		if err != nil {
			return nil, errors.ValidationError(fmt.Sprintf("invalid --shell command: %v", err))
		}
		rest = words
	}

	if len(rest) == 0 {
		return nil, errors.ValidationError("usage: forage-ns exec <ref> -- <command>")
	}
	return rest, nil
}

func runExec(cmd *cobra.Command, args []string) error {
	ref := args[0]

	command, err := execCommandLine(cmd, args)
	if err != nil {
		return err
	}

	mgr, err := manager()
	if err != nil {
		return err
	}

	result, execErr := mgr.Exec(cmd.Context(), ref, sandbox.ExecOptions{
		Command:    command,
		WorkingDir: execWorkdir,
		Env:        execEnv,
	})
	if result == nil {
		return execErr
	}

	// A timed-out command still shows what it wrote before it was killed.
	err = render(cmd.OutOrStdout(), result, func(w io.Writer) error {
		io.WriteString(w, result.Stdout)
		io.WriteString(cmd.ErrOrStderr(), result.Stderr)
		return nil
	})
	if execErr != nil {
		return execErr
	}
	if err != nil {
		return err
	}

	if result.ExitCode != 0 {
		return errors.ExitStatus(result.ExitCode)
	}
	return nil
}
