package runtime

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/system"
)

// namespaces entered by Exec, in nsenter flag form.
var namespaceFlags = []string{"--mount", "--uts", "--ipc", "--net", "--pid"}

// NamespaceRuntime implements Runtime by launching an external sandbox
// runtime binary and entering its namespaces with nsenter.
type NamespaceRuntime struct {
	// Binary is the sandbox runtime program
	Binary string

	// Nsenter is the namespace entry helper
	Nsenter string

	// DefaultCommand runs when Spawn is given no command
	DefaultCommand []string

	Launcher  system.Launcher
	Processes system.ProcessTable

	// Environ supplies the supervisor's environment
	Environ func() []string
}

// NewNamespaceRuntime creates a runtime backed by the real OS.
func NewNamespaceRuntime(binary, nsenter string, defaultCommand []string) *NamespaceRuntime {
	if len(defaultCommand) == 0 {
		defaultCommand = config.DefaultCommand
	}
	return &NamespaceRuntime{
		Binary:         binary,
		Nsenter:        nsenter,
		DefaultCommand: defaultCommand,
		Launcher:       system.DefaultLauncher(),
		Processes:      system.DefaultProcesses(),
		Environ:        os.Environ,
	}
}

// Name returns the runtime identifier
func (r *NamespaceRuntime) Name() string {
	return "namespace"
}

func (r *NamespaceRuntime) environ() []string {
	if r.Environ == nil {
		return nil
	}
	return r.Environ()
}

// spawnArgs builds the runtime argv after the binary name.
func (r *NamespaceRuntime) spawnArgs(opts SpawnOptions) []string {
	command := opts.Command
	if len(command) == 0 {
		command = r.DefaultCommand
	}
	args := []string{"--workspace", opts.Workspace, "--name", opts.Name, "--"}
	return append(args, command...)
}

// spawnEnv layers caller variables over the supervisor's, then pins the
// sandbox marker and network so callers cannot override them. Later
// entries win when keys repeat.
func (r *NamespaceRuntime) spawnEnv(opts SpawnOptions) []string {
	env := append([]string{}, r.environ()...)
	env = append(env, opts.Env...)
	env = append(env, config.SandboxMarkerVariable+"=1")
	return append(env, opts.Network.Env()...)
}

// Spawn launches the sandbox runtime detached in its own session.
func (r *NamespaceRuntime) Spawn(ctx context.Context, opts SpawnOptions) (int, error) {
	args := r.spawnArgs(opts)
	logging.Debug("spawning sandbox", "name", opts.Name, "binary", r.Binary, "args", args)

	pid, err := r.Launcher.Start(system.Command{
		Path:    r.Binary,
		Args:    args,
		Env:     r.spawnEnv(opts),
		LogPath: opts.LogPath,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", r.Binary, err)
	}

	logging.Debug("sandbox spawned", "name", opts.Name, "pid", pid)
	return pid, nil
}

// IsAlive probes pid with signal 0
func (r *NamespaceRuntime) IsAlive(pid int) bool {
	return system.Alive(r.Processes, pid)
}

// Terminate sends SIGTERM to pid
func (r *NamespaceRuntime) Terminate(pid int) error {
	if pid <= 0 {
		return nil
	}
	err := r.Processes.Signal(pid, unix.SIGTERM)
	if err == nil || err == unix.ESRCH {
		return nil
	}
	return fmt.Errorf("failed to terminate pid %d: %w", pid, err)
}

// execArgs builds the nsenter argv after the helper name.
func execArgs(pid int, command []string, opts ExecOptions) []string {
	args := []string{"--target", strconv.Itoa(pid)}
	args = append(args, namespaceFlags...)
	if opts.WorkingDir != "" {
		args = append(args, "--wd="+opts.WorkingDir)
	}
	args = append(args, "--")
	return append(args, command...)
}

func (r *NamespaceRuntime) execCommand(pid int, command []string, opts ExecOptions) (system.Command, error) {
	if pid <= 0 {
		return system.Command{}, fmt.Errorf("invalid pid %d", pid)
	}
	if len(command) == 0 {
		return system.Command{}, fmt.Errorf("command cannot be empty")
	}
	return system.Command{
		Path: r.Nsenter,
		Args: execArgs(pid, command, opts),
		Env:  append(append([]string{}, r.environ()...), opts.Env...),
	}, nil
}

// Exec runs command inside pid's namespaces and buffers its output.
func (r *NamespaceRuntime) Exec(ctx context.Context, pid int, command []string, opts ExecOptions) (*ExecResult, error) {
	cmd, err := r.execCommand(pid, command, opts)
	if err != nil {
		return nil, err
	}
	logging.Debug("exec in sandbox", "pid", pid, "args", cmd.Args)

	res, err := r.Launcher.Run(ctx, cmd)
	if res == nil {
		if err == nil {
			err = fmt.Errorf("no result")
		}
		return nil, fmt.Errorf("%s failed: %w", r.Nsenter, err)
	}

	result := &ExecResult{
		ExitCode: res.ExitCode,
		Stdout:   string(res.Stdout),
		Stderr:   string(res.Stderr),
	}
	if err != nil {
		return result, fmt.Errorf("%s failed: %w", r.Nsenter, err)
	}
	return result, nil
}

// ExecInteractive runs command inside pid's namespaces on the caller's terminal.
func (r *NamespaceRuntime) ExecInteractive(ctx context.Context, pid int, command []string, opts ExecOptions) error {
	cmd, err := r.execCommand(pid, command, opts)
	if err != nil {
		return err
	}
	return r.Launcher.RunInteractive(ctx, cmd)
}

var _ Runtime = (*NamespaceRuntime)(nil)
