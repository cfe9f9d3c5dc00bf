package sandbox

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/kballard/go-shellquote"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/audit"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/registry"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/runtime"
)

// target resolves ref to a record whose process can be entered.
func (m *Manager) target(ref string) (*registry.Record, error) {
	rec, ok, err := m.lookup(ref)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.SandboxNotFound(ref)
	}
	if rec.PID == 0 {
		return nil, errors.NoPid(ref)
	}
	if !m.rt.IsAlive(rec.PID) {
		// reported as an exec failure that still matches ErrSandboxNotRunning
		return nil, errors.ExecFailed(ref, errors.SandboxNotRunning(ref, rec.PID))
	}
	return rec, nil
}

// Exec runs a command inside the namespaces of a running sandbox and
// returns its buffered output. The registry lock is held only while the
// sandbox is resolved, never while the command runs.
//
// A command that runs and exits non-zero is a result, not an error. The
// error kinds are ErrSandboxNotFound, ErrNoPid and ErrExecFailed; an exited
// sandbox process is an ErrExecFailed that also matches ErrSandboxNotRunning.
func (m *Manager) Exec(ctx context.Context, ref string, opts ExecOptions) (*runtime.ExecResult, error) {
	if len(opts.Command) == 0 {
		return nil, errors.ValidationError("command is required")
	}
	if err := validateEnv(opts.Env); err != nil {
		return nil, err
	}

	rec, err := m.target(ref)
	if err != nil {
		return nil, err
	}

	if m.execTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.execTimeout)
		defer cancel()
	}

	workdir := opts.WorkingDir
	if workdir == "" {
		workdir = rec.Workspace
	}
	cmdline := shellquote.Join(opts.Command...)
	logging.Debug("exec in sandbox", "id", rec.ID, "pid", rec.PID, "command", cmdline, "workdir", workdir)

	result, err := m.rt.Exec(ctx, rec.PID, opts.Command, runtime.ExecOptions{
		WorkingDir: workdir,
		Env:        opts.Env,
	})
	if err != nil {
		m.record(audit.EventError, rec, fmt.Sprintf("exec %s: %v", cmdline, err))
		return result, errors.ExecFailed(ref, err)
	}

	m.record(audit.EventExec, rec, fmt.Sprintf("exit=%d command=%s", result.ExitCode, cmdline))
	return result, nil
}

// Shell attaches the caller's terminal to a command inside a running
// sandbox. An empty command selects the configured shell.
func (m *Manager) Shell(ctx context.Context, ref string, command []string) error {
	rec, err := m.target(ref)
	if err != nil {
		return err
	}
	if len(command) == 0 {
		command = m.shellCommand
	}

	m.record(audit.EventExec, rec, "interactive command="+shellquote.Join(command...))
	err = m.rt.ExecInteractive(ctx, rec.PID, command, runtime.ExecOptions{WorkingDir: rec.Workspace})
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return errors.ExecFailed(ref, err)
	}
	// the session's own exit status is not a failure to enter the sandbox
	return nil
}
