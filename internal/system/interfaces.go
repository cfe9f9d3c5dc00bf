// Package system provides abstractions for OS operations to enable testing.
package system

import (
	"context"

	"golang.org/x/sys/unix"
)

// ProcessTable abstracts signalling OS processes for testability.
type ProcessTable interface {
	// Signal sends sig to pid. Signal 0 only checks that pid exists.
	Signal(pid int, sig unix.Signal) error
}

// Launcher abstracts starting external programs for testability.
type Launcher interface {
	// Start launches a detached program in its own session and returns its
	// pid without waiting for it.
	Start(cmd Command) (int, error)

	// Run runs a program to completion with stdout and stderr buffered.
	// A non-zero exit is reported in the Result, not as an error; the
	// error is reserved for programs that could not be run at all or were
	// interrupted by ctx.
	Run(ctx context.Context, cmd Command) (*Result, error)

	// RunInteractive runs a program attached to the caller's terminal.
	RunInteractive(ctx context.Context, cmd Command) error
}

// Command describes a program invocation.
type Command struct {
	Path string
	Args []string
	Env  []string // full environment; nil inherits the caller's
	Dir  string

	// LogPath receives stdout and stderr of detached programs.
	LogPath string
}

// Result is the outcome of a completed program.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
}

// Alive reports whether pid currently names a process. EPERM means the
// process exists but belongs to someone else, which still counts.
func Alive(pt ProcessTable, pid int) bool {
	if pid <= 0 {
		return false
	}
	err := pt.Signal(pid, 0)
	return err == nil || err == unix.EPERM
}

// Default instances using real OS operations.
var (
	defaultProcesses ProcessTable = &osProcessTable{}
	defaultLauncher  Launcher     = &osLauncher{}
)

// DefaultProcesses returns the ProcessTable backed by the kernel.
func DefaultProcesses() ProcessTable {
	return defaultProcesses
}

// DefaultLauncher returns the Launcher backed by os/exec.
func DefaultLauncher() Launcher {
	return defaultLauncher
}

// SetDefaultProcesses sets the default ProcessTable (useful for testing).
func SetDefaultProcesses(pt ProcessTable) {
	defaultProcesses = pt
}

// SetDefaultLauncher sets the default Launcher (useful for testing).
func SetDefaultLauncher(l Launcher) {
	defaultLauncher = l
}

// ResetDefaults restores the default OS implementations.
func ResetDefaults() {
	defaultProcesses = &osProcessTable{}
	defaultLauncher = &osLauncher{}
}

type osProcessTable struct{}

func (p *osProcessTable) Signal(pid int, sig unix.Signal) error {
	return unix.Kill(pid, sig)
}
