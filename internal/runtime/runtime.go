// Package runtime defines the sandbox process runtime for forage-ns.
// This abstraction separates sandbox bookkeeping from the OS processes
// that back sandboxes, and enables testing through mocking.
package runtime

import (
	"context"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/network"
)

// ExecResult holds the result of executing a command in a sandbox
type ExecResult struct {
	ExitCode int    `json:"exitCode" yaml:"exitCode"`
	Stdout   string `json:"stdout" yaml:"stdout"`
	Stderr   string `json:"stderr" yaml:"stderr"`
}

// SpawnOptions holds options for launching a sandbox process
type SpawnOptions struct {
	Name      string
	Workspace string
	Env       []string // KEY=VALUE, layered over the supervisor's environment
	Command   []string // empty selects the runtime's default command
	Network   network.Network
	LogPath   string // receives the runtime's stdout and stderr
}

// ExecOptions holds options for executing a command in a sandbox
type ExecOptions struct {
	WorkingDir string   // directory inside the sandbox
	Env        []string // KEY=VALUE, layered over the supervisor's environment
}

// Runtime is the interface sandbox process backends must implement.
// All methods should be safe for concurrent use.
type Runtime interface {
	// Name returns the runtime identifier
	Name() string

	// Spawn launches a detached sandbox process and returns its pid.
	// The process outlives the call; Spawn does not wait for it.
	Spawn(ctx context.Context, opts SpawnOptions) (int, error)

	// IsAlive probes whether pid still answers a zero signal
	IsAlive(pid int) bool

	// Terminate asks pid to exit. A process that is already gone is not an error.
	Terminate(pid int) error

	// Exec runs command inside the namespaces of pid and buffers its output.
	// A command that runs and fails is reported through ExitCode; an error
	// means the command could not be run.
	Exec(ctx context.Context, pid int, command []string, opts ExecOptions) (*ExecResult, error)

	// ExecInteractive runs command inside the namespaces of pid attached to
	// the caller's terminal.
	ExecInteractive(ctx context.Context, pid int, command []string, opts ExecOptions) error
}
