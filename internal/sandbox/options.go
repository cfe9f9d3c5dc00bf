package sandbox

import (
	"time"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/health"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/network"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/registry"
)

// CreateOptions contains the options for creating a sandbox.
type CreateOptions struct {
	// Name is the display name. Empty selects sandbox-<index>.
	Name string

	// Workspace is the working directory for the sandbox. Empty selects a
	// private directory under the state dir; relative paths are confined to
	// the workspaces directory.
	Workspace string

	// Env holds KEY=VALUE pairs layered over the supervisor's environment.
	Env []string

	// Command is run by the sandbox runtime. Empty selects the default.
	Command []string

	// CorrelationID is an opaque caller tag stored with the record.
	CorrelationID string
}

// ExecOptions contains the options for running a command in a sandbox.
type ExecOptions struct {
	Command []string

	// WorkingDir defaults to the sandbox workspace.
	WorkingDir string

	Env []string
}

// Summary is a sandbox record annotated with its observed status.
type Summary struct {
	ID            string          `json:"id" yaml:"id"`
	Index         int             `json:"index" yaml:"index"`
	Name          string          `json:"name" yaml:"name"`
	CreatedAt     time.Time       `json:"createdAt" yaml:"createdAt"`
	Workspace     string          `json:"workspace" yaml:"workspace"`
	Status        health.Status   `json:"status" yaml:"status"`
	Network       network.Network `json:"network" yaml:"network"`
	PID           int             `json:"pid" yaml:"pid"`
	BlockNum      int             `json:"blockNum" yaml:"blockNum"`
	CorrelationID string          `json:"correlationId,omitempty" yaml:"correlationId,omitempty"`
}

func newSummary(rec *registry.Record, proc health.Process) *Summary {
	return &Summary{
		ID:            rec.ID,
		Index:         rec.Index,
		Name:          rec.Name,
		CreatedAt:     rec.CreatedAt,
		Workspace:     rec.Workspace,
		Status:        proc.Status,
		Network:       rec.Network,
		PID:           rec.PID,
		BlockNum:      rec.BlockNum,
		CorrelationID: rec.CorrelationID,
	}
}

// CleanupReport describes one cleanup pass.
type CleanupReport struct {
	Checked int        `json:"checked" yaml:"checked"`
	Removed []*Summary `json:"removed" yaml:"removed"`
}

// OrphanBlock is a claimed block that no registered sandbox owns.
type OrphanBlock struct {
	Block int    `json:"block" yaml:"block"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// GCReport describes one garbage collection pass over the pool markers.
type GCReport struct {
	DryRun bool `json:"dryRun" yaml:"dryRun"`

	// Orphans are markers without an owning record. They are released
	// unless DryRun is set.
	Orphans []OrphanBlock `json:"orphans" yaml:"orphans"`

	// Restored are sandboxes whose block marker was missing and has been
	// claimed again for them.
	Restored []*Summary `json:"restored" yaml:"restored"`
}

// Empty reports whether the pass found nothing to do.
func (r *GCReport) Empty() bool {
	return len(r.Orphans) == 0 && len(r.Restored) == 0
}
