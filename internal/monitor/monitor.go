// Package monitor provides background status monitoring for sandboxes.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/audit"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/health"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/sandbox"
)

// Lister returns the current sandboxes with their observed status.
type Lister interface {
	List(ctx context.Context) ([]*sandbox.Summary, error)
}

// Change is a status transition seen between two checks. From is empty the
// first time a sandbox is seen; To is empty once it left the registry.
type Change struct {
	ID   string
	Name string
	From health.Status
	To   health.Status
}

func (c Change) String() string {
	switch {
	case c.From == "":
		return fmt.Sprintf("%s: %s", c.Name, c.To)
	case c.To == "":
		return fmt.Sprintf("%s: removed", c.Name)
	default:
		return fmt.Sprintf("%s: %s -> %s", c.Name, c.From, c.To)
	}
}

// Monitor periodically checks the status of all sandboxes. It only
// observes; exited sandboxes are left for an explicit cleanup.
type Monitor struct {
	interval  time.Duration
	sandboxes Lister
	auditLog  *audit.Logger
	onChange  func(Change)

	last map[string]Change
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithAuditLogger records status transitions of registered sandboxes.
func WithAuditLogger(logger *audit.Logger) Option {
	return func(m *Monitor) {
		m.auditLog = logger
	}
}

// WithOnChange sets the callback invoked for every change.
func WithOnChange(fn func(Change)) Option {
	return func(m *Monitor) {
		m.onChange = fn
	}
}

// New creates a new Monitor.
func New(interval time.Duration, sandboxes Lister, opts ...Option) *Monitor {
	m := &Monitor{
		interval:  interval,
		sandboxes: sandboxes,
		last:      make(map[string]Change),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run starts the monitoring loop. It blocks until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	logging.Debug("starting status monitor", "interval", m.interval)

	// Run an immediate check, then loop on interval.
	m.checkAll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Debug("status monitor stopping")
			return ctx.Err()
		case <-ticker.C:
			m.checkAll(ctx)
		}
	}
}

// checkAll compares the current sandboxes with the previous check and
// reports what changed.
func (m *Monitor) checkAll(ctx context.Context) []Change {
	sandboxes, err := m.sandboxes.List(ctx)
	if err != nil {
		logging.Warn("monitor failed to list sandboxes", "error", err)
		return nil
	}

	var changes []Change
	seen := make(map[string]bool, len(sandboxes))
	for _, sb := range sandboxes {
		seen[sb.ID] = true
		prev, known := m.last[sb.ID]
		if known && prev.To == sb.Status {
			continue
		}

		change := Change{ID: sb.ID, Name: sb.Name, From: prev.To, To: sb.Status}
		m.last[sb.ID] = change
		changes = append(changes, change)

		if known && m.auditLog != nil {
			err := m.auditLog.Log(audit.Event{
				Type:          audit.EventHealth,
				Sandbox:       sb.ID,
				Name:          sb.Name,
				CorrelationID: sb.CorrelationID,
				Details:       fmt.Sprintf("%s -> %s", prev.To, sb.Status),
			})
			if err != nil {
				logging.Debug("failed to write health event", "sandbox", sb.ID, "error", err)
			}
		}
	}

	for id, prev := range m.last {
		if seen[id] {
			continue
		}
		delete(m.last, id)
		changes = append(changes, Change{ID: id, Name: prev.Name, From: prev.To})
	}

	for _, c := range changes {
		logging.Debug("sandbox status changed", "id", c.ID, "name", c.Name, "from", c.From, "to", c.To)
		if m.onChange != nil {
			m.onChange(c)
		}
	}
	return changes
}
