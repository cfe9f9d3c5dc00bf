package health

import (
	"fmt"
	"time"
)

// Status is the derived state of a sandbox. It is computed from the pid on
// every read and never stored.
type Status string

const (
	// StatusCreating and StatusFailed are reserved; Observe never returns them.
	StatusCreating Status = "creating"
	StatusRunning  Status = "running"
	StatusExited   Status = "exited"
	StatusFailed   Status = "failed"
	StatusUnknown  Status = "unknown"
)

// Icon returns a one-character marker for tables and pickers.
func (s Status) Icon() string {
	switch s {
	case StatusRunning:
		return "●"
	case StatusExited:
		return "○"
	case StatusFailed:
		return "✗"
	case StatusCreating:
		return "◌"
	default:
		return "?"
	}
}

// Prober answers liveness probes.
type Prober interface {
	IsAlive(pid int) bool
}

// Process is a pid with the status it had when last observed. A pid can be
// reused by an unrelated process after the original exits, so Status is
// only as good as ObservedAt.
type Process struct {
	PID        int       `json:"pid" yaml:"pid"`
	Status     Status    `json:"status" yaml:"status"`
	ObservedAt time.Time `json:"observedAt" yaml:"observedAt"`
}

// Observe probes pid: unknown if no pid was recorded, otherwise running or
// exited depending on whether it still answers.
func Observe(p Prober, pid int) Process {
	proc := Process{PID: pid, Status: StatusUnknown, ObservedAt: time.Now()}
	if pid == 0 || p == nil {
		return proc
	}
	if p.IsAlive(pid) {
		proc.Status = StatusRunning
	} else {
		proc.Status = StatusExited
	}
	return proc
}

// Stale reports whether the process had a pid that no longer answers.
func (p Process) Stale() bool {
	return p.PID != 0 && p.Status == StatusExited
}

// Counts tallies statuses for summaries.
type Counts map[Status]int

// Count tallies the given statuses.
func Count(statuses ...Status) Counts {
	c := make(Counts)
	for _, s := range statuses {
		c[s]++
	}
	return c
}

// String renders non-zero counts in a fixed order.
func (c Counts) String() string {
	out := ""
	for _, s := range []Status{StatusRunning, StatusExited, StatusUnknown, StatusCreating, StatusFailed} {
		if c[s] == 0 {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += fmt.Sprintf("%d %s", c[s], s)
	}
	if out == "" {
		return "none"
	}
	return out
}

// Uptime formats the time since created in a compact form.
func Uptime(created time.Time) string {
	if created.IsZero() {
		return "unknown"
	}
	return formatDuration(time.Since(created))
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	} else if d < 24*time.Hour {
		hours := int(d.Hours())
		mins := int(d.Minutes()) % 60
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	return fmt.Sprintf("%dd %dh", days, hours)
}
