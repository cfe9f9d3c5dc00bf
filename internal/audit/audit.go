// Package audit provides structured event logging for sandbox lifecycle events.
// Events are stored as JSON Lines (JSONL) files, one per sandbox id.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EventType classifies a lifecycle event.
type EventType string

const (
	EventCreate  EventType = "create"
	EventDestroy EventType = "destroy"
	EventExec    EventType = "exec"
	EventCleanup EventType = "cleanup"
	EventGC      EventType = "gc"
	EventHealth  EventType = "health"
	EventError   EventType = "error"
)

// Event represents a single audit log entry.
type Event struct {
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
	Type          EventType `json:"type" yaml:"type"`
	Sandbox       string    `json:"sandbox" yaml:"sandbox"`
	Name          string    `json:"name,omitempty" yaml:"name,omitempty"`
	CorrelationID string    `json:"correlationId,omitempty" yaml:"correlationId,omitempty"`
	Details       string    `json:"details,omitempty" yaml:"details,omitempty"`
}

// Logger writes and reads audit events for sandboxes.
// Events are stored in {eventsDir}/{id}.jsonl and outlive the sandbox.
type Logger struct {
	eventsDir string
}

// NewLogger creates a new audit logger rooted at eventsDir.
func NewLogger(eventsDir string) *Logger {
	return &Logger{eventsDir: eventsDir}
}

// eventPath returns the path to the JSONL event log for a sandbox.
func (l *Logger) eventPath(sandbox string) (string, error) {
	if sandbox == "" || strings.ContainsAny(sandbox, `/\`) || sandbox == "." || sandbox == ".." {
		return "", fmt.Errorf("invalid sandbox id %q", sandbox)
	}
	return filepath.Join(l.eventsDir, sandbox+".jsonl"), nil
}

// Log appends an event to the sandbox's audit log.
func (l *Logger) Log(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	path, err := l.eventPath(event.Sandbox)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create audit log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// Events reads all events for a sandbox in chronological order.
func (l *Logger) Events(sandbox string) ([]Event, error) {
	path, err := l.eventPath(sandbox)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue // Skip malformed lines
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading audit log: %w", err)
	}

	return events, nil
}

// Find returns the id of the newest log whose events mention ref as an id,
// name or correlation id. It lets callers read the history of sandboxes
// that are no longer registered.
func (l *Logger) Find(ref string) (string, bool) {
	if path, err := l.eventPath(ref); err == nil {
		if _, err := os.Stat(path); err == nil {
			return ref, true
		}
	}

	entries, err := os.ReadDir(l.eventsDir)
	if err != nil {
		return "", false
	}
	var (
		best     string
		bestTime time.Time
	)
	for _, entry := range entries {
		id, ok := strings.CutSuffix(entry.Name(), ".jsonl")
		if !ok || entry.IsDir() {
			continue
		}
		events, _ := l.Events(id)
		for _, e := range events {
			if (e.Name == ref || e.CorrelationID == ref) && e.Timestamp.After(bestTime) {
				best, bestTime = id, e.Timestamp
			}
		}
	}
	return best, best != ""
}
