package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/network"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/system"
)

// FormatVersion is written into every saved registry file.
const FormatVersion = 1

// Record is the registry's unit of truth for one sandbox.
type Record struct {
	ID            string          `json:"id"`
	Index         int             `json:"index"`
	Name          string          `json:"name"`
	CreatedAt     time.Time       `json:"createdAt"`
	Workspace     string          `json:"workspace"`
	BlockNum      int             `json:"blockNum"`
	PID           int             `json:"pid"`
	Network       network.Network `json:"network"`
	CorrelationID string          `json:"correlationId,omitempty"`
}

// LoadPolicy decides what Load does with an unreadable or malformed file.
type LoadPolicy int

const (
	// PreferAvailability logs the problem and keeps the in-memory records.
	PreferAvailability LoadPolicy = iota
	// Strict returns the problem to the caller.
	Strict
)

func (p LoadPolicy) String() string {
	if p == Strict {
		return "strict"
	}
	return "prefer-availability"
}

// persistedRegistry is the JSON layout of the registry file.
type persistedRegistry struct {
	Version   int       `json:"version"`
	Updated   time.Time `json:"updated"`
	NextIndex int       `json:"nextIndex"`
	Sandboxes []*Record `json:"sandboxes"`
}

// Registry is the catalog of sandbox records, cached in memory and backed
// by a single file. Every method except Lock, Load and Save assumes the
// caller holds the lock.
type Registry struct {
	path     string
	lockPath string
	policy   LoadPolicy

	mu        sync.Mutex
	records   []*Record
	nextIndex int
}

// New creates a registry stored at path and serialized across processes
// through lockPath.
func New(path, lockPath string, policy LoadPolicy) *Registry {
	return &Registry{path: path, lockPath: lockPath, policy: policy}
}

// Path returns the registry file location.
func (r *Registry) Path() string {
	return r.path
}

// Lock enters the critical section shared by every process using the same
// lock file. The returned func leaves it.
func (r *Registry) Lock() (func(), error) {
	r.mu.Lock()
	fl, err := system.LockFile(r.lockPath)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			logging.Warn("failed to release registry lock", "path", r.lockPath, "error", err)
		}
		r.mu.Unlock()
	}, nil
}

// Load replaces the in-memory records with the file's contents. A missing
// file leaves memory untouched. A malformed file is handled per the load
// policy.
func (r *Registry) Load() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return r.loadFailed(fmt.Errorf("failed to read registry: %w", err))
	}

	state, err := decode(data)
	if err != nil {
		return r.loadFailed(fmt.Errorf("failed to parse registry %s: %w", r.path, err))
	}

	seen := make(map[string]bool, len(state.Sandboxes))
	records := make([]*Record, 0, len(state.Sandboxes))
	next := max(state.NextIndex, r.nextIndex)
	for _, rec := range state.Sandboxes {
		if rec == nil || rec.ID == "" {
			logging.Warn("skipping registry entry without id", "path", r.path)
			continue
		}
		if seen[rec.ID] {
			logging.Warn("skipping duplicate registry entry", "id", rec.ID)
			continue
		}
		seen[rec.ID] = true
		records = append(records, rec)
		next = max(next, rec.Index+1)
	}

	r.records = records
	r.nextIndex = next
	logging.Debug("loaded registry", "path", r.path, "sandboxes", len(records), "nextIndex", next)
	return nil
}

func (r *Registry) loadFailed(err error) error {
	if r.policy == Strict {
		return err
	}
	logging.Warn("ignoring unreadable registry, keeping in-memory state", "error", err, "sandboxes", len(r.records))
	return nil
}

// decode accepts the current object layout and the legacy bare array.
func decode(data []byte) (*persistedRegistry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	if trimmed[0] == '[' {
		var legacy []*Record
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return nil, err
		}
		return &persistedRegistry{Sandboxes: legacy}, nil
	}

	var state persistedRegistry
	if err := json.Unmarshal(trimmed, &state); err != nil {
		return nil, err
	}
	if state.Version > FormatVersion {
		return nil, fmt.Errorf("unsupported registry version %d", state.Version)
	}
	return &state, nil
}

// Save writes every record to the file atomically, creating the directory
// if needed.
func (r *Registry) Save() error {
	state := persistedRegistry{
		Version:   FormatVersion,
		Updated:   time.Now().UTC(),
		NextIndex: r.nextIndex,
		Sandboxes: r.records,
	}
	if state.Sandboxes == nil {
		state.Sandboxes = []*Record{}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".sandboxes-*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary registry file: %w", err)
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmpPath, 0644)
	}
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write registry: %w", err)
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename registry: %w", err)
	}
	return nil
}

// NextIndex returns the index the next inserted record should take. It is
// only consumed by Insert, so a create that fails before inserting does
// not burn an index. Indexes are never handed out twice, even after the
// highest record is removed.
func (r *Registry) NextIndex() int {
	return r.nextIndex
}

// Insert adds a record. Ids must be unique.
func (r *Registry) Insert(rec *Record) error {
	for _, existing := range r.records {
		if existing.ID == rec.ID {
			return fmt.Errorf("sandbox id %s already registered", rec.ID)
		}
	}
	r.records = append(r.records, rec)
	r.nextIndex = max(r.nextIndex, rec.Index+1)
	return nil
}

// Remove deletes the record with id and returns it.
func (r *Registry) Remove(id string) (*Record, bool) {
	for i, rec := range r.records {
		if rec.ID == id {
			r.records = append(r.records[:i:i], r.records[i+1:]...)
			return rec, true
		}
	}
	return nil, false
}

// Find resolves ref by exact id, then numeric index, then exact name. The
// first kind that matches wins, so a name equal to another record's id or
// index is shadowed.
func (r *Registry) Find(ref string) (*Record, bool) {
	for _, rec := range r.records {
		if rec.ID == ref {
			return rec, true
		}
	}
	if idx, err := strconv.Atoi(ref); err == nil {
		if rec, ok := r.FindByIndex(idx); ok {
			return rec, true
		}
	}
	for _, rec := range r.records {
		if rec.Name == ref {
			return rec, true
		}
	}
	return nil, false
}

// FindByIndex returns the record with the given index.
func (r *Registry) FindByIndex(idx int) (*Record, bool) {
	for _, rec := range r.records {
		if rec.Index == idx {
			return rec, true
		}
	}
	return nil, false
}

// List returns the records in insertion order.
func (r *Registry) List() []*Record {
	out := make([]*Record, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// BlockOwners maps each claimed block to the record holding it.
func (r *Registry) BlockOwners() map[int]*Record {
	owners := make(map[int]*Record, len(r.records))
	for _, rec := range r.records {
		owners[rec.BlockNum] = rec
	}
	return owners
}
