package sandbox

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/audit"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/health"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/ippool"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/network"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/registry"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/runtime"
)

// Config holds the dependencies of a Manager.
type Config struct {
	Paths   *config.Paths
	Pool    network.Pool
	Runtime runtime.Runtime

	// LoadPolicy decides whether a malformed registry file fails operations.
	LoadPolicy registry.LoadPolicy

	// ExecTimeout bounds Exec. Zero means no bound.
	ExecTimeout time.Duration

	// ShellCommand is run by Shell when the caller gives no command.
	ShellCommand []string
}

// Manager coordinates the registry, the address pool and the runtime.
// Every operation runs inside the registry lock: load, operate, then save
// if anything changed.
type Manager struct {
	paths    *config.Paths
	pool     network.Pool
	registry *registry.Registry
	blocks   *ippool.Allocator
	rt       runtime.Runtime
	audit    *audit.Logger

	execTimeout  time.Duration
	shellCommand []string

	newID func() string
	now   func() time.Time
}

// NewManager creates a Manager from cfg.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Paths == nil {
		return nil, fmt.Errorf("paths are required")
	}
	if cfg.Runtime == nil {
		return nil, fmt.Errorf("runtime is required")
	}
	if err := cfg.Pool.Validate(); err != nil {
		return nil, errors.ConfigError("invalid address pool", err)
	}
	if cfg.ExecTimeout < 0 {
		return nil, errors.ValidationError("exec timeout cannot be negative")
	}

	shell := cfg.ShellCommand
	if len(shell) == 0 {
		shell = config.DefaultCommand
	}

	return &Manager{
		paths:        cfg.Paths,
		pool:         cfg.Pool,
		registry:     registry.New(cfg.Paths.RegistryPath, cfg.Paths.LockPath, cfg.LoadPolicy),
		blocks:       ippool.New(cfg.Paths.PoolDir, cfg.Pool.MaxBlocks),
		rt:           cfg.Runtime,
		audit:        audit.NewLogger(cfg.Paths.EventsDir),
		execTimeout:  cfg.ExecTimeout,
		shellCommand: append([]string(nil), shell...),
		newID:        uuid.NewString,
		now:          time.Now,
	}, nil
}

// Runtime returns the runtime sandboxes are spawned with.
func (m *Manager) Runtime() runtime.Runtime {
	return m.rt
}

// Audit returns the lifecycle event log.
func (m *Manager) Audit() *audit.Logger {
	return m.audit
}

// begin enters the critical section and refreshes the registry from disk.
// The returned func must be called to leave it.
func (m *Manager) begin() (func(), error) {
	if err := os.MkdirAll(m.paths.StateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	unlock, err := m.registry.Lock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock registry: %w", err)
	}
	if err := m.registry.Load(); err != nil {
		unlock()
		return nil, errors.ConfigError("failed to load registry", err)
	}
	return unlock, nil
}

// save persists the registry. Failures are logged and absorbed: the
// in-memory change stands even when the file could not be written.
func (m *Manager) save() {
	if err := m.registry.Save(); err != nil {
		logging.Warn("failed to persist registry", "path", m.registry.Path(), "error", err)
	}
}

func (m *Manager) summarize(rec *registry.Record) *Summary {
	return newSummary(rec, health.Observe(m.rt, rec.PID))
}

func (m *Manager) record(eventType audit.EventType, rec *registry.Record, details string) {
	err := m.audit.Log(audit.Event{
		Timestamp:     m.now(),
		Type:          eventType,
		Sandbox:       rec.ID,
		Name:          rec.Name,
		CorrelationID: rec.CorrelationID,
		Details:       details,
	})
	if err != nil {
		logging.Debug("failed to write audit event", "sandbox", rec.ID, "type", eventType, "error", err)
	}
}

// Create allocates a block, spawns the sandbox process and registers it.
// A failure leaves no record, claimed block, consumed index or newly
// created workspace behind.
func (m *Manager) Create(ctx context.Context, opts CreateOptions) (*Summary, error) {
	if opts.Name != "" {
		if err := config.ValidateSandboxName(opts.Name); err != nil {
			return nil, errors.ValidationError(err.Error())
		}
	}
	if err := validateEnv(opts.Env); err != nil {
		return nil, err
	}

	unlock, err := m.begin()
	if err != nil {
		return nil, err
	}
	defer unlock()

	id := m.newID()
	// Insert consumes the index, so failures below leave it free.
	index := m.registry.NextIndex()
	name := opts.Name
	if name == "" {
		name = fmt.Sprintf("sandbox-%d", index)
	}
	log := logging.With("id", id, "name", name)
	log.Debug("starting sandbox creation", "index", index)

	ws, err := m.paths.ResolveWorkspace(id, opts.Workspace)
	if err != nil {
		return nil, errors.ValidationError(err.Error())
	}

	block, err := m.blocks.Allocate(name)
	if err != nil {
		return nil, err
	}
	log.Debug("block allocated", "block", block)

	removeWorkspace, err := m.makeWorkspace(ws)
	if err != nil {
		if rerr := m.blocks.Release(block); rerr != nil {
			log.Warn("failed to release block after failed create", "block", block, "error", rerr)
		}
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	release := func() {
		if err := m.blocks.Release(block); err != nil {
			log.Warn("failed to release block after failed create", "block", block, "error", err)
		}
		removeWorkspace()
	}

	nw, err := m.pool.NetworkForBlock(block)
	if err != nil {
		release()
		return nil, fmt.Errorf("failed to derive network: %w", err)
	}

	pid, err := m.rt.Spawn(ctx, runtime.SpawnOptions{
		Name:      name,
		Workspace: ws,
		Env:       opts.Env,
		Command:   opts.Command,
		Network:   nw,
		LogPath:   m.paths.LogPath(id),
	})
	if err != nil {
		release()
		m.record(audit.EventError, &registry.Record{ID: id, Name: name, CorrelationID: opts.CorrelationID}, "spawn: "+err.Error())
		return nil, errors.SpawnFailed(name, err)
	}
	if pid == 0 {
		log.Warn("sandbox spawned without a pid")
	}

	rec := &registry.Record{
		ID:            id,
		Index:         index,
		Name:          name,
		CreatedAt:     m.now().UTC(),
		Workspace:     ws,
		BlockNum:      block,
		PID:           pid,
		Network:       nw,
		CorrelationID: opts.CorrelationID,
	}
	if err := m.registry.Insert(rec); err != nil {
		if pid != 0 {
			if terr := m.rt.Terminate(pid); terr != nil {
				log.Debug("terminate after failed insert", "pid", pid, "error", terr)
			}
		}
		release()
		return nil, err
	}
	m.save()

	m.record(audit.EventCreate, rec, fmt.Sprintf("block=%d pid=%d ip=%s workspace=%s", block, pid, nw.SandboxIP, ws))
	log.Info("sandbox created", "index", index, "ip", nw.SandboxIP, "pid", pid)

	return m.summarize(rec), nil
}

// ownsWorkspace reports whether ws lives under the managed workspaces dir.
func (m *Manager) ownsWorkspace(ws string) bool {
	root := filepath.Clean(m.paths.WorkspacesDir)
	return strings.HasPrefix(ws, root+string(filepath.Separator))
}

// makeWorkspace creates ws when it lives under the managed workspaces dir.
// The returned func removes whatever this call created and nothing that
// existed before it.
func (m *Manager) makeWorkspace(ws string) (func(), error) {
	if !m.ownsWorkspace(ws) {
		return func() {}, nil
	}

	root := filepath.Clean(m.paths.WorkspacesDir)
	created := ""
	for dir := ws; dir != root; dir = filepath.Dir(dir) {
		if _, err := os.Stat(dir); err == nil {
			break
		}
		created = dir
	}
	if err := os.MkdirAll(ws, 0755); err != nil {
		return nil, err
	}
	if created == "" {
		return func() {}, nil
	}
	return func() {
		if err := os.RemoveAll(created); err != nil {
			logging.Warn("failed to remove workspace after failed create", "path", created, "error", err)
		}
	}, nil
}

// List returns every registered sandbox in insertion order.
func (m *Manager) List(ctx context.Context) ([]*Summary, error) {
	unlock, err := m.begin()
	if err != nil {
		return nil, err
	}
	records := m.registry.List()
	unlock()

	summaries := make([]*Summary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, m.summarize(rec))
	}
	return summaries, nil
}

// Get resolves ref as an id, index or name. A missing sandbox is reported
// through the bool, not as an error.
func (m *Manager) Get(ctx context.Context, ref string) (*Summary, bool, error) {
	rec, ok, err := m.lookup(ref)
	if err != nil || !ok {
		return nil, false, err
	}
	return m.summarize(rec), true, nil
}

// lookup returns a copy of the record for ref, holding the lock only for
// the duration of the lookup.
func (m *Manager) lookup(ref string) (*registry.Record, bool, error) {
	unlock, err := m.begin()
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	rec, ok := m.registry.Find(ref)
	if !ok {
		return nil, false, nil
	}
	cp := *rec
	return &cp, true, nil
}

// Delete terminates the sandbox process, releases its block and removes the
// record. The returned summary carries the status observed before
// termination. A missing sandbox is reported through the bool.
func (m *Manager) Delete(ctx context.Context, ref string) (*Summary, bool, error) {
	unlock, err := m.begin()
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	rec, ok := m.registry.Find(ref)
	if !ok {
		return nil, false, nil
	}
	summary := m.summarize(rec)

	if rec.PID != 0 {
		if err := m.rt.Terminate(rec.PID); err != nil {
			logging.Debug("terminate during delete", "id", rec.ID, "pid", rec.PID, "error", err)
		}
	}
	m.teardown(rec)
	m.save()

	m.record(audit.EventDestroy, rec, fmt.Sprintf("block=%d pid=%d", rec.BlockNum, rec.PID))
	logging.Info("sandbox deleted", "id", rec.ID, "name", rec.Name)

	return summary, true, nil
}

// IPByIndex returns the sandbox-side address of the sandbox with index.
func (m *Manager) IPByIndex(ctx context.Context, index int) (string, bool, error) {
	unlock, err := m.begin()
	if err != nil {
		return "", false, err
	}
	defer unlock()

	rec, ok := m.registry.FindByIndex(index)
	if !ok {
		return "", false, nil
	}
	return rec.Network.SandboxIP, true, nil
}

func validateEnv(env []string) error {
	for _, kv := range env {
		key, _, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return errors.ValidationError(fmt.Sprintf("invalid environment entry %q: expected KEY=VALUE", kv))
		}
	}
	return nil
}
