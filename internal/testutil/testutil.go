// Package testutil provides test utilities for integration tests
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/app"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/runtime"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/sandbox"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/system"
)

// TestEnv holds the test environment
type TestEnv struct {
	T        *testing.T
	TmpDir   string
	Paths    *config.Paths
	Settings *config.Settings
	Runtime  *runtime.MockRuntime
	App      *app.App
	Manager  *sandbox.Manager

	// Launcher and Processes replace the OS for any NamespaceRuntime
	// built while the env is active.
	Launcher  *system.MockLauncher
	Processes *system.MockProcessTable

	cleanup func()
}

// NewTestEnv creates a new test environment with mock runtime. The env is
// installed as app.Default, and its mock launcher and process table as the
// system defaults, until Cleanup runs. Cleanup also happens automatically
// at the end of the test.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return NewTestEnvWithSettings(t, config.DefaultSettings())
}

// NewTestEnvWithSettings is NewTestEnv with custom settings. The state dir
// is always replaced by a temporary one.
func NewTestEnvWithSettings(t *testing.T, settings *config.Settings) *TestEnv {
	t.Helper()

	tmpDir := t.TempDir()
	paths := config.NewPaths(filepath.Join(tmpDir, "config"), filepath.Join(tmpDir, "state"))
	if err := os.MkdirAll(paths.ConfigDir, 0755); err != nil {
		t.Fatalf("Failed to create directory %s: %v", paths.ConfigDir, err)
	}
	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("Failed to create state directories: %v", err)
	}
	settings.StateDir = paths.StateDir

	processes := system.NewMockProcessTable()
	launcher := system.NewMockLauncher()
	launcher.Processes = processes
	system.SetDefaultProcesses(processes)
	system.SetDefaultLauncher(launcher)

	mockRuntime := runtime.NewMockRuntime()

	testApp, err := app.New(
		app.WithPaths(paths),
		app.WithSettings(settings),
		app.WithRuntime(mockRuntime),
	)
	if err != nil {
		system.ResetDefaults()
		t.Fatalf("Failed to create app: %v", err)
	}

	// Save original default and set test app
	originalDefault := app.Default
	app.SetDefault(testApp)

	env := &TestEnv{
		T:         t,
		TmpDir:    tmpDir,
		Paths:     paths,
		Settings:  settings,
		Runtime:   mockRuntime,
		App:       testApp,
		Manager:   testApp.Manager,
		Launcher:  launcher,
		Processes: processes,
	}
	env.cleanup = func() {
		app.SetDefault(originalDefault)
		system.ResetDefaults()
		env.cleanup = nil
	}
	t.Cleanup(env.Cleanup)

	return env
}

// Cleanup restores the original app and system defaults
func (e *TestEnv) Cleanup() {
	if e.cleanup != nil {
		e.cleanup()
	}
}

// CreateSandbox creates a sandbox through the manager
func (e *TestEnv) CreateSandbox(opts sandbox.CreateOptions) *sandbox.Summary {
	e.T.Helper()

	sb, err := e.Manager.Create(context.Background(), opts)
	if err != nil {
		e.T.Fatalf("Failed to create sandbox: %v", err)
	}
	return sb
}

// KillSandbox makes the sandbox process stop answering liveness probes
func (e *TestEnv) KillSandbox(sb *sandbox.Summary) {
	e.Runtime.SetAlive(sb.PID, false)
}

// InstallRegistry copies a registry fixture over the registry file
func (e *TestEnv) InstallRegistry(fixture string) {
	e.T.Helper()

	data, err := LoadFixture(fixture)
	if err != nil {
		e.T.Fatalf("Failed to load fixture %s: %v", fixture, err)
	}
	if err := os.WriteFile(e.Paths.RegistryPath, data, 0644); err != nil {
		e.T.Fatalf("Failed to write registry: %v", err)
	}
}

// WriteSettings writes config.toml into the config dir
func (e *TestEnv) WriteSettings(data string) {
	e.T.Helper()

	path := filepath.Join(e.Paths.ConfigDir, config.SettingsFile)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		e.T.Fatalf("Failed to write settings: %v", err)
	}
}

// CreateWorkspace creates a workspace directory outside the state dir
func (e *TestEnv) CreateWorkspace(name string) string {
	e.T.Helper()

	path := filepath.Join(e.TmpDir, "workspaces", name)
	if err := os.MkdirAll(path, 0755); err != nil {
		e.T.Fatalf("Failed to create workspace: %v", err)
	}
	return path
}
