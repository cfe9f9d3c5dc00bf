package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/app"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/health"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/network"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/sandbox"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/system"
)

func TestLoadValidSettings(t *testing.T) {
	s, err := ValidSettings()
	if err != nil {
		t.Fatalf("ValidSettings() error: %v", err)
	}

	if s.Pool.MaxBlocks != 1024 {
		t.Errorf("MaxBlocks = %d, want 1024", s.Pool.MaxBlocks)
	}
	if !s.Registry.Strict {
		t.Error("Strict should be set")
	}
	if len(s.Runtime.DefaultCommand) != 2 || s.Runtime.DefaultCommand[0] != "/bin/sh" {
		t.Errorf("DefaultCommand = %v", s.Runtime.DefaultCommand)
	}
	timeout, err := s.ExecTimeout()
	if err != nil || timeout != 5*time.Minute {
		t.Errorf("ExecTimeout = %v, %v", timeout, err)
	}
}

func TestLoadInvalidSettings(t *testing.T) {
	err := InvalidSettings()
	if err == nil {
		t.Fatal("invalid settings should fail")
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("error = %v", err)
	}
}

func TestRegistryFixturesMatchAddressDerivation(t *testing.T) {
	pool, err := network.ParsePool(config.DefaultPoolPrefix, config.DefaultMaxBlocks)
	if err != nil {
		t.Fatal(err)
	}

	valid, err := ValidRegistry()
	if err != nil {
		t.Fatalf("ValidRegistry() error: %v", err)
	}
	legacy, err := LegacyRegistry()
	if err != nil {
		t.Fatalf("LegacyRegistry() error: %v", err)
	}
	if len(valid) != 2 || len(legacy) != 2 {
		t.Fatalf("got %d valid and %d legacy records", len(valid), len(legacy))
	}

	for _, rec := range append(valid, legacy...) {
		want, err := pool.NetworkForBlock(rec.BlockNum)
		if err != nil {
			t.Fatal(err)
		}
		if rec.Network != want {
			t.Errorf("%s: network = %+v, want %+v", rec.ID, rec.Network, want)
		}
	}
}

func TestTestEnv_LegacyRegistry(t *testing.T) {
	env := NewTestEnv(t)
	env.InstallRegistry("legacy_registry.json")
	env.Runtime.SetAlive(3100, true)

	ctx := context.Background()
	if _, err := env.Manager.CollectGarbage(ctx, false); err != nil {
		t.Fatal(err)
	}
	list, err := env.Manager.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d sandboxes, want 2", len(list))
	}

	sb := env.CreateSandbox(sandbox.CreateOptions{})
	if sb.Index != 3 {
		t.Errorf("index = %d, want 3", sb.Index)
	}

	report, err := env.Manager.Cleanup(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Removed) != 1 || report.Removed[0].ID != "legacy-0002" {
		t.Errorf("removed = %+v", report.Removed)
	}
}

func TestTestEnv_ValidRegistryHighWaterMark(t *testing.T) {
	env := NewTestEnv(t)
	env.InstallRegistry("valid_registry.json")

	report, err := env.Manager.CollectGarbage(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Restored) != 2 {
		t.Errorf("restored %d markers, want 2", len(report.Restored))
	}

	sb := env.CreateSandbox(sandbox.CreateOptions{Name: "next"})
	if sb.Index != 5 {
		t.Errorf("index = %d, want 5 from the persisted high-water mark", sb.Index)
	}
	if sb.BlockNum != 1 {
		t.Errorf("block = %d, want the free gap 1", sb.BlockNum)
	}
}

func TestTestEnv_NamespaceRuntimeUsesMocks(t *testing.T) {
	env := NewTestEnv(t)

	testApp, err := app.New(app.WithPaths(env.Paths), app.WithSettings(env.Settings))
	if err != nil {
		t.Fatalf("app.New failed: %v", err)
	}
	sb, err := testApp.Manager.Create(context.Background(), sandbox.CreateOptions{Name: "real"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	cmd, ok := env.Launcher.LastCommand()
	if !ok || cmd.Path != config.DefaultRuntimeBinary {
		t.Fatalf("launcher command = %+v, want %s", cmd, config.DefaultRuntimeBinary)
	}
	if sb.PID != 1000 || sb.Status != health.StatusRunning {
		t.Errorf("pid = %d status = %s, want mock pid 1000 running", sb.PID, sb.Status)
	}

	env.Processes.SetAlive(sb.PID, false)
	got, _, err := testApp.Manager.Get(context.Background(), "real")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != health.StatusExited {
		t.Errorf("status = %s, want exited", got.Status)
	}

	env.Cleanup()
	if system.DefaultLauncher() == system.Launcher(env.Launcher) {
		t.Error("Cleanup should restore the OS launcher")
	}
}
