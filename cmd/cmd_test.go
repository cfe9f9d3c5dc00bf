package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/config"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/errors"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/logging"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/runtime"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/sandbox"
	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/testutil"
)

// resetHelp clears the help flag cobra leaves set after a --help run.
func resetHelp(c *cobra.Command) {
	if f := c.Flags().Lookup("help"); f != nil {
		_ = f.Value.Set("false")
	}
	for _, sub := range c.Commands() {
		resetHelp(sub)
	}
}

func executeCommand(args ...string) (string, string, error) {
	// Reset flag values before each test
	createName = ""
	createWorkspace = ""
	createEnv = nil
	createCorrelationID = ""
	execWorkdir = ""
	execEnv = nil
	execShell = ""
	gcForce = false
	pickSimple = false
	auditLogJSON = false
	monitorInterval = 5 * time.Second
	verbose = false
	jsonOutput = false
	configDir = config.DefaultConfigDir
	stateDir = ""
	outputFormat = formatTable
	resetHelp(rootCmd)

	cmd := rootCmd
	cmd.SetArgs(args)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	logging.SetUserOutput(&stdout, &stderr)

	err := cmd.Execute()

	// Reset args for next test
	cmd.SetArgs(nil)
	cmd.SetOut(nil)
	cmd.SetErr(nil)
	logging.SetUserOutput(nil, nil)

	return stdout.String(), stderr.String(), err
}

func decodeSummary(t *testing.T, data string) *sandbox.Summary {
	t.Helper()

	var sb sandbox.Summary
	if err := json.Unmarshal([]byte(data), &sb); err != nil {
		t.Fatalf("failed to decode summary %q: %v", data, err)
	}
	return &sb
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("Help command failed: %v", err)
	}

	if !strings.Contains(stdout, "forage-ns") {
		t.Error("Help output should contain 'forage-ns'")
	}

	if !strings.Contains(stdout, "sandbox") {
		t.Error("Help output should mention sandbox")
	}

	for _, cmd := range []string{"create", "list", "get", "delete", "exec", "ip", "cleanup", "gc", "shell", "pick", "audit-log", "runtime", "monitor"} {
		if !strings.Contains(stdout, cmd) {
			t.Errorf("Help output should list %q", cmd)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	if err != nil {
		t.Fatalf("Help failed: %v", err)
	}

	for _, flag := range []string{"--verbose", "--json", "--config", "--state-dir", "--output"} {
		if !strings.Contains(stdout, flag) {
			t.Errorf("Should have %s flag", flag)
		}
	}
}

func TestCreateCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("create", "--help")
	if err != nil {
		t.Fatalf("Help command failed: %v", err)
	}

	for _, flag := range []string{"--name", "--workspace", "--env", "--correlation-id"} {
		if !strings.Contains(stdout, flag) {
			t.Errorf("Create help should mention %s", flag)
		}
	}
}

func TestExecCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("exec", "--help")
	if err != nil {
		t.Fatalf("Help command failed: %v", err)
	}

	if !strings.Contains(stdout, "Execute") || !strings.Contains(stdout, "--shell") {
		t.Error("Exec help should describe execution and --shell")
	}
}

func TestAliases(t *testing.T) {
	testutil.NewTestEnv(t)

	for _, args := range [][]string{{"ps"}, {"list"}} {
		if _, _, err := executeCommand(args...); err != nil {
			t.Errorf("%v failed: %v", args, err)
		}
	}

	for _, alias := range []string{"status", "down"} {
		_, _, err := executeCommand(alias, "missing")
		if errors.GetExitCode(err) != errors.ExitSandboxNotFound {
			t.Errorf("%s missing: exit code = %d, want %d", alias, errors.GetExitCode(err), errors.ExitSandboxNotFound)
		}
	}
}

func TestCommandRequiresArgs(t *testing.T) {
	testutil.NewTestEnv(t)

	tests := []string{"get", "delete", "exec", "ip", "shell", "audit-log"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			if _, _, err := executeCommand(name); err == nil {
				t.Errorf("%s without arguments should fail", name)
			}
		})
	}
}

func TestInvalidOutputFormat(t *testing.T) {
	testutil.NewTestEnv(t)

	_, _, err := executeCommand("list", "-o", "xml")
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("err = %v, want unknown output format", err)
	}
}

func TestCreateCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	ws := env.CreateWorkspace("project")

	stdout, _, err := executeCommand("create", "-o", "json",
		"--name", "web", "--workspace", ws, "--env", "MODE=dev", "--correlation-id", "job-7",
		"--", "/bin/sleep", "60")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	sb := decodeSummary(t, stdout)
	if sb.Name != "web" || sb.Index != 0 || sb.Workspace != ws || sb.CorrelationID != "job-7" {
		t.Errorf("summary = %+v", sb)
	}
	if sb.Network.HostIP != "10.201.0.1" || sb.Network.SandboxIP != "10.201.0.2" {
		t.Errorf("network = %+v", sb.Network)
	}

	calls := env.Runtime.GetCallsFor("Spawn")
	if len(calls) != 1 {
		t.Fatalf("Spawn calls = %d, want 1", len(calls))
	}
	opts := calls[0].Args[0].(runtime.SpawnOptions)
	if strings.Join(opts.Command, " ") != "/bin/sleep 60" {
		t.Errorf("command = %v", opts.Command)
	}
	if len(opts.Env) != 1 || opts.Env[0] != "MODE=dev" {
		t.Errorf("env = %v", opts.Env)
	}
}

func TestCreateCommand_Table(t *testing.T) {
	testutil.NewTestEnv(t)

	stdout, _, err := executeCommand("create")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for _, want := range []string{"Created sandbox sandbox-0", "10.201.0.2/30"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestCreateCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code int
	}{
		{"command without dash", []string{"create", "/bin/sh"}, errors.ExitGeneralError},
		{"invalid name", []string{"create", "--name", "Not Valid"}, errors.ExitGeneralError},
		{"invalid env", []string{"create", "--env", "NOEQUALS"}, errors.ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewTestEnv(t)

			_, _, err := executeCommand(tt.args...)
			if err == nil {
				t.Fatal("expected an error")
			}
			if code := errors.GetExitCode(err); code != tt.code {
				t.Errorf("exit code = %d, want %d", code, tt.code)
			}
			if len(env.Runtime.GetCallsFor("Spawn")) != 0 {
				t.Error("nothing should be spawned")
			}
		})
	}
}

func TestCreateCommand_SpawnFailure(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.Runtime.SetError("Spawn", errors.New(errors.ExitGeneralError, "boom"))

	_, _, err := executeCommand("create")
	if code := errors.GetExitCode(err); code != errors.ExitSpawnFailed {
		t.Errorf("exit code = %d, want %d", code, errors.ExitSpawnFailed)
	}
}

func TestListCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)

	stdout, _, err := executeCommand("list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(stdout, "No sandboxes found") {
		t.Errorf("empty list output = %q", stdout)
	}

	stdout, _, err = executeCommand("list", "-o", "json")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.TrimSpace(stdout) != "[]" {
		t.Errorf("empty JSON list = %q, want []", stdout)
	}

	env.CreateSandbox(sandbox.CreateOptions{Name: "web"})
	dead := env.CreateSandbox(sandbox.CreateOptions{Name: "old"})
	env.KillSandbox(dead)

	stdout, _, err = executeCommand("list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, want := range []string{"INDEX", "web", "10.201.0.2", "running", "old", "10.201.0.6", "exited", "2 sandboxes: 1 running, 1 exited"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("table missing %q:\n%s", want, stdout)
		}
	}

	stdout, _, err = executeCommand("list", "-o", "yaml")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, want := range []string{"name: web", "status: running", "sandboxIp: 10.201.0.6"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("yaml missing %q:\n%s", want, stdout)
		}
	}
}

func TestGetCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	created := env.CreateSandbox(sandbox.CreateOptions{Name: "web", CorrelationID: "tab-1"})

	for _, ref := range []string{created.ID, "0", "web"} {
		stdout, _, err := executeCommand("get", ref, "-o", "json")
		if err != nil {
			t.Fatalf("get %s failed: %v", ref, err)
		}
		if sb := decodeSummary(t, stdout); sb.ID != created.ID {
			t.Errorf("get %s returned %s", ref, sb.ID)
		}
	}

	stdout, _, err := executeCommand("get", "web")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	for _, want := range []string{"Sandbox: web", "Correlation ID: tab-1", "Block: 0", "Status: ● running"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestNotFoundExitCodes(t *testing.T) {
	testutil.NewTestEnv(t)

	for _, args := range [][]string{
		{"get", "missing"},
		{"delete", "missing"},
		{"ip", "7"},
		{"exec", "missing", "--", "true"},
		{"shell", "missing"},
	} {
		_, _, err := executeCommand(args...)
		if code := errors.GetExitCode(err); code != errors.ExitSandboxNotFound {
			t.Errorf("%v: exit code = %d, want %d", args, code, errors.ExitSandboxNotFound)
		}
	}
}

func TestDeleteCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	sb := env.CreateSandbox(sandbox.CreateOptions{Name: "web"})

	stdout, _, err := executeCommand("delete", "web")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !strings.Contains(stdout, "Removed sandbox web") {
		t.Errorf("output = %q", stdout)
	}

	if len(env.Runtime.GetCallsFor("Terminate")) != 1 {
		t.Error("delete should terminate the process")
	}
	if env.Runtime.IsAlive(sb.PID) {
		t.Error("process should be gone")
	}

	_, _, err = executeCommand("delete", "web")
	if !errors.Is(err, errors.ErrSandboxNotFound) {
		t.Errorf("second delete err = %v, want not found", err)
	}
}

func TestIPCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.CreateSandbox(sandbox.CreateOptions{})
	env.CreateSandbox(sandbox.CreateOptions{})

	stdout, _, err := executeCommand("ip", "1")
	if err != nil {
		t.Fatalf("ip failed: %v", err)
	}
	if strings.TrimSpace(stdout) != "10.201.0.6" {
		t.Errorf("ip 1 = %q, want 10.201.0.6", stdout)
	}

	if _, _, err := executeCommand("ip", "abc"); err == nil {
		t.Error("non-numeric index should fail")
	}
}

func TestExecCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	sb := env.CreateSandbox(sandbox.CreateOptions{Name: "web"})
	env.Runtime.SetExecResult(sb.PID, &runtime.ExecResult{Stdout: "hello\n", Stderr: "warn\n"})

	stdout, stderr, err := executeCommand("exec", "web", "--workdir", "/tmp", "--env", "A=1", "--", "echo", "hello")
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}
	if stdout != "hello\n" || stderr != "warn\n" {
		t.Errorf("stdout = %q, stderr = %q", stdout, stderr)
	}

	calls := env.Runtime.GetCallsFor("Exec")
	if len(calls) != 1 {
		t.Fatalf("Exec calls = %d, want 1", len(calls))
	}
	command := calls[0].Args[1].([]string)
	opts := calls[0].Args[2].(runtime.ExecOptions)
	if strings.Join(command, " ") != "echo hello" {
		t.Errorf("command = %v", command)
	}
	if opts.WorkingDir != "/tmp" || len(opts.Env) != 1 || opts.Env[0] != "A=1" {
		t.Errorf("opts = %+v", opts)
	}
}

func TestExecCommand_ExitStatus(t *testing.T) {
	env := testutil.NewTestEnv(t)
	sb := env.CreateSandbox(sandbox.CreateOptions{Name: "web"})
	env.Runtime.SetExecResult(sb.PID, &runtime.ExecResult{ExitCode: 3, Stdout: "partial\n"})

	stdout, _, err := executeCommand("exec", "web", "--", "false")
	if stdout != "partial\n" {
		t.Errorf("stdout = %q", stdout)
	}
	if code := errors.GetExitCode(err); code != 3 {
		t.Errorf("exit code = %d, want 3", code)
	}
	if !errors.IsSilent(err) {
		t.Error("a non-zero command status should not be reported as an error message")
	}
}

func TestExecCommand_TimeoutKeepsOutput(t *testing.T) {
	env := testutil.NewTestEnv(t)
	sb := env.CreateSandbox(sandbox.CreateOptions{Name: "web"})
	env.Runtime.SetExecResult(sb.PID, &runtime.ExecResult{ExitCode: 137, Stdout: "step 1\n", Stderr: "slow\n"})
	env.Runtime.SetError("Exec", fmt.Errorf("nsenter interrupted: %w", context.DeadlineExceeded))

	stdout, stderr, err := executeCommand("exec", "web", "--", "sleep", "600")
	if !errors.Is(err, errors.ErrExecFailed) {
		t.Fatalf("err = %v, want ErrExecFailed", err)
	}
	if errors.IsSilent(err) {
		t.Error("a timeout should be reported, not folded into the exit status")
	}
	if stdout != "step 1\n" || stderr != "slow\n" {
		t.Errorf("stdout = %q, stderr = %q, want the partial output", stdout, stderr)
	}
}

func TestExecCommand_JSON(t *testing.T) {
	env := testutil.NewTestEnv(t)
	sb := env.CreateSandbox(sandbox.CreateOptions{Name: "web"})
	env.Runtime.SetExecResult(sb.PID, &runtime.ExecResult{ExitCode: 0, Stdout: "ok"})

	stdout, _, err := executeCommand("exec", "web", "-o", "json", "--", "true")
	if err != nil {
		t.Fatalf("exec failed: %v", err)
	}

	var result runtime.ExecResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if result.Stdout != "ok" || result.ExitCode != 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestExecCommand_Shell(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.CreateSandbox(sandbox.CreateOptions{Name: "web"})

	if _, _, err := executeCommand("exec", "web", "--shell", `sh -c "echo 'a b'"`); err != nil {
		t.Fatalf("exec failed: %v", err)
	}

	calls := env.Runtime.GetCallsFor("Exec")
	if len(calls) != 1 {
		t.Fatalf("Exec calls = %d, want 1", len(calls))
	}
	command := calls[0].Args[1].([]string)
	want := []string{"sh", "-c", "echo 'a b'"}
	if len(command) != len(want) {
		t.Fatalf("command = %q, want %q", command, want)
	}
	for i := range want {
		if command[i] != want[i] {
			t.Errorf("command[%d] = %q, want %q", i, command[i], want[i])
		}
	}
}

func TestExecCommand_Usage(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.CreateSandbox(sandbox.CreateOptions{Name: "web"})

	for _, args := range [][]string{
		{"exec", "web"},
		{"exec", "web", "--shell", "ls", "--", "ls"},
		{"exec", "web", "--shell", `echo "unterminated`},
	} {
		if _, _, err := executeCommand(args...); err == nil {
			t.Errorf("%v should fail", args)
		}
	}
	if len(env.Runtime.GetCallsFor("Exec")) != 0 {
		t.Error("no command should run")
	}
}

func TestExecCommand_NotRunning(t *testing.T) {
	env := testutil.NewTestEnv(t)
	sb := env.CreateSandbox(sandbox.CreateOptions{Name: "web"})
	env.KillSandbox(sb)

	_, _, err := executeCommand("exec", "web", "--", "true")
	if code := errors.GetExitCode(err); code != errors.ExitExecFailed {
		t.Errorf("exit code = %d, want %d", code, errors.ExitExecFailed)
	}
	if !errors.Is(err, errors.ErrSandboxNotRunning) {
		t.Errorf("err = %v, want a not-running cause", err)
	}
}

func TestShellCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	sb := env.CreateSandbox(sandbox.CreateOptions{Name: "web"})

	if _, _, err := executeCommand("shell", "web"); err != nil {
		t.Fatalf("shell failed: %v", err)
	}
	if _, _, err := executeCommand("shell", "web", "--", "/bin/zsh"); err != nil {
		t.Fatalf("shell failed: %v", err)
	}

	calls := env.Runtime.GetCallsFor("ExecInteractive")
	if len(calls) != 2 {
		t.Fatalf("ExecInteractive calls = %d, want 2", len(calls))
	}
	if pid := calls[0].Args[0].(int); pid != sb.PID {
		t.Errorf("pid = %d, want %d", pid, sb.PID)
	}
	if got := calls[0].Args[1].([]string); strings.Join(got, " ") != strings.Join(config.DefaultCommand, " ") {
		t.Errorf("default shell = %v", got)
	}
	if got := calls[1].Args[1].([]string); len(got) != 1 || got[0] != "/bin/zsh" {
		t.Errorf("explicit shell = %v", got)
	}
}

func TestCleanupCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.CreateSandbox(sandbox.CreateOptions{Name: "live"})
	dead := env.CreateSandbox(sandbox.CreateOptions{Name: "dead"})
	env.KillSandbox(dead)

	stdout, _, err := executeCommand("cleanup")
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if !strings.Contains(stdout, "removed dead") || !strings.Contains(stdout, "Removed 1 of 2") {
		t.Errorf("output = %q", stdout)
	}

	stdout, _, err = executeCommand("cleanup")
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if !strings.Contains(stdout, "nothing to clean up") {
		t.Errorf("second cleanup output = %q", stdout)
	}
}

func TestAuditLogCommand(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.CreateSandbox(sandbox.CreateOptions{Name: "web", CorrelationID: "tab-9"})

	if _, _, err := executeCommand("delete", "web"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	for _, ref := range []string{"web", "tab-9"} {
		stdout, _, err := executeCommand("audit-log", ref)
		if err != nil {
			t.Fatalf("audit-log %s failed: %v", ref, err)
		}
		if !strings.Contains(stdout, "create") || !strings.Contains(stdout, "destroy") {
			t.Errorf("audit-log %s output = %q", ref, stdout)
		}
	}

	stdout, _, err := executeCommand("audit-log", "web", "--jsonl")
	if err != nil {
		t.Fatalf("audit-log failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), stdout)
	}
	if !strings.Contains(lines[0], `"type":"create"`) {
		t.Errorf("first event = %s", lines[0])
	}

	stdout, _, err = executeCommand("audit-log", "nobody")
	if err != nil {
		t.Fatalf("audit-log failed: %v", err)
	}
	if !strings.Contains(stdout, "No events found") {
		t.Errorf("output = %q", stdout)
	}
}

func TestPickCommand_Simple(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.CreateSandbox(sandbox.CreateOptions{Name: "web"})

	stdout, _, err := executeCommand("pick", "--simple")
	if err != nil {
		t.Fatalf("pick failed: %v", err)
	}
	if !strings.Contains(stdout, "0. ● web (running)") {
		t.Errorf("output = %q", stdout)
	}
}

func TestRuntimeCommand(t *testing.T) {
	testutil.NewTestEnv(t)

	stdout, _, err := executeCommand("runtime")
	if err != nil {
		t.Fatalf("runtime failed: %v", err)
	}
	if !strings.Contains(stdout, "Active runtime: mock") {
		t.Errorf("output = %q", stdout)
	}
}

func TestMonitorCommand_InvalidInterval(t *testing.T) {
	testutil.NewTestEnv(t)

	if _, _, err := executeCommand("monitor", "--interval", "0s"); err == nil {
		t.Error("a zero interval should fail")
	}
}
