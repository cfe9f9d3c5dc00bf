package runtime

import (
	"fmt"
	"os/exec"
	goruntime "runtime"

	"github.com/firefly-engineering/firefly-forage/packages/forage-ns/internal/logging"
)

// Tool is a resolved external program the runtime depends on.
type Tool struct {
	Role       string // "runtime" or "nsenter"
	Configured string
	Path       string // resolved location, empty if not found
	Err        error
}

// Available reports whether the tool resolved.
func (t Tool) Available() bool {
	return t.Err == nil
}

// Detect resolves the runtime binary and nsenter helper on PATH.
func (r *NamespaceRuntime) Detect() []Tool {
	logging.Debug("detecting sandbox tools", "os", goruntime.GOOS)

	tools := []Tool{
		{Role: "runtime", Configured: r.Binary},
		{Role: "nsenter", Configured: r.Nsenter},
	}
	for i := range tools {
		path, err := exec.LookPath(tools[i].Configured)
		tools[i].Path = path
		tools[i].Err = err
		logging.Debug("resolved tool", "role", tools[i].Role, "path", path, "error", err)
	}
	return tools
}

// Preflight fails unless the OS supports namespaces and every tool resolved.
func (r *NamespaceRuntime) Preflight() error {
	if goruntime.GOOS != "linux" {
		return fmt.Errorf("unsupported operating system: %s (namespaces require linux)", goruntime.GOOS)
	}
	for _, tool := range r.Detect() {
		if !tool.Available() {
			return fmt.Errorf("%s %q not found: %w", tool.Role, tool.Configured, tool.Err)
		}
	}
	return nil
}
