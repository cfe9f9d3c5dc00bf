// Package runtime owns the OS processes behind sandboxes.
//
// NamespaceRuntime launches the external sandbox runtime binary detached
// in its own session:
//
//	forage-sandbox --workspace <dir> --name <name> -- <command...>
//
// The child inherits the supervisor's environment, then the caller's
// variables, then FORAGE_SANDBOX=1 and the FORAGE_SANDBOX_* network
// variables. Its output goes to a per-sandbox log file.
//
// Liveness is a zero signal and termination is SIGTERM; a pid that is
// already gone terminates successfully.
//
// Exec enters the sandbox with nsenter:
//
//	nsenter --target <pid> --mount --uts --ipc --net --pid --wd=<dir> -- <command...>
//
// Output is buffered in full. A command killed by a signal reports
// 128+signal as its exit code.
//
// # Mock Runtime
//
// For testing, use NewMockRuntime() to get an in-memory implementation with
// injectable errors and a call log.
package runtime
