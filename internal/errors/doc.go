// Package errors provides typed errors with exit codes for forage-ns.
//
// # Error Types
//
// ForageError is the base error type that wraps an error with an exit code:
//
//	type ForageError struct {
//	    Code    int    // Exit code
//	    Message string // User-facing message
//	    Cause   error  // Wrapped error
//	}
//
// # Exit Codes
//
//	ExitSuccess           = 0  // Success
//	ExitGeneralError      = 1  // General/unknown errors
//	ExitSandboxNotFound   = 2  // No sandbox matches the reference
//	ExitPoolExhausted     = 3  // No free address block
//	ExitSpawnFailed       = 4  // Sandbox process could not be started
//	ExitNoPid             = 5  // Sandbox never recorded a pid
//	ExitConfigError       = 6  // Configuration error
//	ExitExecFailed        = 7  // Namespace entry helper failed to run
//	ExitSandboxNotRunning = 8  // Sandbox pid no longer answers
//
// # Kinds
//
// Each non-general code doubles as an error kind. The Err* sentinels match
// any ForageError with the same code, so callers can tell "not found"
// apart from "no pid" without string matching:
//
//	if errors.Is(err, errors.ErrNoPid) { ... }
//
// # Extracting Exit Codes
//
//	if err != nil {
//	    os.Exit(errors.GetExitCode(err))
//	}
package errors
