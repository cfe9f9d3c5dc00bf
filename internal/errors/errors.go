package errors

import (
	"errors"
	"fmt"
)

// Exit codes for forage-ns
const (
	ExitSuccess           = 0
	ExitGeneralError      = 1
	ExitSandboxNotFound   = 2
	ExitPoolExhausted     = 3
	ExitSpawnFailed       = 4
	ExitNoPid             = 5
	ExitConfigError       = 6
	ExitExecFailed        = 7
	ExitSandboxNotRunning = 8
)

// ForageError is the base error type for forage-ns
type ForageError struct {
	Code    int
	Message string
	Cause   error

	// Silent errors only carry an exit code; the CLI prints nothing for them.
	Silent bool
}

func (e *ForageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ForageError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a ForageError of the same kind. Kinds are
// identified by exit code, so errors.Is(err, ErrNoPid) holds for any
// error built by NoPid.
func (e *ForageError) Is(target error) bool {
	t, ok := target.(*ForageError)
	if !ok {
		return false
	}
	return t.Code == e.Code && t.Code != ExitGeneralError && !e.Silent && !t.Silent
}

// ExitCode returns the exit code for this error
func (e *ForageError) ExitCode() int {
	return e.Code
}

// Sentinel kinds for errors.Is checks.
var (
	ErrSandboxNotFound   = New(ExitSandboxNotFound, "sandbox not found")
	ErrPoolExhausted     = New(ExitPoolExhausted, "ip pool exhausted")
	ErrSpawnFailed       = New(ExitSpawnFailed, "sandbox spawn failed")
	ErrNoPid             = New(ExitNoPid, "sandbox has no pid")
	ErrConfig            = New(ExitConfigError, "configuration error")
	ErrExecFailed        = New(ExitExecFailed, "exec failed")
	ErrSandboxNotRunning = New(ExitSandboxNotRunning, "sandbox is not running")
)

// New creates a new ForageError
func New(code int, message string) *ForageError {
	return &ForageError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a ForageError
func Wrap(code int, message string, cause error) *ForageError {
	return &ForageError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Common error constructors

// SandboxNotFound returns an error for a missing sandbox
func SandboxNotFound(ref string) *ForageError {
	return New(ExitSandboxNotFound, fmt.Sprintf("sandbox not found: %s", ref))
}

// PoolExhausted returns an error when no free address block is left
func PoolExhausted(ceiling int) *ForageError {
	return New(ExitPoolExhausted, fmt.Sprintf("ip pool exhausted: all %d blocks allocated", ceiling))
}

// SpawnFailed returns an error for a sandbox process that could not be started
func SpawnFailed(name string, cause error) *ForageError {
	return Wrap(ExitSpawnFailed, fmt.Sprintf("failed to spawn sandbox %s", name), cause)
}

// NoPid returns an error for a sandbox that never recorded a process id
func NoPid(ref string) *ForageError {
	return New(ExitNoPid, fmt.Sprintf("sandbox %s has no pid", ref))
}

// SandboxNotRunning returns an error when a sandbox exists but its process is gone
func SandboxNotRunning(ref string, pid int) *ForageError {
	return New(ExitSandboxNotRunning, fmt.Sprintf("sandbox %s is not running (pid %d)", ref, pid))
}

// ExecFailed returns an error when the namespace entry helper could not run
func ExecFailed(ref string, cause error) *ForageError {
	return Wrap(ExitExecFailed, fmt.Sprintf("exec in sandbox %s failed", ref), cause)
}

// ConfigError returns an error for configuration issues
func ConfigError(message string, cause error) *ForageError {
	return Wrap(ExitConfigError, message, cause)
}

// ExitStatus returns a silent error that makes the CLI exit with the status
// of a command run inside a sandbox.
func ExitStatus(code int) *ForageError {
	return &ForageError{Code: code, Message: fmt.Sprintf("exit status %d", code), Silent: true}
}

// IsSilent reports whether err should be reported by exit code alone.
func IsSilent(err error) bool {
	var forageErr *ForageError
	return errors.As(err, &forageErr) && forageErr.Silent
}

// ValidationError returns an error for input validation failures
func ValidationError(message string) *ForageError {
	return New(ExitGeneralError, message)
}

// GetExitCode extracts the exit code from an error
func GetExitCode(err error) int {
	var forageErr *ForageError
	if errors.As(err, &forageErr) {
		return forageErr.ExitCode()
	}
	return ExitGeneralError
}

// Is checks if an error is of a specific type
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
