// Package health derives sandbox status from process liveness.
//
// Status is never persisted. It is recomputed from the recorded pid on
// every read:
//
//	StatusUnknown - no pid was recorded
//	StatusRunning - the pid answers a zero signal
//	StatusExited  - the pid no longer answers
//
// StatusCreating and StatusFailed exist for completeness but are not
// produced by Observe.
//
//	proc := health.Observe(rt, record.PID)
//	if proc.Stale() { ... }
package health
