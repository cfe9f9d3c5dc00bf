package runtime

import (
	"context"
	"sync"
)

// MockRuntime is a mock implementation of Runtime for testing
type MockRuntime struct {
	mu sync.RWMutex

	// Processes tracks which pids are alive
	Processes map[int]bool

	// NextPID is returned by the next Spawn and then incremented
	NextPID int

	// ExecResults maps pids to predefined exec results
	ExecResults map[int]*ExecResult

	// Errors allows injecting errors for specific operations
	Errors map[string]error

	// CallLog records all method calls for verification
	CallLog []MockCall
}

// MockCall represents a recorded method call
type MockCall struct {
	Method string
	Args   []interface{}
}

// NewMockRuntime creates a new mock runtime
func NewMockRuntime() *MockRuntime {
	return &MockRuntime{
		Processes:   make(map[int]bool),
		NextPID:     1000,
		ExecResults: make(map[int]*ExecResult),
		Errors:      make(map[string]error),
		CallLog:     make([]MockCall, 0),
	}
}

func (m *MockRuntime) record(method string, args ...interface{}) {
	m.CallLog = append(m.CallLog, MockCall{Method: method, Args: args})
}

// SetError sets an error to be returned for a specific operation
func (m *MockRuntime) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[operation] = err
}

// ClearError removes an injected error for an operation
func (m *MockRuntime) ClearError(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Errors, operation)
}

// SetExecResult sets the result for exec operations on a pid
func (m *MockRuntime) SetExecResult(pid int, result *ExecResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExecResults[pid] = result
}

// SetAlive marks a pid as running or exited
func (m *MockRuntime) SetAlive(pid int, alive bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if alive {
		m.Processes[pid] = true
	} else {
		delete(m.Processes, pid)
	}
}

// GetCalls returns all recorded calls
func (m *MockRuntime) GetCalls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]MockCall, len(m.CallLog))
	copy(calls, m.CallLog)
	return calls
}

// GetCallsFor returns all calls for a specific method
func (m *MockRuntime) GetCallsFor(method string) []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var calls []MockCall
	for _, call := range m.CallLog {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

// Reset clears all state
func (m *MockRuntime) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Processes = make(map[int]bool)
	m.ExecResults = make(map[int]*ExecResult)
	m.Errors = make(map[string]error)
	m.CallLog = make([]MockCall, 0)
}

// Name returns the runtime identifier
func (m *MockRuntime) Name() string {
	return "mock"
}

// Spawn records the options and hands out the next pid as alive
func (m *MockRuntime) Spawn(ctx context.Context, opts SpawnOptions) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Spawn", opts)

	if err, ok := m.Errors["Spawn"]; ok {
		return 0, err
	}

	pid := m.NextPID
	m.NextPID++
	m.Processes[pid] = true
	return pid, nil
}

// IsAlive reports whether pid is tracked as running
func (m *MockRuntime) IsAlive(pid int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return pid > 0 && m.Processes[pid]
}

// Terminate marks pid as exited
func (m *MockRuntime) Terminate(pid int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Terminate", pid)

	if err, ok := m.Errors["Terminate"]; ok {
		return err
	}
	delete(m.Processes, pid)
	return nil
}

// Exec returns the result registered for pid, or an empty success. With an
// injected error the registered result, if any, comes back as partial
// output alongside it.
func (m *MockRuntime) Exec(ctx context.Context, pid int, command []string, opts ExecOptions) (*ExecResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Exec", pid, command, opts)

	result, hasResult := m.ExecResults[pid]
	if err, ok := m.Errors["Exec"]; ok {
		if !hasResult {
			return nil, err
		}
		r := *result
		return &r, err
	}
	if hasResult {
		r := *result
		return &r, nil
	}
	return &ExecResult{}, nil
}

// ExecInteractive records the call
func (m *MockRuntime) ExecInteractive(ctx context.Context, pid int, command []string, opts ExecOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("ExecInteractive", pid, command, opts)

	if err, ok := m.Errors["ExecInteractive"]; ok {
		return err
	}
	return nil
}

var _ Runtime = (*MockRuntime)(nil)
