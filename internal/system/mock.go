package system

import (
	"context"
	"sync"

	"golang.org/x/sys/unix"
)

// MockProcessTable implements ProcessTable for testing. Pids in Live answer
// signal 0; a terminating signal removes the pid from Live.
type MockProcessTable struct {
	mu sync.Mutex

	Live map[int]bool

	// Signals records every signal sent.
	Signals []MockSignal

	// SignalErr is returned for non-zero signals if set.
	SignalErr error
}

// MockSignal records a sent signal.
type MockSignal struct {
	PID    int
	Signal unix.Signal
}

// NewMockProcessTable creates a MockProcessTable where pids are live.
func NewMockProcessTable(pids ...int) *MockProcessTable {
	m := &MockProcessTable{Live: make(map[int]bool)}
	for _, pid := range pids {
		m.Live[pid] = true
	}
	return m
}

// SetAlive marks pid as running or exited.
func (m *MockProcessTable) SetAlive(pid int, alive bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if alive {
		m.Live[pid] = true
	} else {
		delete(m.Live, pid)
	}
}

func (m *MockProcessTable) Signal(pid int, sig unix.Signal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sig != 0 {
		m.Signals = append(m.Signals, MockSignal{PID: pid, Signal: sig})
		if m.SignalErr != nil {
			return m.SignalErr
		}
	}
	if !m.Live[pid] {
		return unix.ESRCH
	}
	if sig == unix.SIGTERM || sig == unix.SIGKILL {
		delete(m.Live, pid)
	}
	return nil
}

// MockLauncher implements Launcher for testing.
type MockLauncher struct {
	mu sync.Mutex

	// Commands records every command in call order.
	Commands []Command

	// NextPID is returned by the next Start and then incremented.
	NextPID int

	// Processes, if set, gets each started pid marked live.
	Processes *MockProcessTable

	// Error injection
	StartErr       error
	RunErr         error
	InteractiveErr error

	// RunResult is returned by Run when RunErr is nil.
	RunResult Result
}

// NewMockLauncher creates a MockLauncher handing out pids from 1000.
func NewMockLauncher() *MockLauncher {
	return &MockLauncher{NextPID: 1000}
}

func (m *MockLauncher) Start(cmd Command) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, cmd)
	if m.StartErr != nil {
		return 0, m.StartErr
	}
	pid := m.NextPID
	m.NextPID++
	if m.Processes != nil {
		m.Processes.SetAlive(pid, true)
	}
	return pid, nil
}

func (m *MockLauncher) Run(ctx context.Context, cmd Command) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, cmd)
	if m.RunErr != nil {
		return nil, m.RunErr
	}
	result := m.RunResult
	return &result, nil
}

func (m *MockLauncher) RunInteractive(ctx context.Context, cmd Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Commands = append(m.Commands, cmd)
	return m.InteractiveErr
}

// LastCommand returns the most recently recorded command.
func (m *MockLauncher) LastCommand() (Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Commands) == 0 {
		return Command{}, false
	}
	return m.Commands[len(m.Commands)-1], true
}

// Reset clears all recorded commands.
func (m *MockLauncher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = nil
}
