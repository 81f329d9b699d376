package github

import (
	"context"
	"os"
	"os/exec"
)

// CommandRunner is an interface for executing system commands
// This abstraction allows us to mock command execution in tests
type CommandRunner interface {
	// Run executes a command with extra environment variables and returns its combined output
	Run(ctx context.Context, env []string, name string, args ...string) ([]byte, error)
}

// RealCommandRunner is the production implementation using os/exec
type RealCommandRunner struct{}

// Run executes a command using os/exec. env is appended to the current environment.
func (r *RealCommandRunner) Run(ctx context.Context, env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	return cmd.CombinedOutput()
}

// MockCommandRunner is a test implementation that returns predefined responses
type MockCommandRunner struct {
	// RunFunc is called when Run is invoked
	RunFunc func(name string, args ...string) ([]byte, error)

	// Calls tracks all command invocations
	Calls []MockCall
}

// MockCall represents a single command invocation
type MockCall struct {
	Name string
	Args []string
	Env  []string
}

// Run executes the mock function
func (m *MockCommandRunner) Run(_ context.Context, env []string, name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, MockCall{Name: name, Args: args, Env: env})

	if m.RunFunc != nil {
		return m.RunFunc(name, args...)
	}

	return []byte(""), nil
}

// NewMockCommandRunner creates a new mock with default behavior
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		Calls: make([]MockCall, 0),
	}
}
