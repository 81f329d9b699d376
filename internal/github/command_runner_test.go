package github

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestRealCommandRunner_Run(t *testing.T) {
	runner := &RealCommandRunner{}

	output, err := runner.Run(context.Background(), nil, "echo", "hello")
	if err != nil {
		t.Errorf("Run() unexpected error: %v", err)
	}
	if !strings.Contains(string(output), "hello") {
		t.Errorf("Run() output = %q, want to contain 'hello'", string(output))
	}
}

func TestRealCommandRunner_RunWithEnv(t *testing.T) {
	runner := &RealCommandRunner{}

	output, err := runner.Run(context.Background(), []string{"STICKY_TEST_VAR=marker-value"}, "sh", "-c", "echo $STICKY_TEST_VAR")
	if err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}
	if strings.TrimSpace(string(output)) != "marker-value" {
		t.Errorf("Run() output = %q, want marker-value", string(output))
	}
}

func TestRealCommandRunner_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (&RealCommandRunner{}).Run(ctx, nil, "sleep", "5"); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestMockCommandRunner_Run(t *testing.T) {
	tests := []struct {
		name       string
		setupMock  func(*MockCommandRunner)
		command    string
		args       []string
		env        []string
		wantOutput string
		wantErr    bool
	}{
		{
			name:       "default behavior (no func set)",
			setupMock:  func(m *MockCommandRunner) {},
			command:    "test",
			args:       []string{"arg1", "arg2"},
			wantOutput: "",
		},
		{
			name: "custom function returns output",
			setupMock: func(m *MockCommandRunner) {
				m.RunFunc = func(name string, args ...string) ([]byte, error) {
					return []byte("custom output"), nil
				}
			},
			command:    "test",
			args:       []string{"arg1"},
			env:        []string{"GH_TOKEN=abc"},
			wantOutput: "custom output",
		},
		{
			name: "custom function returns error",
			setupMock: func(m *MockCommandRunner) {
				m.RunFunc = func(name string, args ...string) ([]byte, error) {
					return nil, fmt.Errorf("command failed")
				}
			},
			command: "test",
			args:    []string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockCommandRunner()
			tt.setupMock(mock)

			output, err := mock.Run(context.Background(), tt.env, tt.command, tt.args...)

			if (err != nil) != tt.wantErr {
				t.Errorf("Run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if string(output) != tt.wantOutput {
				t.Errorf("Run() output = %q, want %q", string(output), tt.wantOutput)
			}

			if len(mock.Calls) != 1 {
				t.Fatalf("Expected 1 call, got %d", len(mock.Calls))
			}
			call := mock.Calls[0]
			if call.Name != tt.command {
				t.Errorf("Call name = %s, want %s", call.Name, tt.command)
			}
			if len(call.Args) != len(tt.args) {
				t.Errorf("Call args length = %d, want %d", len(call.Args), len(tt.args))
			}
			if len(call.Env) != len(tt.env) {
				t.Errorf("Call env = %v, want %v", call.Env, tt.env)
			}
		})
	}
}
