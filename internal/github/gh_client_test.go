package github

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/cexll/sticky/internal/github/comment"
)

func TestGHCLIClient_ListComments(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.RunFunc = func(name string, args ...string) ([]byte, error) {
		return []byte(`[{"id": 11, "body": "a"}, {"id": 12, "body": "b"}]`), nil
	}

	client := NewGHCLIClientWithRunner(runner, "tok")
	comments, err := client.ListComments(context.Background(), testThread, 2, 50)
	if err != nil {
		t.Fatalf("ListComments error: %v", err)
	}
	if len(comments) != 2 || comments[0].ID != 11 || comments[1].Body != "b" {
		t.Fatalf("unexpected comments: %+v", comments)
	}

	call := runner.Calls[0]
	want := []string{"api", "repos/owner/repo/issues/7/comments?per_page=50&page=2", "-X", "GET"}
	if call.Name != "gh" || !reflect.DeepEqual(call.Args, want) {
		t.Errorf("unexpected invocation: %s %v", call.Name, call.Args)
	}
	if !reflect.DeepEqual(call.Env, []string{"GH_TOKEN=tok"}) {
		t.Errorf("env = %v, want GH_TOKEN", call.Env)
	}
}

func TestGHCLIClient_Mutations(t *testing.T) {
	tests := []struct {
		name   string
		call   func(c *GHCLIClient) error
		output string
		want   []string
	}{
		{
			name: "create",
			call: func(c *GHCLIClient) error {
				got, err := c.CreateComment(context.Background(), testThread, "hello")
				if err == nil && got.ID != 5 {
					t.Errorf("created ID = %d, want 5", got.ID)
				}
				return err
			},
			output: `{"id": 5, "body": "hello"}`,
			want:   []string{"api", "repos/owner/repo/issues/7/comments", "-X", "POST", "-f", "body=hello"},
		},
		{
			name: "update",
			call: func(c *GHCLIClient) error {
				got, err := c.UpdateComment(context.Background(), testThread, 99, "updated body")
				if err == nil && (got.ID != 99 || got.Body != "updated body") {
					t.Errorf("updated = %+v", got)
				}
				return err
			},
			want: []string{"api", "repos/owner/repo/issues/comments/99", "-X", "PATCH", "-f", "body=updated body"},
		},
		{
			name: "delete",
			call: func(c *GHCLIClient) error {
				return c.DeleteComment(context.Background(), testThread, 99)
			},
			want: []string{"api", "repos/owner/repo/issues/comments/99", "-X", "DELETE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewMockCommandRunner()
			runner.RunFunc = func(name string, args ...string) ([]byte, error) {
				return []byte(tt.output), nil
			}
			client := NewGHCLIClientWithRunner(runner, "")

			if err := tt.call(client); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(runner.Calls) != 1 {
				t.Fatalf("expected 1 call, got %d", len(runner.Calls))
			}
			if !reflect.DeepEqual(runner.Calls[0].Args, tt.want) {
				t.Errorf("args = %v, want %v", runner.Calls[0].Args, tt.want)
			}
			if runner.Calls[0].Env != nil {
				t.Errorf("empty token should not set GH_TOKEN, got %v", runner.Calls[0].Env)
			}
		})
	}
}

func TestGHCLIClient_Errors(t *testing.T) {
	runner := NewMockCommandRunner()
	runner.RunFunc = func(name string, args ...string) ([]byte, error) {
		return []byte("gh: Not Found (HTTP 404)"), errors.New("exit status 1")
	}
	client := NewGHCLIClientWithRunner(runner, "")

	err := client.DeleteComment(context.Background(), testThread, 1)
	if !comment.IsTransportError(err) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if comment.StatusCode(err) != http.StatusNotFound {
		t.Errorf("status = %d, want 404", comment.StatusCode(err))
	}
	if !strings.Contains(err.Error(), "gh api failed") {
		t.Errorf("error should mention gh api: %v", err)
	}

	runner.RunFunc = func(name string, args ...string) ([]byte, error) {
		return []byte("not json"), nil
	}
	if _, err := client.ListComments(context.Background(), testThread, 1, 100); !comment.IsMalformedResponse(err) {
		t.Errorf("expected MalformedResponseError, got %v", err)
	}
}

func TestGHCLIClient_EmptyListOutput(t *testing.T) {
	client := NewGHCLIClientWithRunner(NewMockCommandRunner(), "")
	comments, err := client.ListComments(context.Background(), testThread, 1, 100)
	if err != nil || len(comments) != 0 {
		t.Errorf("ListComments = %v, %v", comments, err)
	}
}
