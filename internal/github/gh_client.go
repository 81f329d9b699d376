package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/cexll/sticky/internal/github/comment"
)

var ghStatusPattern = regexp.MustCompile(`\(HTTP (\d{3})\)`)

// GHCLIClient implements comment.Client by shelling out to `gh api`.
// Useful on CI runners where gh is already authenticated.
type GHCLIClient struct {
	runner CommandRunner
	token  string
}

// NewGHCLIClient creates a gh-backed client. An empty token leaves gh's own
// authentication in place.
func NewGHCLIClient(token string) *GHCLIClient {
	return &GHCLIClient{runner: &RealCommandRunner{}, token: token}
}

// NewGHCLIClientWithRunner creates a gh-backed client with a custom runner.
func NewGHCLIClientWithRunner(runner CommandRunner, token string) *GHCLIClient {
	return &GHCLIClient{runner: runner, token: token}
}

// ListComments returns one page of comments.
func (c *GHCLIClient) ListComments(ctx context.Context, thread comment.Thread, page, perPage int) ([]comment.Comment, error) {
	path := fmt.Sprintf("%s?per_page=%d&page=%d", issueCommentsPath(thread), perPage, page)
	output, err := c.api(ctx, "list comments", http.MethodGet, path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(output)) == 0 {
		return []comment.Comment{}, nil
	}

	var items []restComment
	if err := json.Unmarshal(output, &items); err != nil {
		return nil, &comment.MalformedResponseError{Op: "list comments", Err: err}
	}

	comments := make([]comment.Comment, 0, len(items))
	for _, item := range items {
		comments = append(comments, comment.Comment{ID: item.ID, Body: item.Body})
	}
	return comments, nil
}

// CreateComment creates a comment and returns it
func (c *GHCLIClient) CreateComment(ctx context.Context, thread comment.Thread, body string) (comment.Comment, error) {
	output, err := c.api(ctx, "create comment", http.MethodPost, issueCommentsPath(thread), "-f", "body="+body)
	if err != nil {
		return comment.Comment{}, err
	}
	return decodeComment("create comment", output)
}

// UpdateComment updates an existing comment
func (c *GHCLIClient) UpdateComment(ctx context.Context, thread comment.Thread, id int64, body string) (comment.Comment, error) {
	output, err := c.api(ctx, "update comment", http.MethodPatch, commentPath(thread, id), "-f", "body="+body)
	if err != nil {
		return comment.Comment{}, err
	}
	if len(bytes.TrimSpace(output)) == 0 {
		return comment.Comment{ID: id, Body: body}, nil
	}
	return decodeComment("update comment", output)
}

// DeleteComment deletes a comment
func (c *GHCLIClient) DeleteComment(ctx context.Context, thread comment.Thread, id int64) error {
	_, err := c.api(ctx, "delete comment", http.MethodDelete, commentPath(thread, id))
	return err
}

func (c *GHCLIClient) api(ctx context.Context, op, method, path string, extra ...string) ([]byte, error) {
	args := []string{"api", strings.TrimPrefix(path, "/"), "-X", method}
	args = append(args, extra...)

	var env []string
	if c.token != "" {
		env = []string{"GH_TOKEN=" + c.token}
	}

	output, err := c.runner.Run(ctx, env, "gh", args...)
	if err != nil {
		status := 0
		if m := ghStatusPattern.FindSubmatch(output); m != nil {
			status, _ = strconv.Atoi(string(m[1]))
		}
		return nil, &comment.TransportError{
			Op:         op,
			Method:     method,
			Path:       path,
			StatusCode: status,
			Err:        fmt.Errorf("gh api failed: %w\nOutput: %s", err, strings.TrimSpace(string(output))),
		}
	}
	return output, nil
}
