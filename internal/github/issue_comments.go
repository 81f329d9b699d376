package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cexll/sticky/internal/github/comment"
	gh "github.com/google/go-github/v66/github"
)

// IssueCommentClient implements comment.Client on top of go-github.
type IssueCommentClient struct {
	client *gh.Client
}

// NewIssueCommentClient wraps an authenticated go-github client.
func NewIssueCommentClient(client *gh.Client) *IssueCommentClient {
	return &IssueCommentClient{client: client}
}

// ListComments returns one page of comments, oldest first.
func (c *IssueCommentClient) ListComments(ctx context.Context, thread comment.Thread, page, perPage int) ([]comment.Comment, error) {
	opts := &gh.IssueListCommentsOptions{
		Sort:      gh.String("created"),
		Direction: gh.String("asc"),
		ListOptions: gh.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	items, resp, err := c.client.Issues.ListComments(ctx, thread.Owner, thread.Repo, thread.Number, opts)
	if err != nil {
		path := fmt.Sprintf("%s?per_page=%d&page=%d", issueCommentsPath(thread), perPage, page)
		return nil, classifyError("list comments", http.MethodGet, path, resp, err)
	}

	comments := make([]comment.Comment, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		comments = append(comments, comment.Comment{ID: item.GetID(), Body: item.GetBody()})
	}
	return comments, nil
}

// CreateComment posts a new issue comment.
func (c *IssueCommentClient) CreateComment(ctx context.Context, thread comment.Thread, body string) (comment.Comment, error) {
	created, resp, err := c.client.Issues.CreateComment(ctx, thread.Owner, thread.Repo, thread.Number, &gh.IssueComment{Body: &body})
	if err != nil {
		return comment.Comment{}, classifyError("create comment", http.MethodPost, issueCommentsPath(thread), resp, err)
	}
	if created == nil || created.ID == nil {
		return comment.Comment{}, &comment.MalformedResponseError{Op: "create comment", Err: errors.New("response has no comment id")}
	}
	return comment.Comment{ID: created.GetID(), Body: created.GetBody()}, nil
}

// UpdateComment edits an existing issue comment.
func (c *IssueCommentClient) UpdateComment(ctx context.Context, thread comment.Thread, id int64, body string) (comment.Comment, error) {
	edited, resp, err := c.client.Issues.EditComment(ctx, thread.Owner, thread.Repo, id, &gh.IssueComment{Body: &body})
	if err != nil {
		return comment.Comment{}, classifyError("update comment", http.MethodPatch, commentPath(thread, id), resp, err)
	}
	if edited == nil || edited.ID == nil {
		return comment.Comment{ID: id, Body: body}, nil
	}
	return comment.Comment{ID: edited.GetID(), Body: edited.GetBody()}, nil
}

// DeleteComment removes an issue comment.
func (c *IssueCommentClient) DeleteComment(ctx context.Context, thread comment.Thread, id int64) error {
	resp, err := c.client.Issues.DeleteComment(ctx, thread.Owner, thread.Repo, id)
	if err != nil {
		return classifyError("delete comment", http.MethodDelete, commentPath(thread, id), resp, err)
	}
	return nil
}

func issueCommentsPath(thread comment.Thread) string {
	return fmt.Sprintf("/repos/%s/%s/issues/%d/comments", thread.Owner, thread.Repo, thread.Number)
}

func commentPath(thread comment.Thread, id int64) string {
	return fmt.Sprintf("/repos/%s/%s/issues/comments/%d", thread.Owner, thread.Repo, id)
}

// classifyError maps go-github failures onto the comment error taxonomy.
func classifyError(op, method, path string, resp *gh.Response, err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &comment.MalformedResponseError{Op: op, Err: err}
	}

	status := 0
	var apiErr *gh.ErrorResponse
	switch {
	case errors.As(err, &apiErr) && apiErr.Response != nil:
		status = apiErr.Response.StatusCode
	case resp != nil && resp.Response != nil:
		status = resp.StatusCode
	}

	return &comment.TransportError{
		Op:         op,
		Method:     method,
		Path:       path,
		StatusCode: status,
		Err:        err,
	}
}
