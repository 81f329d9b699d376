package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cexll/sticky/internal/github/comment"
)

const githubAPIBase = "https://api.github.com"

// Requester performs one REST call and returns the raw response body.
// It must return a *comment.TransportError for non-2xx responses.
type Requester func(ctx context.Context, method, path string, payload any) ([]byte, error)

// HTTPRequester is the default Requester, talking to the GitHub REST API.
type HTTPRequester struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewHTTPRequester creates a requester for baseURL (empty means api.github.com).
func NewHTTPRequester(baseURL, token string, timeout time.Duration) *HTTPRequester {
	if baseURL == "" {
		baseURL = githubAPIBase
	}
	return &HTTPRequester{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// Do implements Requester.
func (r *HTTPRequester) Do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", "sticky")
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &comment.TransportError{Op: "request", Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &comment.TransportError{Op: "read response", Method: method, Path: path, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode/100 != 2 {
		return nil, &comment.TransportError{
			Op:         "request",
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(b))),
		}
	}

	return b, nil
}

// RESTClient implements comment.Client by building REST paths and handing
// them to a Requester. Tests can swap the Requester for an in-memory fake.
type RESTClient struct {
	request Requester
}

// NewRESTClient creates a client that sends every call through request.
func NewRESTClient(request Requester) *RESTClient {
	return &RESTClient{request: request}
}

type restComment struct {
	ID   int64  `json:"id"`
	Body string `json:"body"`
}

// ListComments returns one page of comments.
func (c *RESTClient) ListComments(ctx context.Context, thread comment.Thread, page, perPage int) ([]comment.Comment, error) {
	path := fmt.Sprintf("%s?per_page=%d&page=%d", issueCommentsPath(thread), perPage, page)
	b, err := c.request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return []comment.Comment{}, nil
	}

	var items []restComment
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, &comment.MalformedResponseError{Op: "list comments", Err: err}
	}

	comments := make([]comment.Comment, 0, len(items))
	for _, item := range items {
		comments = append(comments, comment.Comment{ID: item.ID, Body: item.Body})
	}
	return comments, nil
}

// CreateComment posts a new comment.
func (c *RESTClient) CreateComment(ctx context.Context, thread comment.Thread, body string) (comment.Comment, error) {
	b, err := c.request(ctx, http.MethodPost, issueCommentsPath(thread), map[string]string{"body": body})
	if err != nil {
		return comment.Comment{}, err
	}
	return decodeComment("create comment", b)
}

// UpdateComment replaces a comment body.
func (c *RESTClient) UpdateComment(ctx context.Context, thread comment.Thread, id int64, body string) (comment.Comment, error) {
	b, err := c.request(ctx, http.MethodPatch, commentPath(thread, id), map[string]string{"body": body})
	if err != nil {
		return comment.Comment{}, err
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return comment.Comment{ID: id, Body: body}, nil
	}
	return decodeComment("update comment", b)
}

// DeleteComment removes a comment.
func (c *RESTClient) DeleteComment(ctx context.Context, thread comment.Thread, id int64) error {
	_, err := c.request(ctx, http.MethodDelete, commentPath(thread, id), nil)
	return err
}

func decodeComment(op string, b []byte) (comment.Comment, error) {
	var item restComment
	if err := json.Unmarshal(b, &item); err != nil {
		return comment.Comment{}, &comment.MalformedResponseError{Op: op, Err: err}
	}
	if item.ID == 0 {
		return comment.Comment{}, &comment.MalformedResponseError{Op: op, Err: errors.New("response has no comment id")}
	}
	return comment.Comment{ID: item.ID, Body: item.Body}, nil
}
