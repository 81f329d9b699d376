package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cexll/sticky/internal/github/comment"
	ghtest "github.com/cexll/sticky/internal/github/testing"
)

// memoryRequester is an in-process Requester. Its path patterns mirror the
// paths built by RESTClient; keep them in sync.
type memoryRequester struct {
	comments []restComment
	nextID   int64
	calls    []string
}

var (
	memListRe    = regexp.MustCompile(`^/repos/[^/]+/[^/]+/issues/\d+/comments\?per_page=(\d+)&page=(\d+)$`)
	memCreateRe  = regexp.MustCompile(`^/repos/[^/]+/[^/]+/issues/\d+/comments$`)
	memCommentRe = regexp.MustCompile(`^/repos/[^/]+/[^/]+/issues/comments/(\d+)$`)
)

func (m *memoryRequester) Do(_ context.Context, method, path string, payload any) ([]byte, error) {
	m.calls = append(m.calls, method+" "+path)
	body := ""
	if p, ok := payload.(map[string]string); ok {
		body = p["body"]
	}

	switch {
	case method == http.MethodGet && memListRe.MatchString(path):
		match := memListRe.FindStringSubmatch(path)
		perPage, _ := strconv.Atoi(match[1])
		page, _ := strconv.Atoi(match[2])
		out := []restComment{}
		start := (page - 1) * perPage
		if start < len(m.comments) {
			end := start + perPage
			if end > len(m.comments) {
				end = len(m.comments)
			}
			out = m.comments[start:end]
		}
		return json.Marshal(out)
	case method == http.MethodPost && memCreateRe.MatchString(path):
		m.nextID++
		c := restComment{ID: m.nextID, Body: body}
		m.comments = append(m.comments, c)
		return json.Marshal(c)
	case memCommentRe.MatchString(path):
		id, _ := strconv.ParseInt(memCommentRe.FindStringSubmatch(path)[1], 10, 64)
		for i := range m.comments {
			if m.comments[i].ID != id {
				continue
			}
			if method == http.MethodDelete {
				m.comments = append(m.comments[:i], m.comments[i+1:]...)
				return nil, nil
			}
			m.comments[i].Body = body
			return json.Marshal(m.comments[i])
		}
		return nil, &comment.TransportError{Op: "request", Method: method, Path: path, StatusCode: 404}
	}
	return nil, &comment.TransportError{Op: "request", Method: method, Path: path, StatusCode: 400}
}

func TestRESTClient_WithMemoryRequester(t *testing.T) {
	req := &memoryRequester{}
	p := comment.NewPublisher(NewRESTClient(req.Do))
	ctx := context.Background()
	opts := comment.Options{Identity: comment.Tags("build"), UpdateExisting: true}

	if _, err := p.Publish(ctx, testThread, "first", opts); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	res, err := p.Publish(ctx, testThread, "second", opts)
	if err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	if !res.UpdatedPreviousComment {
		t.Error("second publish should update")
	}
	if len(req.comments) != 1 || !strings.HasSuffix(req.comments[0].Body, "second") {
		t.Fatalf("unexpected comments: %+v", req.comments)
	}

	want := []string{
		"GET /repos/owner/repo/issues/7/comments?per_page=100&page=1",
		"POST /repos/owner/repo/issues/7/comments",
		"GET /repos/owner/repo/issues/7/comments?per_page=100&page=1",
		"PATCH /repos/owner/repo/issues/comments/1",
	}
	if strings.Join(req.calls, "\n") != strings.Join(want, "\n") {
		t.Errorf("calls =\n%s\nwant\n%s", strings.Join(req.calls, "\n"), strings.Join(want, "\n"))
	}
}

func TestRESTClient_OverHTTP(t *testing.T) {
	fake := ghtest.NewFakeIssueServer()
	defer fake.Close()

	client := NewRESTClient(NewHTTPRequester(fake.URL, "tok", 5*time.Second).Do)
	ctx := context.Background()

	created, err := client.CreateComment(ctx, testThread, "hello")
	if err != nil {
		t.Fatalf("CreateComment error: %v", err)
	}
	comments, err := client.ListComments(ctx, testThread, 1, 100)
	if err != nil {
		t.Fatalf("ListComments error: %v", err)
	}
	if len(comments) != 1 || comments[0].ID != created.ID {
		t.Fatalf("unexpected list: %+v", comments)
	}
	if err := client.DeleteComment(ctx, testThread, created.ID); err != nil {
		t.Fatalf("DeleteComment error: %v", err)
	}

	err = client.DeleteComment(ctx, testThread, created.ID)
	if comment.StatusCode(err) != http.StatusNotFound {
		t.Errorf("expected 404 TransportError, got %v", err)
	}

	fake.MalformedNext(http.MethodGet)
	if _, err := client.ListComments(ctx, testThread, 1, 100); !comment.IsMalformedResponse(err) {
		t.Errorf("expected MalformedResponseError, got %v", err)
	}
}

func TestHTTPRequester_Headers(t *testing.T) {
	var got http.Header
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 1, "body": "x"}`))
	}))
	defer server.Close()

	r := NewHTTPRequester(server.URL+"/", "secret-token", time.Second)
	if _, err := r.Do(context.Background(), http.MethodPost, "/repos/o/r/issues/1/comments", map[string]string{"body": "x"}); err != nil {
		t.Fatalf("Do error: %v", err)
	}

	if got.Get("Authorization") != "Bearer secret-token" {
		t.Errorf("Authorization = %q", got.Get("Authorization"))
	}
	if got.Get("Accept") != "application/vnd.github+json" {
		t.Errorf("Accept = %q", got.Get("Accept"))
	}
	if got.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", got.Get("Content-Type"))
	}
	if gotBody["body"] != "x" {
		t.Errorf("payload = %v", gotBody)
	}
}

func TestHTTPRequester_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "Resource not accessible by integration"}`))
	}))
	defer server.Close()

	_, err := NewHTTPRequester(server.URL, "", time.Second).Do(context.Background(), http.MethodGet, "/x", nil)
	if comment.StatusCode(err) != http.StatusForbidden {
		t.Fatalf("expected 403 TransportError, got %v", err)
	}
	if !strings.Contains(err.Error(), "Resource not accessible") {
		t.Errorf("error should carry the response body: %v", err)
	}
}

func TestRESTClient_EmptyListBody(t *testing.T) {
	client := NewRESTClient(func(context.Context, string, string, any) ([]byte, error) {
		return nil, nil
	})
	comments, err := client.ListComments(context.Background(), testThread, 3, 100)
	if err != nil || len(comments) != 0 {
		t.Errorf("ListComments = %v, %v", comments, err)
	}
}
