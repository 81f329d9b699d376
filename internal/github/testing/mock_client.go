package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"sync"

	gh "github.com/google/go-github/v66/github"
)

var (
	issueCommentsRe = regexp.MustCompile(`^/repos/([^/]+)/([^/]+)/issues/(\d+)/comments$`)
	commentRe       = regexp.MustCompile(`^/repos/([^/]+)/([^/]+)/issues/comments/(\d+)$`)
)

// StoredComment is a comment held by FakeIssueServer.
type StoredComment struct {
	ID    int64  `json:"id"`
	Body  string `json:"body"`
	Issue int    `json:"-"`
	Repo  string `json:"-"`
}

// Request records one call received by FakeIssueServer.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   string
}

// FakeIssueServer is an in-memory GitHub issue comments API served over
// httptest. It answers the endpoints used by the comment clients:
//   - GET    /repos/{owner}/{repo}/issues/{number}/comments?per_page=&page=
//   - POST   /repos/{owner}/{repo}/issues/{number}/comments
//   - PATCH  /repos/{owner}/{repo}/issues/comments/{id}
//   - DELETE /repos/{owner}/{repo}/issues/comments/{id}
type FakeIssueServer struct {
	*httptest.Server

	mu       sync.Mutex
	comments []StoredComment
	nextID   int64
	requests []Request

	// failures maps an HTTP method to the status returned for the next
	// request with that method.
	failures map[string]int
	// malformed makes the next response for a method an invalid JSON body.
	malformed map[string]bool
}

// NewFakeIssueServer starts a fake server. Call Close when done.
func NewFakeIssueServer() *FakeIssueServer {
	f := &FakeIssueServer{
		nextID:    1000,
		failures:  make(map[string]int),
		malformed: make(map[string]bool),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

// NewMockGitHubClient returns a go-github client backed by a fresh FakeIssueServer.
// The returned cleanup function must be called to close the server.
func NewMockGitHubClient() (*gh.Client, *FakeIssueServer, func()) {
	f := NewFakeIssueServer()
	return f.Client(), f, f.Close
}

// Client returns a go-github client pointed at the fake server.
func (f *FakeIssueServer) Client() *gh.Client {
	client := gh.NewClient(f.Server.Client())
	base, _ := url.Parse(f.URL + "/")
	client.BaseURL = base
	client.UploadURL = base
	return client
}

// Seed adds a comment to owner/repo#issue and returns its ID.
func (f *FakeIssueServer) Seed(repo string, issue int, body string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(repo, issue, body).ID
}

// Comments returns a copy of the comments on owner/repo#issue in order.
func (f *FakeIssueServer) Comments(repo string, issue int) []StoredComment {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []StoredComment
	for _, c := range f.comments {
		if c.Repo == repo && c.Issue == issue {
			out = append(out, c)
		}
	}
	return out
}

// Requests returns every request received so far.
func (f *FakeIssueServer) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// CountRequests returns how many requests used method.
func (f *FakeIssueServer) CountRequests(method string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method {
			n++
		}
	}
	return n
}

// FailNext makes the next request with method answer status.
func (f *FakeIssueServer) FailNext(method string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = status
}

// MalformedNext makes the next request with method answer invalid JSON.
func (f *FakeIssueServer) MalformedNext(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.malformed[method] = true
}

func (f *FakeIssueServer) add(repo string, issue int, body string) StoredComment {
	c := StoredComment{ID: f.nextID, Body: body, Issue: issue, Repo: repo}
	f.nextID++
	f.comments = append(f.comments, c)
	return c
}

func (f *FakeIssueServer) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var payload struct {
		Body string `json:"body"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}
	f.requests = append(f.requests, Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Body: payload.Body})

	if status, ok := f.failures[r.Method]; ok {
		delete(f.failures, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": http.StatusText(status)})
		return
	}
	if f.malformed[r.Method] {
		delete(f.malformed, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id": nope}`))
		return
	}

	if m := issueCommentsRe.FindStringSubmatch(r.URL.Path); m != nil {
		repo := m[1] + "/" + m[2]
		issue, _ := strconv.Atoi(m[3])
		switch r.Method {
		case http.MethodGet:
			f.list(w, r, repo, issue)
		case http.MethodPost:
			writeJSON(w, http.StatusCreated, f.add(repo, issue, payload.Body))
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if m := commentRe.FindStringSubmatch(r.URL.Path); m != nil {
		repo := m[1] + "/" + m[2]
		id, _ := strconv.ParseInt(m[3], 10, 64)
		idx := -1
		for i, c := range f.comments {
			if c.ID == id && c.Repo == repo {
				idx = i
				break
			}
		}
		if idx < 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		switch r.Method {
		case http.MethodPatch:
			f.comments[idx].Body = payload.Body
			writeJSON(w, http.StatusOK, f.comments[idx])
		case http.MethodDelete:
			f.comments = append(f.comments[:idx], f.comments[idx+1:]...)
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}

func (f *FakeIssueServer) list(w http.ResponseWriter, r *http.Request, repo string, issue int) {
	perPage, err := strconv.Atoi(r.URL.Query().Get("per_page"))
	if err != nil || perPage <= 0 {
		perPage = 30
	}
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}

	var all []StoredComment
	for _, c := range f.comments {
		if c.Repo == repo && c.Issue == issue {
			all = append(all, c)
		}
	}

	out := []StoredComment{}
	start := (page - 1) * perPage
	if start < len(all) {
		end := start + perPage
		if end > len(all) {
			end = len(all)
		}
		out = all[start:end]
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
