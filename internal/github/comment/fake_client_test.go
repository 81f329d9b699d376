package comment

import (
	"context"
	"fmt"
)

// fakeClient is an in-memory comment collection for a single thread.
type fakeClient struct {
	comments []Comment
	nextID   int64

	ListCalls   []int // requested pages
	CreateCalls []string
	UpdateCalls []struct {
		ID   int64
		Body string
	}
	DeleteCalls []int64

	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error
}

func newFakeClient(bodies ...string) *fakeClient {
	f := &fakeClient{nextID: 1000}
	for _, b := range bodies {
		f.add(b)
	}
	return f
}

func (f *fakeClient) add(body string) Comment {
	c := Comment{ID: f.nextID, Body: body}
	f.nextID++
	f.comments = append(f.comments, c)
	return c
}

func (f *fakeClient) mutations() int {
	return len(f.CreateCalls) + len(f.UpdateCalls) + len(f.DeleteCalls)
}

func (f *fakeClient) ListComments(_ context.Context, _ Thread, page, perPage int) ([]Comment, error) {
	f.ListCalls = append(f.ListCalls, page)
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	start := (page - 1) * perPage
	if start >= len(f.comments) {
		return []Comment{}, nil
	}
	end := start + perPage
	if end > len(f.comments) {
		end = len(f.comments)
	}
	out := make([]Comment, end-start)
	copy(out, f.comments[start:end])
	return out, nil
}

func (f *fakeClient) CreateComment(_ context.Context, _ Thread, body string) (Comment, error) {
	f.CreateCalls = append(f.CreateCalls, body)
	if f.CreateErr != nil {
		return Comment{}, f.CreateErr
	}
	return f.add(body), nil
}

func (f *fakeClient) UpdateComment(_ context.Context, _ Thread, id int64, body string) (Comment, error) {
	f.UpdateCalls = append(f.UpdateCalls, struct {
		ID   int64
		Body string
	}{id, body})
	if f.UpdateErr != nil {
		return Comment{}, f.UpdateErr
	}
	for i := range f.comments {
		if f.comments[i].ID == id {
			f.comments[i].Body = body
			return f.comments[i], nil
		}
	}
	return Comment{}, &TransportError{Op: "update comment", Method: "PATCH", StatusCode: 404, Err: fmt.Errorf("comment %d not found", id)}
}

func (f *fakeClient) DeleteComment(_ context.Context, _ Thread, id int64) error {
	f.DeleteCalls = append(f.DeleteCalls, id)
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i := range f.comments {
		if f.comments[i].ID == id {
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			return nil
		}
	}
	return &TransportError{Op: "delete comment", Method: "DELETE", StatusCode: 404, Err: fmt.Errorf("comment %d not found", id)}
}

var testThread = Thread{Owner: "owner", Repo: "repo", Number: 1}
