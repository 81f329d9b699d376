package comment

import (
	"context"
	"fmt"
	"strings"
)

// Thread addresses a single issue or pull request conversation.
type Thread struct {
	Owner  string
	Repo   string
	Number int
}

// ParseThread builds a Thread from an "owner/repo" slug and an issue number.
func ParseThread(slug string, number int) (Thread, error) {
	parts := strings.Split(strings.TrimSpace(slug), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Thread{}, fmt.Errorf("%w: invalid repo format %q (expected owner/repo)", ErrInvalidThread, slug)
	}
	if number <= 0 {
		return Thread{}, fmt.Errorf("%w: issue number must be positive, got %d", ErrInvalidThread, number)
	}
	return Thread{Owner: parts[0], Repo: parts[1], Number: number}, nil
}

// Slug returns "owner/repo".
func (t Thread) Slug() string {
	return t.Owner + "/" + t.Repo
}

func (t Thread) String() string {
	return fmt.Sprintf("%s#%d", t.Slug(), t.Number)
}

// Comment is a comment on a thread as seen by the engine.
type Comment struct {
	ID   int64
	Body string
}

// Client is the comment collection of a remote tracker.
// Implementations live in the parent github package.
type Client interface {
	// ListComments returns one page of comments in creation order.
	// Pages past the end return an empty slice.
	ListComments(ctx context.Context, thread Thread, page, perPage int) ([]Comment, error)

	// CreateComment posts a new comment on the thread.
	CreateComment(ctx context.Context, thread Thread, body string) (Comment, error)

	// UpdateComment replaces the body of an existing comment.
	UpdateComment(ctx context.Context, thread Thread, id int64, body string) (Comment, error)

	// DeleteComment removes a comment.
	DeleteComment(ctx context.Context, thread Thread, id int64) error
}
