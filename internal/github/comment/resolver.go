package comment

import (
	"context"
	"strings"
)

// DefaultPerPage is the page size used when scanning a thread.
const DefaultPerPage = 100

// Decision tells the resolver what to do after a visitor sees a match.
type Decision int

const (
	// Stop ends the scan and returns the visited comment.
	Stop Decision = iota
	// Continue keeps scanning, including later pages.
	Continue
)

// Visitor is called for every comment whose body contains the marker.
type Visitor func(Comment) Decision

// Resolver locates previously published comments by marker.
type Resolver struct {
	client  Client
	perPage int
}

// NewResolver creates a resolver that pages through client.
func NewResolver(client Client) *Resolver {
	return &Resolver{client: client, perPage: DefaultPerPage}
}

// FindFirst walks the thread page by page and returns the first comment
// containing marker. With a non-nil visitor the scan continues for as long
// as the visitor answers Continue. A nil comment and nil error mean no match.
func (r *Resolver) FindFirst(ctx context.Context, thread Thread, marker string, visit Visitor) (*Comment, error) {
	for page := 1; ; page++ {
		comments, err := r.client.ListComments(ctx, thread, page, r.perPage)
		if err != nil {
			return nil, err
		}
		if len(comments) == 0 {
			return nil, nil
		}

		for _, c := range comments {
			if !strings.Contains(c.Body, marker) {
				continue
			}
			found := c
			if visit == nil || visit(found) == Stop {
				return &found, nil
			}
		}

		// A short page is the last page.
		if len(comments) < r.perPage {
			return nil, nil
		}
	}
}

// FindAll returns every comment on the thread containing marker.
func (r *Resolver) FindAll(ctx context.Context, thread Thread, marker string) ([]Comment, error) {
	var found []Comment
	_, err := r.FindFirst(ctx, thread, marker, func(c Comment) Decision {
		found = append(found, c)
		return Continue
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// FindPreviousComment is a convenience wrapper around Resolver.FindFirst.
func FindPreviousComment(ctx context.Context, client Client, thread Thread, marker string, visit Visitor) (*Comment, error) {
	return NewResolver(client).FindFirst(ctx, thread, marker, visit)
}

// FindPreviousComments is a convenience wrapper around Resolver.FindAll.
func FindPreviousComments(ctx context.Context, client Client, thread Thread, marker string) ([]Comment, error) {
	return NewResolver(client).FindAll(ctx, thread, marker)
}
