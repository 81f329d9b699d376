package comment

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Action describes what Publish did to the thread.
type Action string

const (
	ActionNone     Action = "none"
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionAppended Action = "appended"
)

// Result is returned by Publish.
type Result struct {
	// UpdatedPreviousComment is true when an existing comment was overwritten,
	// either replaced or appended to.
	UpdatedPreviousComment bool

	Action    Action
	CommentID int64
	Body      string
}

// Publisher keeps one managed comment per identity on a thread.
// It holds no state besides its client and is safe for concurrent use.
type Publisher struct {
	client   Client
	resolver *Resolver
}

// NewPublisher creates a publisher backed by client.
func NewPublisher(client Client) *Publisher {
	return &Publisher{
		client:   client,
		resolver: NewResolver(client),
	}
}

// Publish creates or updates the managed comment for opts.Identity.
// An empty message is a no-op. At most one comment is written per call.
func (p *Publisher) Publish(ctx context.Context, thread Thread, message string, opts Options) (Result, error) {
	if p == nil || p.client == nil {
		return Result{}, fmt.Errorf("nil publisher or client")
	}
	if message == "" {
		log.Printf("[Comment] Empty message for %s, nothing to publish", thread)
		return Result{Action: ActionNone}, nil
	}

	s := opts.settings()
	pl, err := plan(ctx, p.resolver, thread, s, message)
	if err != nil {
		return Result{}, err
	}

	var written Comment
	if pl.target != nil {
		written, err = p.client.UpdateComment(ctx, thread, pl.target.ID, pl.body)
	} else {
		written, err = p.client.CreateComment(ctx, thread, pl.body)
	}
	if err != nil {
		return Result{}, err
	}

	id := written.ID
	if id == 0 && pl.target != nil {
		id = pl.target.ID
	}
	log.Printf("[Comment] Comment %d on %s %s (tags: %s)", id, thread, pl.action, strings.Join(s.identity, ", "))

	return Result{
		UpdatedPreviousComment: pl.target != nil,
		Action:                 pl.action,
		CommentID:              id,
		Body:                   pl.body,
	}, nil
}

// Withdraw deletes the managed comment carrying tag, if there is one.
// A blank tag means DefaultTag. It reports whether a comment was deleted;
// a missing comment is not an error.
func (p *Publisher) Withdraw(ctx context.Context, thread Thread, tag string) (bool, error) {
	if p == nil || p.client == nil {
		return false, fmt.Errorf("nil publisher or client")
	}
	tag = Tags(tag).Normalize()[0]

	found, err := p.resolver.FindFirst(ctx, thread, MessageHeader(tag), nil)
	if err != nil {
		return false, err
	}
	if found == nil {
		log.Printf("[Comment] No comment for tag %q on %s, nothing to withdraw", tag, thread)
		return false, nil
	}

	if err := p.client.DeleteComment(ctx, thread, found.ID); err != nil {
		return false, err
	}
	log.Printf("[Comment] Deleted comment %d on %s (tag: %s)", found.ID, thread, tag)
	return true, nil
}

// Find returns every comment on the thread carrying tag's marker.
func (p *Publisher) Find(ctx context.Context, thread Thread, tag string) ([]Comment, error) {
	if p == nil || p.client == nil {
		return nil, fmt.Errorf("nil publisher or client")
	}
	tag = Tags(tag).Normalize()[0]
	return p.resolver.FindAll(ctx, thread, MessageHeader(tag))
}
