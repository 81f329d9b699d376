package github

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/cexll/sticky/internal/github/comment"
	ghtest "github.com/cexll/sticky/internal/github/testing"
)

var testThread = comment.Thread{Owner: "owner", Repo: "repo", Number: 7}

func TestIssueCommentClient_ListComments(t *testing.T) {
	gh, fake, cleanup := ghtest.NewMockGitHubClient()
	defer cleanup()

	for i := 1; i <= 3; i++ {
		fake.Seed("owner/repo", 7, fmt.Sprintf("comment %d", i))
	}
	fake.Seed("owner/repo", 8, "other issue")

	client := NewIssueCommentClient(gh)
	comments, err := client.ListComments(context.Background(), testThread, 1, 2)
	if err != nil {
		t.Fatalf("ListComments error: %v", err)
	}
	if len(comments) != 2 || comments[0].Body != "comment 1" || comments[1].Body != "comment 2" {
		t.Fatalf("unexpected page 1: %+v", comments)
	}

	comments, err = client.ListComments(context.Background(), testThread, 2, 2)
	if err != nil {
		t.Fatalf("ListComments error: %v", err)
	}
	if len(comments) != 1 || comments[0].Body != "comment 3" {
		t.Fatalf("unexpected page 2: %+v", comments)
	}

	reqs := fake.Requests()
	q := reqs[0].Query
	if q.Get("per_page") != "2" || q.Get("page") != "1" || q.Get("sort") != "created" || q.Get("direction") != "asc" {
		t.Errorf("unexpected list query: %v", q)
	}
}

func TestIssueCommentClient_CreateUpdateDelete(t *testing.T) {
	gh, fake, cleanup := ghtest.NewMockGitHubClient()
	defer cleanup()
	client := NewIssueCommentClient(gh)
	ctx := context.Background()

	created, err := client.CreateComment(ctx, testThread, "hello")
	if err != nil {
		t.Fatalf("CreateComment error: %v", err)
	}
	if created.ID == 0 || created.Body != "hello" {
		t.Fatalf("unexpected created comment: %+v", created)
	}

	updated, err := client.UpdateComment(ctx, testThread, created.ID, "hello again")
	if err != nil {
		t.Fatalf("UpdateComment error: %v", err)
	}
	if updated.ID != created.ID || updated.Body != "hello again" {
		t.Fatalf("unexpected updated comment: %+v", updated)
	}

	if err := client.DeleteComment(ctx, testThread, created.ID); err != nil {
		t.Fatalf("DeleteComment error: %v", err)
	}
	if n := len(fake.Comments("owner/repo", 7)); n != 0 {
		t.Errorf("expected no comments after delete, got %d", n)
	}
}

func TestIssueCommentClient_ErrorClassification(t *testing.T) {
	gh, fake, cleanup := ghtest.NewMockGitHubClient()
	defer cleanup()
	client := NewIssueCommentClient(gh)
	ctx := context.Background()

	err := client.DeleteComment(ctx, testThread, 424242)
	if !comment.IsTransportError(err) || comment.StatusCode(err) != http.StatusNotFound {
		t.Errorf("expected 404 TransportError, got %v", err)
	}

	fake.FailNext(http.MethodGet, http.StatusInternalServerError)
	_, err = client.ListComments(ctx, testThread, 1, 100)
	if comment.StatusCode(err) != http.StatusInternalServerError {
		t.Errorf("expected 500 TransportError, got %v", err)
	}
	if !strings.Contains(err.Error(), "list comments") {
		t.Errorf("error should name the operation: %v", err)
	}

	fake.MalformedNext(http.MethodPost)
	_, err = client.CreateComment(ctx, testThread, "x")
	if !comment.IsMalformedResponse(err) {
		t.Errorf("expected MalformedResponseError, got %v", err)
	}
}

func TestPublisher_OverGitHubAPI(t *testing.T) {
	gh, fake, cleanup := ghtest.NewMockGitHubClient()
	defer cleanup()

	for i := 1; i <= 150; i++ {
		body := fmt.Sprintf("comment %d", i)
		if i == 101 {
			body = comment.MessageHeader("coverage") + "\nold coverage"
		}
		fake.Seed("owner/repo", 7, body)
	}

	p := comment.NewPublisher(NewIssueCommentClient(gh))
	res, err := p.Publish(context.Background(), testThread, "new coverage", comment.Options{
		Identity:       comment.Tags("coverage"),
		UpdateExisting: true,
	})
	if err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if !res.UpdatedPreviousComment {
		t.Errorf("expected the comment on page 2 to be updated")
	}
	if got := fake.CountRequests(http.MethodGet); got != 2 {
		t.Errorf("expected 2 page requests, got %d", got)
	}
	if got := fake.CountRequests(http.MethodPatch); got != 1 {
		t.Errorf("expected 1 PATCH, got %d", got)
	}
	if got := fake.CountRequests(http.MethodPost); got != 0 {
		t.Errorf("expected no POST, got %d", got)
	}

	stored := fake.Comments("owner/repo", 7)[100]
	if stored.Body != comment.MessageHeader("coverage")+"\nnew coverage" {
		t.Errorf("unexpected stored body: %q", stored.Body)
	}
}

func TestPublisher_WithdrawOverGitHubAPI(t *testing.T) {
	gh, fake, cleanup := ghtest.NewMockGitHubClient()
	defer cleanup()
	p := comment.NewPublisher(NewIssueCommentClient(gh))

	deleted, err := p.Withdraw(context.Background(), testThread, "missing")
	if err != nil || deleted {
		t.Fatalf("Withdraw on empty thread = %v, %v", deleted, err)
	}
	if fake.CountRequests(http.MethodDelete) != 0 {
		t.Error("withdraw without a match must not delete")
	}

	fake.Seed("owner/repo", 7, comment.MessageHeader("default")+"\nstatus")
	deleted, err = p.Withdraw(context.Background(), testThread, "")
	if err != nil || !deleted {
		t.Fatalf("Withdraw = %v, %v", deleted, err)
	}
	if fake.CountRequests(http.MethodDelete) != 1 {
		t.Error("expected exactly one DELETE")
	}
}
