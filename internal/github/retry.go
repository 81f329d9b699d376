package github

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cexll/sticky/internal/github/comment"
)

const (
	// Default retry configuration for GitHub operations
	defaultInitialDelay   = 1 * time.Second
	defaultMaxElapsedTime = 30 * time.Second
)

// RetryingClient decorates a comment.Client with exponential backoff for
// transient network failures. Permanent errors are returned immediately.
type RetryingClient struct {
	next           comment.Client
	initialDelay   time.Duration
	maxElapsedTime time.Duration
}

// NewRetryingClient wraps next. A zero maxElapsed uses the default budget.
func NewRetryingClient(next comment.Client, maxElapsed time.Duration) *RetryingClient {
	if maxElapsed <= 0 {
		maxElapsed = defaultMaxElapsedTime
	}
	return &RetryingClient{
		next:           next,
		initialDelay:   defaultInitialDelay,
		maxElapsedTime: maxElapsed,
	}
}

func (c *RetryingClient) newBackOff(ctx context.Context) backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialDelay
	bo.MaxElapsedTime = c.maxElapsedTime
	return backoff.WithContext(bo, ctx)
}

func retryCall[T any](ctx context.Context, c *RetryingClient, op string, retryable func(error) bool, fn func() (T, error)) (T, error) {
	attempt := 0
	return backoff.RetryNotifyWithData(func() (T, error) {
		attempt++
		v, err := fn()
		if err != nil && !retryable(err) {
			if attempt > 1 {
				log.Printf("[Retry] Non-retryable error on %s, failing immediately: %v", op, err)
			}
			return v, backoff.Permanent(err)
		}
		if err == nil && attempt > 1 {
			log.Printf("[Retry] %s succeeded on attempt %d", op, attempt)
		}
		return v, err
	}, c.newBackOff(ctx), func(err error, delay time.Duration) {
		log.Printf("[Retry] Retryable error on %s (attempt %d), retrying in %v: %v", op, attempt, delay, err)
	})
}

// ListComments retries transient list failures.
func (c *RetryingClient) ListComments(ctx context.Context, thread comment.Thread, page, perPage int) ([]comment.Comment, error) {
	return retryCall(ctx, c, "list comments", isRetryableError, func() ([]comment.Comment, error) {
		return c.next.ListComments(ctx, thread, page, perPage)
	})
}

// CreateComment retries only failures where the request never reached
// GitHub. A POST that may have been applied is not repeated, since a second
// attempt would leave two comments on the thread.
func (c *RetryingClient) CreateComment(ctx context.Context, thread comment.Thread, body string) (comment.Comment, error) {
	return retryCall(ctx, c, "create comment", isUnsentError, func() (comment.Comment, error) {
		return c.next.CreateComment(ctx, thread, body)
	})
}

// UpdateComment retries transient update failures.
func (c *RetryingClient) UpdateComment(ctx context.Context, thread comment.Thread, id int64, body string) (comment.Comment, error) {
	return retryCall(ctx, c, "update comment", isRetryableError, func() (comment.Comment, error) {
		return c.next.UpdateComment(ctx, thread, id, body)
	})
}

// DeleteComment retries transient delete failures.
func (c *RetryingClient) DeleteComment(ctx context.Context, thread comment.Thread, id int64) error {
	_, err := retryCall(ctx, c, "delete comment", isRetryableError, func() (struct{}, error) {
		return struct{}{}, c.next.DeleteComment(ctx, thread, id)
	})
	return err
}

// isRetryableError determines if an error should trigger a retry
// Returns true for transient network errors and 5xx gateway responses
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if comment.IsMalformedResponse(err) {
		return false
	}

	switch comment.StatusCode(err) {
	case 502, 503, 504:
		return true
	}

	errStr := strings.ToLower(err.Error())

	// Common transient errors that should be retried:
	// - EOF: connection closed unexpectedly
	// - timeout: request took too long
	// - connection refused: service temporarily unavailable
	// - temporary failure: DNS or network issues
	retryablePatterns := []string{
		"eof",
		"timeout",
		"connection refused",
		"temporary failure",
		"connection reset",
		"broken pipe",
		"no such host",
		"network is unreachable",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// isUnsentError reports whether err shows the request was never delivered:
// the connection could not be opened or the host could not be resolved.
func isUnsentError(err error) bool {
	if err == nil || comment.StatusCode(err) != 0 {
		return false
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"no such host",
		"network is unreachable",
		"temporary failure in name resolution",
	} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}
