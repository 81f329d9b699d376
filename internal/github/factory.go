package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cexll/sticky/internal/github/comment"
	gh "github.com/google/go-github/v66/github"
)

// Transport names accepted by NewClient.
const (
	TransportAPI  = "api"
	TransportREST = "rest"
	TransportGH   = "gh"
)

// ClientConfig selects and configures a comment.Client transport.
type ClientConfig struct {
	Transport string
	BaseURL   string
	Timeout   time.Duration

	// Retry wraps the transport in a RetryingClient.
	Retry           bool
	RetryMaxElapsed time.Duration
}

// NewClient builds the comment.Client described by cfg, authenticating
// through tokens for repo. tokens may be nil for the gh transport, which
// then relies on gh's own login.
func NewClient(ctx context.Context, cfg ClientConfig, tokens TokenProvider, repo string) (comment.Client, error) {
	token := ""
	if tokens != nil {
		t, err := tokens.Token(ctx, repo)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve GitHub token: %w", err)
		}
		token = t
	}

	var client comment.Client
	switch cfg.Transport {
	case "", TransportAPI:
		c, err := newGitHubClient(cfg, token)
		if err != nil {
			return nil, err
		}
		client = NewIssueCommentClient(c)
	case TransportREST:
		client = NewRESTClient(NewHTTPRequester(cfg.BaseURL, token, cfg.Timeout).Do)
	case TransportGH:
		client = NewGHCLIClient(token)
	default:
		return nil, fmt.Errorf("unsupported transport: %s (must be 'api', 'rest' or 'gh')", cfg.Transport)
	}

	if cfg.Retry {
		client = NewRetryingClient(client, cfg.RetryMaxElapsed)
	}
	return client, nil
}

func newGitHubClient(cfg ClientConfig, token string) (*gh.Client, error) {
	c := gh.NewClient(&http.Client{Timeout: cfg.Timeout})
	if token != "" {
		c = c.WithAuthToken(token)
	}
	if cfg.BaseURL != "" && strings.TrimRight(cfg.BaseURL, "/") != githubAPIBase {
		base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL %q: %w", cfg.BaseURL, err)
		}
		c.BaseURL = base
		c.UploadURL = base
	}
	return c, nil
}
