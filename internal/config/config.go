package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cexll/sticky/internal/github"
	"github.com/cexll/sticky/internal/github/comment"
)

// Config holds all configuration for sticky
type Config struct {
	// Server settings
	Port      int
	APISecret string

	// GitHub credentials. A token takes precedence over App credentials.
	GitHubToken      string
	GitHubAppID      string
	GitHubPrivateKey string
	GitHubAPIURL     string

	// Default thread, used when a caller does not name one
	Repository string
	Issue      int

	// Transport settings
	Transport       string // "api", "rest" or "gh"
	Retry           bool
	RetryMaxElapsed time.Duration
	HTTPTimeout     time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	privateKey := normalizePrivateKey(os.Getenv("GITHUB_PRIVATE_KEY"))

	cfg := &Config{
		Port:             getEnvInt("PORT", 8000),
		APISecret:        os.Getenv("STICKY_API_SECRET"),
		GitHubToken:      os.Getenv("GITHUB_TOKEN"),
		GitHubAppID:      os.Getenv("GITHUB_APP_ID"),
		GitHubPrivateKey: privateKey,
		GitHubAPIURL:     getEnv("GITHUB_API_URL", "https://api.github.com"),
		Repository:       os.Getenv("GITHUB_REPOSITORY"),
		Issue:            getEnvInt("STICKY_ISSUE", 0),
		Transport:        strings.ToLower(getEnv("STICKY_TRANSPORT", github.TransportAPI)),
		Retry:            getEnvBool("STICKY_RETRY", false),
		RetryMaxElapsed:  time.Duration(getEnvInt("STICKY_RETRY_MAX_ELAPSED_SECONDS", 30)) * time.Second,
		HTTPTimeout:      time.Duration(getEnvInt("STICKY_HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func normalizePrivateKey(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "\"") && strings.HasSuffix(trimmed, "\"") {
		trimmed = strings.TrimPrefix(trimmed, "\"")
		trimmed = strings.TrimSuffix(trimmed, "\"")
	}
	if strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'") {
		trimmed = strings.TrimPrefix(trimmed, "'")
		trimmed = strings.TrimSuffix(trimmed, "'")
	}

	trimmed = strings.ReplaceAll(trimmed, "\r\n", "\n")
	trimmed = strings.ReplaceAll(trimmed, "\r", "\n")
	if strings.Contains(trimmed, "\\n") {
		trimmed = strings.ReplaceAll(trimmed, "\\r", "")
		trimmed = strings.ReplaceAll(trimmed, "\\n", "\n")
	}

	return trimmed
}

// validate checks that all required configuration is present
func (c *Config) validate() error {
	if err := c.validateTransport(); err != nil {
		return err
	}

	if err := c.validateGitHubCredentials(); err != nil {
		return err
	}

	c.applyDefaults()
	return c.validateThread()
}

func (c *Config) validateTransport() error {
	switch c.Transport {
	case "", github.TransportAPI, github.TransportREST, github.TransportGH:
		return nil
	default:
		return fmt.Errorf("invalid STICKY_TRANSPORT: %s (must be 'api', 'rest' or 'gh')", c.Transport)
	}
}

func (c *Config) validateGitHubCredentials() error {
	if c.GitHubToken != "" {
		return nil
	}
	if c.GitHubAppID != "" && c.GitHubPrivateKey == "" {
		return fmt.Errorf("GITHUB_PRIVATE_KEY is required when GITHUB_APP_ID is set")
	}
	if c.GitHubAppID == "" && c.GitHubPrivateKey != "" {
		return fmt.Errorf("GITHUB_APP_ID is required when GITHUB_PRIVATE_KEY is set")
	}
	if c.GitHubAppID == "" && c.Transport != github.TransportGH {
		return fmt.Errorf("GITHUB_TOKEN or GITHUB_APP_ID/GITHUB_PRIVATE_KEY is required")
	}
	if c.GitHubAppID == "" {
		log.Printf("Warning: no GitHub credentials set, relying on gh CLI authentication")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Transport == "" {
		c.Transport = github.TransportAPI
	}
	if c.Port <= 0 {
		c.Port = 8000
	}
	if c.RetryMaxElapsed <= 0 {
		c.RetryMaxElapsed = 30 * time.Second
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 30 * time.Second
	}
}

func (c *Config) validateThread() error {
	if c.Issue < 0 {
		return fmt.Errorf("STICKY_ISSUE must be a positive number")
	}
	if c.Repository != "" && strings.Count(c.Repository, "/") != 1 {
		return fmt.Errorf("GITHUB_REPOSITORY must be in owner/repo form: %s", c.Repository)
	}
	return nil
}

// ValidateServer checks the settings only the HTTP API needs.
func (c *Config) ValidateServer() error {
	if c.APISecret == "" {
		return fmt.Errorf("STICKY_API_SECRET is required")
	}
	return nil
}

// Thread resolves the target thread, falling back to the configured
// GITHUB_REPOSITORY and STICKY_ISSUE for empty arguments.
func (c *Config) Thread(repo string, issue int) (comment.Thread, error) {
	if repo == "" {
		repo = c.Repository
	}
	if issue == 0 {
		issue = c.Issue
	}
	return comment.ParseThread(repo, issue)
}

// TokenProvider returns the credential source for the configured account.
// It returns nil when gh should use its own login.
func (c *Config) TokenProvider() github.TokenProvider {
	switch {
	case c.GitHubToken != "":
		return github.StaticToken(c.GitHubToken)
	case c.GitHubAppID != "":
		return &github.AppAuth{
			AppID:      c.GitHubAppID,
			PrivateKey: c.GitHubPrivateKey,
			BaseURL:    c.GitHubAPIURL,
		}
	default:
		return nil
	}
}

// ClientConfig returns the transport settings for github.NewClient.
func (c *Config) ClientConfig() github.ClientConfig {
	return github.ClientConfig{
		Transport:       c.Transport,
		BaseURL:         c.GitHubAPIURL,
		Timeout:         c.HTTPTimeout,
		Retry:           c.Retry,
		RetryMaxElapsed: c.RetryMaxElapsed,
	}
}

// NewClient builds a comment client authenticated for thread's repository.
func (c *Config) NewClient(ctx context.Context, thread comment.Thread) (comment.Client, error) {
	return github.NewClient(ctx, c.ClientConfig(), c.TokenProvider(), thread.Slug())
}

// getEnv gets environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets environment variable as int with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
