package comment

import (
	"regexp"
	"strings"
)

var (
	reInvisible  = regexp.MustCompile("[\u200B\u200C\u200D\uFEFF]")
	reControl    = regexp.MustCompile("[\u0000-\u0008\u000B\u000C\u000E-\u001F\u007F-\u009F]")
	reSoftHyphen = regexp.MustCompile("\u00AD")
	reBidi       = regexp.MustCompile("[\u202A-\u202E\u2066-\u2069]")

	// reMarker matches any marker in the shape produced by MessageHeader.
	reMarker = regexp.MustCompile(regexp.QuoteMeta(markerPrefix) + `[^>]*? -->\n?`)

	reGitHubPATClassic   = regexp.MustCompile(`\bghp_[A-Za-z0-9]{36}\b`)
	reGitHubOAuth        = regexp.MustCompile(`\bgho_[A-Za-z0-9]{36}\b`)
	reGitHubInstallation = regexp.MustCompile(`\bghs_[A-Za-z0-9]{36}\b`)
	reGitHubRefresh      = regexp.MustCompile(`\bghr_[A-Za-z0-9]{36}\b`)
	reGitHubFineGrained  = regexp.MustCompile(`\bgithub_pat_[A-Za-z0-9_]{11,221}\b`)
)

const redactedToken = "[REDACTED_GITHUB_TOKEN]"

// StripInvisibleCharacters removes zero-width and control chars.
// Newlines and tabs are kept.
func StripInvisibleCharacters(s string) string {
	s = reInvisible.ReplaceAllString(s, "")
	s = reControl.ReplaceAllString(s, "")
	s = reSoftHyphen.ReplaceAllString(s, "")
	s = reBidi.ReplaceAllString(s, "")
	return s
}

// StripMarkers removes identity markers from a caller-supplied message so
// that it cannot claim another identity's comment on a later run.
func StripMarkers(s string) string {
	return reMarker.ReplaceAllString(s, "")
}

// RedactGitHubTokens censors GitHub token-like strings.
func RedactGitHubTokens(s string) string {
	s = reGitHubPATClassic.ReplaceAllString(s, redactedToken)
	s = reGitHubOAuth.ReplaceAllString(s, redactedToken)
	s = reGitHubInstallation.ReplaceAllString(s, redactedToken)
	s = reGitHubRefresh.ReplaceAllString(s, redactedToken)
	s = reGitHubFineGrained.ReplaceAllString(s, redactedToken)
	return s
}

// SanitizeMessage cleans a message before it is published. Publish never
// calls it; the CLI, HTTP API and MCP tools apply it on request.
func SanitizeMessage(s string) string {
	if s == "" {
		return s
	}
	s = StripInvisibleCharacters(s)
	s = StripMarkers(s)
	s = RedactGitHubTokens(s)
	return strings.TrimSpace(s)
}
