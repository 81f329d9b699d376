package comment

import (
	"errors"
	"fmt"
)

// ErrInvalidThread indicates a malformed repository slug or issue number.
var ErrInvalidThread = errors.New("invalid thread")

// TransportError reports a failed request against the comment API.
// StatusCode is zero when no response was received.
type TransportError struct {
	Op         string
	Method     string
	Path       string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s %s failed with status %d: %v", e.Op, e.Method, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s %s failed: %v", e.Op, e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports a response body that could not be decoded.
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err carries a TransportError.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	var target *TransportError
	return errors.As(err, &target)
}

// IsMalformedResponse reports whether err carries a MalformedResponseError.
func IsMalformedResponse(err error) bool {
	if err == nil {
		return false
	}
	var target *MalformedResponseError
	return errors.As(err, &target)
}

// StatusCode extracts the HTTP status of a TransportError, or 0.
func StatusCode(err error) int {
	var target *TransportError
	if errors.As(err, &target) {
		return target.StatusCode
	}
	return 0
}
