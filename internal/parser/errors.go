package parser

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// BackendErrorKind distinguishes why a vision backend call failed.
type BackendErrorKind string

const (
	// BackendUnreachable: transport failure, no HTTP response was received.
	BackendUnreachable BackendErrorKind = "unreachable"
	// BackendRejected: the backend answered with a non-success status.
	BackendRejected BackendErrorKind = "rejected"
	// BackendBadResponse: the response envelope was malformed, empty, or an error envelope.
	BackendBadResponse BackendErrorKind = "bad_response"
)

// BackendError reports that the vision call itself failed. Normalization
// never runs on a request that produced a BackendError.
type BackendError struct {
	Kind       BackendErrorKind
	Provider   string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s backend %s (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s backend %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Unreachable wraps a transport error.
func Unreachable(provider string, err error) *BackendError {
	return &BackendError{Kind: BackendUnreachable, Provider: provider, Err: err}
}

// Rejected wraps a non-success HTTP status and its body.
func Rejected(provider string, status int, body []byte) *BackendError {
	return &BackendError{
		Kind:       BackendRejected,
		Provider:   provider,
		StatusCode: status,
		Err:        fmt.Errorf("%s", truncate(string(body), 500)),
	}
}

// BadResponse wraps an unparseable or error response envelope.
func BadResponse(provider string, err error) *BackendError {
	return &BackendError{Kind: BackendBadResponse, Provider: provider, Err: err}
}

// AsBackendError returns the BackendError in err's chain, if any.
func AsBackendError(err error) (*BackendError, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// RateLimitError indicates a backend returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
// err should be the rejected BackendError so callers matching on BackendError still see it.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// CheckStatus maps a non-200 response to a Rejected BackendError, or a
// RateLimitError wrapping one for HTTP 429. Returns nil for 200.
func CheckStatus(provider string, resp *http.Response, body []byte) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	rejected := Rejected(provider, resp.StatusCode, body)
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		return NewRateLimitError(provider, rejected, retryAfter)
	}
	return rejected
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
