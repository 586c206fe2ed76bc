package fetcher

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a fetch failed.
// The kind determines whether the fetcher retries (timeouts, connection
// errors, 5xx responses) or fails immediately (4xx responses).
type FailureKind int

const (
	// FailureUnknown is the zero value; it should not appear in returned errors.
	FailureUnknown FailureKind = iota

	// FailureTimeout indicates the request exceeded its timeout.
	FailureTimeout

	// FailureConnection indicates a network-level error (refused connection,
	// DNS failure, reset).
	FailureConnection

	// FailureHTTPStatus indicates the server responded with an error status.
	// Whether it is retryable depends on the status code (5xx yes, 4xx no).
	FailureHTTPStatus

	// FailureInvalidURL indicates the request could not be built from the
	// given URL. Never retried.
	FailureInvalidURL

	// FailureCanceled indicates the caller's context was canceled while the
	// fetcher was waiting between attempts. Never retried.
	FailureCanceled
)

// String returns a human-readable name for the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureTimeout:
		return "timeout"
	case FailureConnection:
		return "connection error"
	case FailureHTTPStatus:
		return "http error"
	case FailureInvalidURL:
		return "invalid url"
	case FailureCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// FetchError is the terminal failure returned by Fetch.
// It records what went wrong, how many attempts were made, and whether the
// retry budget was exhausted.
type FetchError struct {
	// URL is the request URL that failed.
	URL string

	// Kind classifies the final failure.
	Kind FailureKind

	// StatusCode is the HTTP status of the final response, when one was
	// received. Zero for timeouts and connection errors.
	StatusCode int

	// Attempts is the total number of attempts made, including the first.
	Attempts int

	// Exhausted reports whether the failure was retryable but the retry
	// budget ran out.
	Exhausted bool

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	switch {
	case e.Exhausted:
		return fmt.Sprintf("fetch %s: %s after %d attempts", e.URL, e.Kind, e.Attempts)
	case e.Kind == FailureHTTPStatus:
		return fmt.Sprintf("fetch %s: http status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	}
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// retryable reports whether this failure kind warrants another attempt.
// 4xx responses are client errors; retrying them cannot succeed.
func (e *FetchError) retryable() bool {
	switch e.Kind {
	case FailureTimeout, FailureConnection:
		return true
	case FailureHTTPStatus:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// AsFetchError extracts a *FetchError from an error chain.
// Returns nil if the error is not a fetch failure.
func AsFetchError(err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}
