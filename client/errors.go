// ABOUTME: Error types returned by the API client
// ABOUTME: Distinguishes plain API failures from 401s that survived the refresh cycle

package client

import "fmt"

// APIError represents a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
}

// UnauthorizedError represents a request that failed 401 and could not be
// recovered by the silent-refresh flow. RetryExhausted is true when the
// request was resent with a fresh token and still came back 401; false when
// the refresh itself yielded no token.
//
// Callers own their user-facing message for this error; the auth layer has
// already done everything it is allowed to do.
type UnauthorizedError struct {
	RetryExhausted bool
	Err            error
}

func (e *UnauthorizedError) Error() string {
	if e.RetryExhausted {
		return fmt.Sprintf("unauthorized after token refresh and retry: %v", e.Err)
	}
	return fmt.Sprintf("unauthorized and token refresh failed: %v", e.Err)
}

func (e *UnauthorizedError) Unwrap() error {
	return e.Err
}
