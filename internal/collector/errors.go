package collector

import (
	"fmt"
	"time"
)

// FetchError is a failed search request for one query page.
type FetchError struct {
	Query string
	Page  int
	// StatusCode is zero when no HTTP response was received.
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("search %q page %d: status %d: %v", e.Query, e.Page, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("search %q page %d: %v", e.Query, e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// RateLimitError is a FetchError caused by GitHub rate limiting.
type RateLimitError struct {
	*FetchError
	// RetryAfter is how long GitHub asked us to wait.
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %s", e.RetryAfter.Round(time.Second), e.FetchError.Error())
}

// Unwrap exposes the embedded FetchError so errors.As matches both types.
func (e *RateLimitError) Unwrap() error {
	return e.FetchError
}
