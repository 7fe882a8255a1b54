package github

import (
	"fmt"
	"time"
)

// AuthError indicates the API rejected the token (401/403).
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("github authentication failed during %s (check token): %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// RateLimitError indicates the core API quota is exhausted.
type RateLimitError struct {
	Reset time.Time
	Err   error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github rate limit exceeded, resets at %s: %v", e.Reset.Format(time.RFC3339), e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }
