package git

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Typed git errors enabling structured classification without string parsing upstream.

type AuthError struct {
	Op, URL string
	Err     error
}

func (e *AuthError) Error() string { return fmt.Sprintf("%s auth error for %s: %v", e.Op, e.URL, e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Op, URL string
	Err     error
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s not found %s: %v", e.Op, e.URL, e.Err) }
func (e *NotFoundError) Unwrap() error { return e.Err }

type UnsupportedProtocolError struct {
	Op, URL string
	Err     error
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("%s unsupported protocol %s: %v", e.Op, e.URL, e.Err)
}
func (e *UnsupportedProtocolError) Unwrap() error { return e.Err }

type RateLimitError struct {
	Op, URL string
	Err     error
}

func (e *RateLimitError) Error() string { return fmt.Sprintf("%s rate limited %s: %v", e.Op, e.URL, e.Err) }
func (e *RateLimitError) Unwrap() error { return e.Err }

type NetworkTimeoutError struct {
	Op, URL string
	Err     error
}

func (e *NetworkTimeoutError) Error() string {
	return fmt.Sprintf("%s network timeout %s: %v", e.Op, e.URL, e.Err)
}
func (e *NetworkTimeoutError) Unwrap() error { return e.Err }

type RemoteDivergedError struct {
	Op, URL string
	Err     error
}

func (e *RemoteDivergedError) Error() string {
	return fmt.Sprintf("%s remote diverged %s: %v", e.Op, e.URL, e.Err)
}
func (e *RemoteDivergedError) Unwrap() error { return e.Err }

// classifyGitError wraps go-git failures into typed variants when the
// message is recognizable. Heuristic mapping; go-git surfaces most
// transport failures as plain strings.
func classifyGitError(op, url string, err error) error {
	if err == nil {
		return nil
	}
	l := strings.ToLower(err.Error())
	switch {
	case strings.Contains(l, "authentication") || strings.Contains(l, "auth fail") ||
		strings.Contains(l, "not authorized") || strings.Contains(l, "invalid credentials") ||
		strings.Contains(l, "invalid username or password"):
		return &AuthError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "not found") || strings.Contains(l, "repository does not exist"):
		return &NotFoundError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "unsupported protocol") || strings.Contains(l, "protocol not supported"):
		return &UnsupportedProtocolError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "rate limit") || strings.Contains(l, "too many requests"):
		return &RateLimitError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "timeout") || strings.Contains(l, "i/o timeout") ||
		strings.Contains(l, "connection reset") || strings.Contains(l, "remote hung up"):
		return &NetworkTimeoutError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "diverged") || strings.Contains(l, "non-fast-forward"):
		return &RemoteDivergedError{Op: op, URL: url, Err: err}
	}
	return fmt.Errorf("git %s failed for %s: %w", op, url, err)
}

// isPermanentGitError reports whether retrying the operation cannot help.
func isPermanentGitError(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.As(err, new(*AuthError)),
		errors.As(err, new(*NotFoundError)),
		errors.As(err, new(*UnsupportedProtocolError)),
		errors.As(err, new(*RemoteDivergedError)):
		return true
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "auth") || strings.Contains(msg, "permission") || strings.Contains(msg, "denied") {
		return true
	}
	if strings.Contains(msg, "not found") || strings.Contains(msg, "no such remote") || strings.Contains(msg, "invalid reference") {
		return true
	}
	if strings.Contains(msg, "unsupported protocol") {
		return true
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return !nerr.Timeout()
	}
	return false
}

const (
	transientTypeRateLimit      = "rate_limit"
	transientTypeNetworkTimeout = "network_timeout"
)

// classifyTransientType returns a short string key for known transient typed errors; empty if unknown.
func classifyTransientType(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.As(err, new(*RateLimitError)):
		return transientTypeRateLimit
	case errors.As(err, new(*NetworkTimeoutError)):
		return transientTypeNetworkTimeout
	}
	return ""
}
