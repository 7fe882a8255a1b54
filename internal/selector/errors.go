package selector

import (
	"errors"
	"fmt"
)

// Base parse failures, wrapped with detail by Parse. Callers can branch with
// errors.Is without string matching.
var (
	ErrMissingSeparator = errors.New("missing ':' separator")
	ErrUnknownField     = errors.New("unknown field")
	ErrEmptyValue       = errors.New("empty value")
	ErrInvalidBool      = errors.New("value must be 'true' or 'false'")
)

// ParseError reports a malformed rule line. Line is the 1-based position in
// the original input, counting comment and blank lines, and Text is the raw
// line as read.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rule line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
