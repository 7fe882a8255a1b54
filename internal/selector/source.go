package selector

import (
	"fmt"
	"os"
	"strings"
)

// Compile parses rule text, one rule per line, into a Ruleset.
//
// Lines that are blank (or whitespace-only) and lines whose first
// non-whitespace character is '#' are skipped; everything else must parse as
// a rule. The first malformed line aborts compilation with a *ParseError
// carrying its 1-based position in the input and the raw text, so a broken
// ruleset is rejected before any repository is evaluated.
func Compile(text string) (*Ruleset, error) {
	rs := &Ruleset{}
	for i, raw := range strings.Split(text, "\n") {
		// CRLF input: the carriage return belongs to the line ending, not
		// the rule value.
		raw = strings.TrimSuffix(raw, "\r")
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		sel, err := Parse(raw)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Text: raw, Err: err}
		}
		rs.selectors = append(rs.selectors, sel)
	}
	return rs, nil
}

// FromLines builds a Ruleset from individual rule lines, such as repeated
// command-line flag occurrences. Positions in errors are 1-based indexes
// into the slice. Comment and blank entries are skipped the same way Compile
// skips them.
func FromLines(lines []string) (*Ruleset, error) {
	rs := &Ruleset{}
	for i, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		sel, err := Parse(raw)
		if err != nil {
			return nil, &ParseError{Line: i + 1, Text: raw, Err: err}
		}
		rs.selectors = append(rs.selectors, sel)
	}
	return rs, nil
}

// LoadFile reads a rule file and compiles it.
func LoadFile(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file %s: %w", path, err)
	}
	rs, err := Compile(string(data))
	if err != nil {
		return nil, fmt.Errorf("rule file %s: %w", path, err)
	}
	return rs, nil
}
