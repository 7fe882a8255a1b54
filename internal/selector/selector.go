package selector

import (
	"fmt"
	"strings"
)

// Field identifies which repository attribute a selector matches against.
// Unknown field names are rejected at parse time, so evaluation only ever
// sees the values below.
type Field int

const (
	// FieldAny matches every repository; its value is ignored.
	FieldAny Field = iota
	// FieldName matches the repository short name.
	FieldName
	// FieldOwner matches the owning account or organization login.
	FieldOwner
	// FieldFullName matches the full "owner/name" form as its own field,
	// not derived from the other two.
	FieldFullName
	// FieldIsFork matches the fork flag; the value must be the literal
	// "true" or "false".
	FieldIsFork
)

// String returns the field name as written in rule text.
func (f Field) String() string {
	switch f {
	case FieldAny:
		return "*"
	case FieldName:
		return "name"
	case FieldOwner:
		return "owner"
	case FieldFullName:
		return "full_name"
	case FieldIsFork:
		return "is_fork"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// RepoRecord is the minimal description of a repository that rules are
// evaluated against. It is produced by the repository-listing client and
// read-only to this package.
type RepoRecord struct {
	Name     string
	Owner    string
	FullName string
	IsFork   bool
}

// Selector is one parsed rule: a field/value pair plus an inversion flag.
// A matching non-inverted selector marks the repository included; a matching
// inverted selector (written with a leading '!') marks it excluded,
// overriding any earlier rule. Selectors are immutable once parsed.
type Selector struct {
	Field    Field
	Value    string
	Inverted bool
}

// Parse parses a single rule line.
//
// The line must be "field:value" with an optional leading '!'. The value is
// everything after the first ':' taken verbatim, trailing whitespace
// included: there is no end-of-line comment syntax, so "name:foo # bar"
// matches the literal string "foo # bar". Stripping whole-line comments and
// blanks is the caller's job (see Compile).
func Parse(line string) (Selector, error) {
	rest := line
	inverted := strings.HasPrefix(rest, "!")
	if inverted {
		rest = rest[1:]
	}

	name, value, ok := strings.Cut(rest, ":")
	if !ok {
		return Selector{}, fmt.Errorf("%q: %w", line, ErrMissingSeparator)
	}

	var field Field
	switch name {
	case "*":
		field = FieldAny
	case "name":
		field = FieldName
	case "owner":
		field = FieldOwner
	case "full_name":
		field = FieldFullName
	case "is_fork":
		field = FieldIsFork
	default:
		return Selector{}, fmt.Errorf("%w %q", ErrUnknownField, name)
	}

	if value == "" && field != FieldAny {
		return Selector{}, fmt.Errorf("%w for field %q", ErrEmptyValue, name)
	}
	if field == FieldIsFork && value != "true" && value != "false" {
		return Selector{}, fmt.Errorf("%w, got %q", ErrInvalidBool, value)
	}

	return Selector{Field: field, Value: value, Inverted: inverted}, nil
}

// Matches reports whether the selector matches the candidate. Comparison is
// exact string equality; for FieldIsFork the flag is compared against the
// parsed boolean value.
func (s Selector) Matches(candidate RepoRecord) bool {
	switch s.Field {
	case FieldAny:
		return true
	case FieldName:
		return candidate.Name == s.Value
	case FieldOwner:
		return candidate.Owner == s.Value
	case FieldFullName:
		return candidate.FullName == s.Value
	case FieldIsFork:
		return candidate.IsFork == (s.Value == "true")
	default:
		return false
	}
}

// String reconstructs the rule text, e.g. "!is_fork:true".
func (s Selector) String() string {
	var b strings.Builder
	if s.Inverted {
		b.WriteByte('!')
	}
	b.WriteString(s.Field.String())
	b.WriteByte(':')
	b.WriteString(s.Value)
	return b.String()
}
