package selector

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		line string
		want Selector
	}{
		{"*:*", Selector{Field: FieldAny, Value: "*"}},
		{"!*:*", Selector{Field: FieldAny, Value: "*", Inverted: true}},
		{"owner:rust-lang", Selector{Field: FieldOwner, Value: "rust-lang"}},
		{"!owner:rust-lang", Selector{Field: FieldOwner, Value: "rust-lang", Inverted: true}},
		{"name:rust", Selector{Field: FieldName, Value: "rust"}},
		{"full_name:rust-lang/rust", Selector{Field: FieldFullName, Value: "rust-lang/rust"}},
		{"is_fork:true", Selector{Field: FieldIsFork, Value: "true"}},
		{"!is_fork:false", Selector{Field: FieldIsFork, Value: "false", Inverted: true}},
		// The value runs to the end of the line: later colons, spaces, '#'
		// and trailing whitespace are all part of it.
		{"owner:rust-lang:extra", Selector{Field: FieldOwner, Value: "rust-lang:extra"}},
		{"owner:spaces are allowed", Selector{Field: FieldOwner, Value: "spaces are allowed"}},
		{"name:foo # not a comment", Selector{Field: FieldName, Value: "foo # not a comment"}},
		{"name:trailing ", Selector{Field: FieldName, Value: "trailing "}},
		// The wildcard field ignores its value entirely.
		{"*:", Selector{Field: FieldAny, Value: ""}},
		{"*:anything", Selector{Field: FieldAny, Value: "anything"}},
	}

	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			got, err := Parse(tc.line)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.line, err)
			}
			if got != tc.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", tc.line, got, tc.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		line string
		want error
	}{
		{"invalid", ErrMissingSeparator},
		{"owner", ErrMissingSeparator},
		{"!owner", ErrMissingSeparator},
		{"owner:", ErrEmptyValue},
		{"name:", ErrEmptyValue},
		{"Owner:foo", ErrUnknownField}, // field names are case-sensitive
		{"OWNER:foo", ErrUnknownField},
		{"ownr:foo", ErrUnknownField},
		{"public:true", ErrUnknownField},
		{" owner:foo", ErrUnknownField}, // no whitespace allowance inside a rule
		{":value", ErrUnknownField},
		{"is_fork:no", ErrInvalidBool},
		{"is_fork:yes", ErrInvalidBool},
		{"is_fork:maybe", ErrInvalidBool},
		{"is_fork:True", ErrInvalidBool}, // booleans are case-sensitive too
		{"!is_fork:1", ErrInvalidBool},
		{"is_fork:", ErrEmptyValue},
	}

	for _, tc := range cases {
		t.Run(tc.line, func(t *testing.T) {
			_, err := Parse(tc.line)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want %v", tc.line, tc.want)
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("Parse(%q) error = %v, want %v", tc.line, err, tc.want)
			}
		})
	}
}

func TestSelectorMatches(t *testing.T) {
	repo := RepoRecord{Name: "rust", Owner: "rust-lang", FullName: "rust-lang/rust", IsFork: false}
	fork := RepoRecord{Name: "rust", Owner: "someone", FullName: "someone/rust", IsFork: true}

	cases := []struct {
		rule string
		repo RepoRecord
		want bool
	}{
		{"*:*", repo, true},
		{"*:*", fork, true},
		{"name:rust", repo, true},
		{"name:rus", repo, false},
		{"name:rust-lang", repo, false},
		{"owner:rust-lang", repo, true},
		{"owner:rust-lang", fork, false},
		{"owner:Rust-Lang", repo, false}, // values compare case-sensitively
		{"full_name:rust-lang/rust", repo, true},
		{"full_name:rust-lang/rust", fork, false},
		{"is_fork:true", repo, false},
		{"is_fork:true", fork, true},
		{"is_fork:false", repo, true},
		{"is_fork:false", fork, false},
	}

	for _, tc := range cases {
		t.Run(tc.rule, func(t *testing.T) {
			sel, err := Parse(tc.rule)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.rule, err)
			}
			if got := sel.Matches(tc.repo); got != tc.want {
				t.Fatalf("%q.Matches(%s) = %v, want %v", tc.rule, tc.repo.FullName, got, tc.want)
			}
		})
	}
}

// Inversion never changes whether a selector matches, only what a match
// means for the running decision.
func TestInversionDoesNotAffectMatching(t *testing.T) {
	repo := RepoRecord{Name: "a", Owner: "o", FullName: "o/a"}

	plain, err := Parse("owner:o")
	if err != nil {
		t.Fatal(err)
	}
	inverted, err := Parse("!owner:o")
	if err != nil {
		t.Fatal(err)
	}

	if !plain.Matches(repo) || !inverted.Matches(repo) {
		t.Fatalf("inversion changed match outcome: plain=%v inverted=%v", plain.Matches(repo), inverted.Matches(repo))
	}
}

func TestSelectorString(t *testing.T) {
	lines := []string{
		"*:*",
		"!*:*",
		"owner:rust-lang",
		"!is_fork:true",
		"full_name:rust-lang/rust",
		"name:foo # not a comment",
	}

	for _, line := range lines {
		sel, err := Parse(line)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", line, err)
		}
		if got := sel.String(); got != line {
			t.Fatalf("String() = %q, want %q", got, line)
		}
	}
}

func TestFieldString(t *testing.T) {
	cases := map[Field]string{
		FieldAny:      "*",
		FieldName:     "name",
		FieldOwner:    "owner",
		FieldFullName: "full_name",
		FieldIsFork:   "is_fork",
	}
	for field, want := range cases {
		if got := field.String(); got != want {
			t.Fatalf("Field(%d).String() = %q, want %q", int(field), got, want)
		}
	}
}
