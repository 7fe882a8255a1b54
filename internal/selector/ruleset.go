package selector

import "fmt"

// Ruleset is an ordered list of selectors defining the full filtering
// policy. Order matters: every selector is evaluated for every candidate and
// the last one that matches decides. A Ruleset is read-only after
// construction and safe for concurrent use.
type Ruleset struct {
	selectors []Selector
}

// TrailEntry records the evaluation of one selector against one candidate.
// Included is the running decision after this selector was applied.
type TrailEntry struct {
	Selector Selector
	Matched  bool
	Included bool
}

// Decision is the final verdict for one repository plus the complete,
// rule-ordered audit trail: one entry per selector, matched or not.
type Decision struct {
	Repo     RepoRecord
	Included bool
	Trail    []TrailEntry
}

// DecidedBy returns the last selector that matched, if any. When ok is
// false the repository never matched a rule and fell through to the
// default-deny verdict.
func (d Decision) DecidedBy() (Selector, bool) {
	for i := len(d.Trail) - 1; i >= 0; i-- {
		if d.Trail[i].Matched {
			return d.Trail[i].Selector, true
		}
	}
	return Selector{}, false
}

// Explain renders a one-line human-readable account of the verdict.
func (d Decision) Explain() string {
	sel, ok := d.DecidedBy()
	if !ok {
		return "excluded by default: no rule matched"
	}
	if d.Included {
		return fmt.Sprintf("included by %s", sel)
	}
	return fmt.Sprintf("excluded by %s", sel)
}

// Selectors returns the rules in evaluation order.
func (rs *Ruleset) Selectors() []Selector { return rs.selectors }

// Len returns the number of rules.
func (rs *Ruleset) Len() int { return len(rs.selectors) }

// Empty reports whether the ruleset has no rules. With default-deny
// semantics an empty ruleset excludes every repository, which is almost
// never what the operator wants; callers should surface a warning.
func (rs *Ruleset) Empty() bool { return len(rs.selectors) == 0 }

// Merge appends the other ruleset's selectors after this one's. Because the
// last matching rule wins, merged rules override earlier ones wherever both
// match the same repository.
func (rs *Ruleset) Merge(other *Ruleset) {
	if other == nil {
		return
	}
	rs.selectors = append(rs.selectors, other.selectors...)
}

// Evaluate applies the full ruleset to every candidate and returns one
// Decision per candidate, in input order.
//
// Each candidate starts excluded. Selectors are folded left to right: a
// matching selector overwrites the running decision with !Inverted, so the
// last match wins regardless of earlier rules. Every selector contributes a
// trail entry whether or not it matched; nothing short-circuits, since a
// later rule can always still flip the outcome and the audit trail must be
// complete.
func (rs *Ruleset) Evaluate(candidates []RepoRecord) []Decision {
	decisions := make([]Decision, 0, len(candidates))
	for _, candidate := range candidates {
		included := false
		trail := make([]TrailEntry, 0, len(rs.selectors))
		for _, sel := range rs.selectors {
			matched := sel.Matches(candidate)
			if matched {
				included = !sel.Inverted
			}
			trail = append(trail, TrailEntry{Selector: sel, Matched: matched, Included: included})
		}
		decisions = append(decisions, Decision{Repo: candidate, Included: included, Trail: trail})
	}
	return decisions
}

// Filter partitions candidates by their final verdict. The included subset
// preserves input order; the full decision list, excluded entries and their
// trails too, is returned for diagnostic consumers. Filtering is pure and
// cannot fail once the ruleset is built.
func (rs *Ruleset) Filter(candidates []RepoRecord) ([]RepoRecord, []Decision) {
	decisions := rs.Evaluate(candidates)
	included := make([]RepoRecord, 0, len(candidates))
	for _, d := range decisions {
		if d.Included {
			included = append(included, d.Repo)
		}
	}
	return included, decisions
}
