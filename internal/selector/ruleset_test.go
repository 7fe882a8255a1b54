package selector

import (
	"strings"
	"testing"
)

func mustRules(t *testing.T, lines ...string) *Ruleset {
	t.Helper()
	rs, err := FromLines(lines)
	if err != nil {
		t.Fatalf("FromLines(%v) returned error: %v", lines, err)
	}
	return rs
}

func names(records []RepoRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func TestDefaultDeny(t *testing.T) {
	rs := &Ruleset{}
	candidates := []RepoRecord{
		{Name: "a", Owner: "x", FullName: "x/a"},
		{Name: "b", Owner: "y", FullName: "y/b", IsFork: true},
	}

	included, decisions := rs.Filter(candidates)
	if len(included) != 0 {
		t.Fatalf("empty ruleset included %v, want none", names(included))
	}
	if len(decisions) != len(candidates) {
		t.Fatalf("got %d decisions, want %d", len(decisions), len(candidates))
	}
	for _, d := range decisions {
		if d.Included {
			t.Fatalf("repo %s included by empty ruleset", d.Repo.Name)
		}
		if len(d.Trail) != 0 {
			t.Fatalf("repo %s has %d trail entries, want 0", d.Repo.Name, len(d.Trail))
		}
	}
}

func TestLastMatchWins(t *testing.T) {
	repo := RepoRecord{Name: "r", Owner: "A", FullName: "A/r"}

	included, _ := mustRules(t, "owner:A", "!owner:A").Filter([]RepoRecord{repo})
	if len(included) != 0 {
		t.Fatalf("exclude-last should exclude, got %v", names(included))
	}

	included, _ = mustRules(t, "!owner:A", "owner:A").Filter([]RepoRecord{repo})
	if len(included) != 1 {
		t.Fatalf("include-last should include, got %v", names(included))
	}
}

func TestAnyWildcard(t *testing.T) {
	candidates := []RepoRecord{
		{Name: "a", Owner: "x", FullName: "x/a"},
		{Name: "b", Owner: "y", FullName: "y/b", IsFork: true},
		{Name: "c", Owner: "z", FullName: "z/c"},
	}

	included, _ := mustRules(t, "*:*").Filter(candidates)
	if len(included) != len(candidates) {
		t.Fatalf("*:* included %v, want all %d", names(included), len(candidates))
	}

	included, _ = mustRules(t, "!*:*").Filter(candidates)
	if len(included) != 0 {
		t.Fatalf("!*:* included %v, want none", names(included))
	}

	// An inverted wildcard after an inclusive one wipes it out.
	included, _ = mustRules(t, "*:*", "!*:*").Filter(candidates)
	if len(included) != 0 {
		t.Fatalf("trailing !*:* included %v, want none", names(included))
	}
}

func TestFieldExactness(t *testing.T) {
	candidates := []RepoRecord{
		{Name: "foo", Owner: "o", FullName: "o/foo"},
		{Name: "foobar", Owner: "o", FullName: "o/foobar"},
		{Name: "xfoo", Owner: "o", FullName: "o/xfoo"},
	}

	included, _ := mustRules(t, "name:foo").Filter(candidates)
	if got := names(included); len(got) != 1 || got[0] != "foo" {
		t.Fatalf("name:foo included %v, want [foo] only", got)
	}
}

func TestOrderPreservation(t *testing.T) {
	candidates := []RepoRecord{
		{Name: "zebra", Owner: "o", FullName: "o/zebra"},
		{Name: "alpha", Owner: "o", FullName: "o/alpha"},
		{Name: "skip", Owner: "other", FullName: "other/skip"},
		{Name: "mid", Owner: "o", FullName: "o/mid"},
	}

	// Rule order deliberately disagrees with candidate order; output order
	// must follow the input sequence regardless.
	included, _ := mustRules(t, "name:mid", "name:zebra", "owner:o").Filter(candidates)
	want := []string{"zebra", "alpha", "mid"}
	got := names(included)
	if len(got) != len(want) {
		t.Fatalf("included %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("included %v, want %v", got, want)
		}
	}
}

func TestTrailCompleteness(t *testing.T) {
	rules := []string{"owner:a", "!is_fork:true", "name:x", "*:*", "!owner:b"}
	rs := mustRules(t, rules...)

	candidates := []RepoRecord{
		{Name: "x", Owner: "a", FullName: "a/x"},
		{Name: "y", Owner: "b", FullName: "b/y", IsFork: true},
		{Name: "z", Owner: "c", FullName: "c/z"},
	}

	decisions := rs.Evaluate(candidates)
	if len(decisions) != len(candidates) {
		t.Fatalf("got %d decisions, want %d", len(decisions), len(candidates))
	}
	for _, d := range decisions {
		if len(d.Trail) != len(rules) {
			t.Fatalf("repo %s trail has %d entries, want %d", d.Repo.Name, len(d.Trail), len(rules))
		}
		for i, entry := range d.Trail {
			if entry.Selector.String() != rules[i] {
				t.Fatalf("repo %s trail[%d] = %s, want %s", d.Repo.Name, i, entry.Selector, rules[i])
			}
		}
	}
}

// The trail records the running decision after each step, so intermediate
// flips are visible even when a later rule overrides them.
func TestTrailRunningDecision(t *testing.T) {
	rs := mustRules(t, "owner:a", "!is_fork:true", "name:keep")
	fork := RepoRecord{Name: "keep", Owner: "a", FullName: "a/keep", IsFork: true}

	decisions := rs.Evaluate([]RepoRecord{fork})
	trail := decisions[0].Trail

	wantIncluded := []bool{true, false, true}
	wantMatched := []bool{true, true, true}
	for i := range trail {
		if trail[i].Matched != wantMatched[i] || trail[i].Included != wantIncluded[i] {
			t.Fatalf("trail[%d] = {matched:%v included:%v}, want {matched:%v included:%v}",
				i, trail[i].Matched, trail[i].Included, wantMatched[i], wantIncluded[i])
		}
	}
	if !decisions[0].Included {
		t.Fatal("final decision should be included")
	}
}

func TestScenarioOwnerWithForkExclusion(t *testing.T) {
	rs := mustRules(t, "owner:campbellcole", "!is_fork:true")
	candidates := []RepoRecord{
		{Name: "a", Owner: "campbellcole", FullName: "campbellcole/a", IsFork: false},
		{Name: "b", Owner: "campbellcole", FullName: "campbellcole/b", IsFork: true},
		{Name: "c", Owner: "other", FullName: "other/c", IsFork: false},
	}

	included, decisions := rs.Filter(candidates)
	if got := names(included); len(got) != 1 || got[0] != "a" {
		t.Fatalf("included %v, want [a]", got)
	}

	// b: owner rule includes it, fork rule overrides.
	if sel, ok := decisions[1].DecidedBy(); !ok || sel.String() != "!is_fork:true" {
		t.Fatalf("b decided by %v, want !is_fork:true", sel)
	}
	// c: nothing matched.
	if _, ok := decisions[2].DecidedBy(); ok {
		t.Fatal("c should not have a deciding rule")
	}
}

func TestDecidedByPicksLastMatch(t *testing.T) {
	rs := mustRules(t, "*:*", "owner:a", "!name:drop")
	repo := RepoRecord{Name: "drop", Owner: "a", FullName: "a/drop"}

	decisions := rs.Evaluate([]RepoRecord{repo})
	sel, ok := decisions[0].DecidedBy()
	if !ok {
		t.Fatal("expected a deciding rule")
	}
	if sel.String() != "!name:drop" {
		t.Fatalf("decided by %s, want !name:drop", sel)
	}
}

func TestExplain(t *testing.T) {
	rs := mustRules(t, "owner:campbellcole", "!is_fork:true")
	decisions := rs.Evaluate([]RepoRecord{
		{Name: "a", Owner: "campbellcole", FullName: "campbellcole/a"},
		{Name: "b", Owner: "campbellcole", FullName: "campbellcole/b", IsFork: true},
		{Name: "c", Owner: "other", FullName: "other/c"},
	})

	cases := []string{
		"included by owner:campbellcole",
		"excluded by !is_fork:true",
		"excluded by default: no rule matched",
	}
	for i, want := range cases {
		if got := decisions[i].Explain(); got != want {
			t.Fatalf("decision %d Explain() = %q, want %q", i, got, want)
		}
	}
}

func TestMerge(t *testing.T) {
	base := mustRules(t, "owner:a")
	override := mustRules(t, "!owner:a")
	base.Merge(override)

	if base.Len() != 2 {
		t.Fatalf("merged ruleset has %d rules, want 2", base.Len())
	}

	// Merged rules come after, so they win for overlapping matches.
	included, _ := base.Filter([]RepoRecord{{Name: "r", Owner: "a", FullName: "a/r"}})
	if len(included) != 0 {
		t.Fatalf("merged exclusion should win, got %v", names(included))
	}

	base.Merge(nil) // no-op
	if base.Len() != 2 {
		t.Fatalf("nil merge changed length to %d", base.Len())
	}
}

func TestEmpty(t *testing.T) {
	if !(&Ruleset{}).Empty() {
		t.Fatal("zero ruleset should be empty")
	}
	if mustRules(t, "*:*").Empty() {
		t.Fatal("ruleset with rules reported empty")
	}
	if rs := mustRules(t, "# comment", ""); !rs.Empty() {
		t.Fatal("comment-only input should produce an empty ruleset")
	}
}

// Evaluation must not mutate the ruleset; repeated runs give identical
// results, and candidate slices are never reordered.
func TestEvaluateIsPure(t *testing.T) {
	rs := mustRules(t, "owner:a", "!is_fork:true")
	candidates := []RepoRecord{
		{Name: "a", Owner: "a", FullName: "a/a"},
		{Name: "b", Owner: "a", FullName: "a/b", IsFork: true},
	}

	first := rs.Evaluate(candidates)
	second := rs.Evaluate(candidates)
	for i := range first {
		if first[i].Included != second[i].Included {
			t.Fatalf("decision %d changed between runs", i)
		}
	}
	if candidates[0].Name != "a" || candidates[1].Name != "b" {
		t.Fatal("candidate slice was reordered")
	}
}

func TestRulesetStringRoundTrip(t *testing.T) {
	lines := []string{"*:*", "!is_fork:true", "owner:campbellcole"}
	rs := mustRules(t, lines...)

	var rendered []string
	for _, sel := range rs.Selectors() {
		rendered = append(rendered, sel.String())
	}
	if strings.Join(rendered, "\n") != strings.Join(lines, "\n") {
		t.Fatalf("rendered %v, want %v", rendered, lines)
	}
}
