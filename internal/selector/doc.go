// Package selector implements the include/exclude rule language that decides
// which repositories are in scope for a run.
//
// One rule per line. A rule names a repository field and the value it must
// equal, optionally prefixed with '!' to invert the effect:
//
//	*:*                       include everything
//	owner:campbellcole        include repos owned by campbellcole
//	!is_fork:true             exclude forks
//	full_name:rust-lang/rust  include one specific repo
//
// Rules are applied in order and the last matching rule wins. With no
// matching rule a repository is excluded (default-deny), so an empty ruleset
// includes nothing.
//
// Matching is exact and case-sensitive; there is no globbing beyond the '*'
// field and no substring matching. The value is everything after the first
// ':' taken verbatim to the end of the line.
package selector
