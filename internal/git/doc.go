// Package git clones and updates the selected repositories using go-git.
//
// This package handles:
//   - Cloning over https (token auth) or ssh (agent auth)
//   - Updating existing clones via pull, re-cloning on divergence
//   - Bounded-parallel syncing of a whole selection
//   - Retry with backoff for transient network failures
//   - Typed errors for structured classification upstream
//
// Clone destinations live under a single repos directory, one
// path-friendly subdirectory per repository full name.
package git
