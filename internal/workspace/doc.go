// Package workspace manages the data directory that holds cloned
// repositories, generated gource logs, and run state, supporting both
// persistent (fixed-path) and ephemeral (temporary) modes.
//
// Persistent mode uses a fixed directory (e.g., ~/gourcers-data) that
// survives across runs, enabling incremental log generation and clone
// caching.
//
// Ephemeral mode creates a temporary directory (e.g.,
// gourcers-20260825-101500) that is removed on cleanup. Everything
// cloned or generated there is discarded after the run.
package workspace
