// Package testutil holds helpers shared by tests across packages, mainly
// for standing in external binaries with shell-script stubs.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// StubTool writes an executable shell script named after a binary into
// binDir. Tests use it to stand in for git, gource, and ffmpeg.
func StubTool(t *testing.T, binDir, name, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tool stubbing uses shell scripts")
	}
	if !strings.HasSuffix(script, "\n") {
		script += "\n"
	}
	path := filepath.Join(binDir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil { //nolint:gosec // stub must be executable
		t.Fatalf("write stub %s: %v", name, err)
	}
}

// PrependPath puts dir ahead of the existing PATH for the test's duration,
// so stubs shadow real binaries while their scripts keep access to standard
// utilities.
func PrependPath(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// StubTools writes version-reporting stubs for every named tool into a
// fresh directory and makes that directory the entire PATH. It returns the
// directory for tests that add further stubs.
func StubTools(t *testing.T, names ...string) string {
	t.Helper()
	binDir := t.TempDir()
	for _, name := range names {
		StubTool(t, binDir, name, "echo "+name+" version 1.0.0")
	}
	t.Setenv("PATH", binDir)
	return binDir
}
