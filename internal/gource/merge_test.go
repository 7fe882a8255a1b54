package gource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"git.home.luguber.info/inful/gourcers/internal/workspace"
)

func writeLogFile(t *testing.T, dataDir, name, content string) {
	t.Helper()
	dir := filepath.Join(dataDir, workspace.GourceDir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCombineReadsLogsInNameOrder(t *testing.T) {
	dataDir := t.TempDir()
	writeLogFile(t, dataDir, "b__second.txt", "20|bob|A|/second/x\n")
	writeLogFile(t, dataDir, "a__first.txt", "10|alice|A|/first/x\n\n30|alice|M|/first/y\n")
	writeLogFile(t, dataDir, "notes.md", "not a log\n")

	lines, err := Combine(dataDir)
	if err != nil {
		t.Fatalf("Combine() error: %v", err)
	}
	want := []string{
		"10|alice|A|/first/x",
		"30|alice|M|/first/y",
		"20|bob|A|/second/x",
	}
	if len(lines) != len(want) {
		t.Fatalf("Combine() returned %d lines, want %d", len(lines), len(want))
	}
	for i, w := range want {
		if string(lines[i]) != w {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i], w)
		}
	}
}

func TestCombineMissingDir(t *testing.T) {
	if _, err := Combine(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("Combine() on missing directory should fail")
	}
}

func TestSortLogOrdersByTimestamp(t *testing.T) {
	lines := [][]byte{
		[]byte("30|c|A|/z"),
		[]byte("10|a|A|/x"),
		[]byte("20|b|A|/y"),
	}
	sorted, dropped := SortLog(lines)
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	want := []string{"10|a|A|/x", "20|b|A|/y", "30|c|A|/z"}
	for i, w := range want {
		if string(sorted[i]) != w {
			t.Errorf("sorted[%d] = %q, want %q", i, sorted[i], w)
		}
	}
}

// Events sharing a timestamp must keep their input order so per-repository
// sequences stay intact in the merged log.
func TestSortLogStableForEqualTimestamps(t *testing.T) {
	lines := [][]byte{
		[]byte("100|a|A|/repo1/first"),
		[]byte("100|a|A|/repo1/second"),
		[]byte("50|b|A|/repo2/early"),
		[]byte("100|b|A|/repo2/third"),
	}
	sorted, dropped := SortLog(lines)
	if dropped != 0 {
		t.Errorf("dropped = %d, want 0", dropped)
	}
	want := []string{
		"50|b|A|/repo2/early",
		"100|a|A|/repo1/first",
		"100|a|A|/repo1/second",
		"100|b|A|/repo2/third",
	}
	for i, w := range want {
		if string(sorted[i]) != w {
			t.Errorf("sorted[%d] = %q, want %q", i, sorted[i], w)
		}
	}
}

func TestSortLogDropsMalformed(t *testing.T) {
	lines := [][]byte{
		[]byte("1000|a|A|/x"),
		[]byte("no delimiter here"),
		[]byte("notanumber|a|A|/y"),
		[]byte("500|b|M|/z"),
	}
	sorted, dropped := SortLog(lines)
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	want := []string{"500|b|M|/z", "1000|a|A|/x"}
	if len(sorted) != len(want) {
		t.Fatalf("len(sorted) = %d, want %d", len(sorted), len(want))
	}
	for i, w := range want {
		if string(sorted[i]) != w {
			t.Errorf("sorted[%d] = %q, want %q", i, sorted[i], w)
		}
	}
}

func TestCombineAndSortWritesSortedFile(t *testing.T) {
	dataDir := t.TempDir()
	writeLogFile(t, dataDir, "one.txt", "300|a|A|/one/late\n100|a|A|/one/early\n")
	writeLogFile(t, dataDir, "two.txt", "200|b|A|/two/mid\nbroken line\n")

	path, err := CombineAndSort(dataDir)
	if err != nil {
		t.Fatalf("CombineAndSort() error: %v", err)
	}
	if path != filepath.Join(dataDir, workspace.SortedFile) {
		t.Errorf("path = %q, want %q", path, filepath.Join(dataDir, workspace.SortedFile))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading sorted log: %v", err)
	}
	want := strings.Join([]string{
		"100|a|A|/one/early",
		"200|b|A|/two/mid",
		"300|a|A|/one/late",
	}, "\n") + "\n"
	if string(data) != want {
		t.Errorf("sorted log = %q, want %q", data, want)
	}
}
