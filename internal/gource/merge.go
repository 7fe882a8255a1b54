package gource

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/gourcers/internal/logfields"
	"git.home.luguber.info/inful/gourcers/internal/workspace"
)

// Combine reads every per-repository log under <dataDir>/gource/ and
// returns the concatenated lines. Directory order from os.ReadDir keeps the
// concatenation deterministic across runs.
func Combine(dataDir string) ([][]byte, error) {
	dir := filepath.Join(dataDir, workspace.GourceDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading gource log directory: %w", err)
	}

	var lines [][]byte
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading gource log %s: %w", entry.Name(), err)
		}
		for _, line := range bytes.Split(data, []byte("\n")) {
			if len(line) == 0 {
				continue
			}
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// SortLog orders log lines by their leading Unix timestamp field. The sort
// is stable, so events sharing a timestamp keep their per-repository
// relative order. Lines without a pipe delimiter or with a non-numeric
// timestamp are dropped; the count of dropped lines is returned alongside.
func SortLog(lines [][]byte) ([][]byte, int) {
	type keyed struct {
		ts   int64
		line []byte
	}

	keys := make([]keyed, 0, len(lines))
	dropped := 0
	for _, line := range lines {
		field, _, found := bytes.Cut(line, []byte("|"))
		if !found {
			dropped++
			continue
		}
		ts, err := strconv.ParseInt(string(field), 10, 64)
		if err != nil {
			dropped++
			continue
		}
		keys = append(keys, keyed{ts: ts, line: line})
	}

	sort.SliceStable(keys, func(i, j int) bool { return keys[i].ts < keys[j].ts })

	sorted := make([][]byte, len(keys))
	for i, k := range keys {
		sorted[i] = k.line
	}
	return sorted, dropped
}

// CombineAndSort merges all per-repository logs into a single
// chronologically ordered file at <dataDir>/sorted.txt and returns its
// path. Malformed lines are dropped with a warning rather than failing the
// run.
func CombineAndSort(dataDir string) (string, error) {
	lines, err := Combine(dataDir)
	if err != nil {
		return "", err
	}

	sorted, dropped := SortLog(lines)
	if dropped > 0 {
		slog.Warn("dropped malformed gource log lines", logfields.Count(dropped))
	}

	var buf bytes.Buffer
	for _, line := range sorted {
		buf.Write(line)
		buf.WriteByte('\n')
	}

	out := filepath.Join(dataDir, workspace.SortedFile)
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing sorted log: %w", err)
	}
	slog.Debug("combined gource logs", logfields.Path(out), logfields.Count(len(sorted)))
	return out, nil
}
