// Package preflight verifies that the external binaries the pipeline
// shells out to (git, gource, ffmpeg) are present on PATH before any
// network or filesystem work starts.
package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// Tool names probed by Check.
const (
	ToolGit    = "git"
	ToolGource = "gource"
	ToolFFmpeg = "ffmpeg"
)

// Tool describes the probe result for one external binary.
type Tool struct {
	Name    string
	Found   bool
	Path    string
	Version string // best-effort, empty when detection fails
	Err     error  // set when the binary is not on PATH
}

type probe struct {
	name string
	args []string
}

// gource exits nonzero on --version in some builds, so presence via
// LookPath is the primary signal and --help supplies the version line.
var probes = []probe{
	{name: ToolGit, args: []string{"--version"}},
	{name: ToolGource, args: []string{"--help"}},
	{name: ToolFFmpeg, args: []string{"-version"}},
}

// Check probes every required binary and returns one result per tool,
// in a stable order (git, gource, ffmpeg).
func Check(ctx context.Context) []Tool {
	results := make([]Tool, 0, len(probes))
	for _, p := range probes {
		results = append(results, runProbe(ctx, p))
	}
	return results
}

func runProbe(ctx context.Context, p probe) Tool {
	path, err := exec.LookPath(p.name)
	if err != nil {
		return Tool{Name: p.name, Err: err}
	}

	t := Tool{Name: p.name, Found: true, Path: path}

	// #nosec G204 -- path comes from exec.LookPath, not user input
	out, err := exec.CommandContext(ctx, path, p.args...).CombinedOutput()
	if err != nil && len(out) == 0 {
		return t
	}
	t.Version = parseVersion(string(out))
	return t
}

var versionRegex = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?)`)

// parseVersion extracts a dotted version number from probe output.
// Returns empty string when no version-looking token is present.
func parseVersion(output string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	matches := versionRegex.FindStringSubmatch(line)
	if len(matches) >= 2 {
		return matches[1]
	}
	return ""
}

// Missing returns the names of tools that were not found on PATH.
func Missing(tools []Tool) []string {
	var names []string
	for _, t := range tools {
		if !t.Found {
			names = append(names, t.Name)
		}
	}
	return names
}

// Err returns a single error naming every missing tool, or nil when
// all tools are present.
func Err(tools []Tool) error {
	missing := Missing(tools)
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}
