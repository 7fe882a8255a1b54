// Package display renders terminal output for the CLI: live per-repository
// progress during the sync and log generation stages, verdict and doctor
// tables, and the numbered stage banners of a render run.
package display

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// StepCount is the number of numbered stages in a full render run.
const StepCount = 5

// Step emits a numbered stage banner through the logger so it lands in
// text and JSON output alike.
func Step(n int, msg string) {
	slog.Info(fmt.Sprintf("[%d/%d] %s", n, StepCount, msg))
}

// IsTTY reports whether f is attached to a terminal.
func IsTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
