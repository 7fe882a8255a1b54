package display

import (
	"io"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

// Progress renders one live tracker per repository during a stage. A
// disabled Progress is an inert shell, so stages can hook it
// unconditionally and let the structured logs carry the per-repository
// story instead.
type Progress struct {
	pw       progress.Writer
	mu       sync.Mutex
	trackers map[string]*progress.Tracker
}

// NewProgress returns a live renderer writing to out, or a disabled one
// when enabled is false. expected sizes the tracker pane.
func NewProgress(out io.Writer, enabled bool, expected int) *Progress {
	if !enabled {
		return &Progress{}
	}
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(false)
	pw.SetNumTrackersExpected(expected)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	go pw.Render()
	return &Progress{pw: pw, trackers: make(map[string]*progress.Tracker, expected)}
}

// Enabled reports whether live rendering is active.
func (p *Progress) Enabled() bool { return p.pw != nil }

// Start registers a tracker for one repository.
func (p *Progress) Start(name string) {
	if p.pw == nil {
		return
	}
	t := &progress.Tracker{Message: name, Total: 1, Units: progress.UnitsDefault}
	p.mu.Lock()
	p.trackers[name] = t
	p.mu.Unlock()
	p.pw.AppendTracker(t)
}

// Done completes the repository's tracker.
func (p *Progress) Done(name string) {
	if t := p.tracker(name); t != nil {
		t.Increment(1)
	}
}

// Fail marks the repository's tracker as errored.
func (p *Progress) Fail(name string) {
	if t := p.tracker(name); t != nil {
		t.MarkAsErrored()
	}
}

func (p *Progress) tracker(name string) *progress.Tracker {
	if p.pw == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trackers[name]
}

// Stop ends rendering and waits for the final frame to flush.
func (p *Progress) Stop() {
	if p.pw == nil {
		return
	}
	p.pw.Stop()
	for p.pw.IsRenderInProgress() {
		time.Sleep(5 * time.Millisecond)
	}
}
