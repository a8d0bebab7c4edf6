// Package progress folds dataset extraction snapshots into latched state
// suitable for presentation. It carries no extraction logic; it only
// projects what the orchestrator reports.
package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"partwise/internal/dataset"
)

// Snapshot is the latched, presentation-ready view of a run. Percent never
// decreases across the life of one projector.
type Snapshot struct {
	DatasetName         string
	Status              dataset.Status
	Percent             float64
	CurrentCategory     string
	CurrentFile         string
	CategoriesCompleted int
	TotalCategories     int
	Elapsed             time.Duration
	Remaining           time.Duration
}

// Terminal reports whether the run has reached a final status.
func (s Snapshot) Terminal() bool {
	switch s.Status {
	case dataset.StatusCompleted, dataset.StatusFailed, dataset.StatusCancelled:
		return true
	}
	return false
}

// Label renders a short one-line description for status displays.
func (s Snapshot) Label() string {
	switch s.Status {
	case dataset.StatusPending:
		return "waiting to start"
	case dataset.StatusCompleted:
		return fmt.Sprintf("completed in %s", s.Elapsed.Round(time.Second))
	case dataset.StatusFailed:
		return "finished with failures"
	case dataset.StatusCancelled:
		return "cancelled"
	}
	if s.CurrentFile != "" {
		return fmt.Sprintf("%s: %s", s.CurrentCategory, s.CurrentFile)
	}
	if s.CurrentCategory != "" {
		return s.CurrentCategory
	}
	return "extracting"
}

// ETA renders the remaining-time estimate, or a placeholder before enough
// progress has accumulated to extrapolate.
func (s Snapshot) ETA() string {
	if s.Terminal() || s.Remaining <= 0 {
		return "--"
	}
	return humanize.Time(time.Now().Add(s.Remaining))
}

// Projector consumes dataset progress callbacks on the extraction goroutine
// and serves latched snapshots to concurrent readers.
type Projector struct {
	mu      sync.Mutex
	now     func() time.Time
	started time.Time
	state   Snapshot
}

// Option customizes a Projector.
type Option func(*Projector)

// WithClock substitutes the time source (used in tests).
func WithClock(now func() time.Time) Option {
	return func(p *Projector) {
		if now != nil {
			p.now = now
		}
	}
}

// NewProjector returns a projector whose clock starts at the first observed
// update.
func NewProjector(opts ...Option) *Projector {
	p := &Projector{now: time.Now}
	p.state.Status = dataset.StatusPending
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Observe folds one orchestrator update into the latched state. It is the
// dataset.ProgressFunc for a run.
func (p *Projector) Observe(u dataset.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started.IsZero() {
		p.started = p.now()
	}
	// Terminal states latch; late or out-of-order updates cannot revive a
	// finished run.
	if p.state.Terminal() {
		return
	}

	p.state.DatasetName = u.DatasetName
	p.state.Status = u.Status
	p.state.CurrentCategory = u.CurrentCategory
	p.state.CurrentFile = u.CurrentFile
	p.state.CategoriesCompleted = u.CategoriesCompleted
	p.state.TotalCategories = u.TotalCategories

	if percent := u.OverallProgress * 100; percent > p.state.Percent {
		p.state.Percent = percent
	}
	p.refreshTimesLocked()
}

// Snapshot returns the current latched view. Safe to call from any
// goroutine, including while Observe runs.
func (p *Projector) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started.IsZero() && !p.state.Terminal() {
		p.refreshTimesLocked()
	}
	return p.state
}

// refreshTimesLocked recomputes elapsed time and the linear remaining-time
// estimate from the latched percent.
func (p *Projector) refreshTimesLocked() {
	elapsed := p.now().Sub(p.started)
	p.state.Elapsed = elapsed

	fraction := p.state.Percent / 100
	if fraction > 0 && fraction < 1 {
		p.state.Remaining = time.Duration(float64(elapsed) * (1 - fraction) / fraction)
	} else {
		p.state.Remaining = 0
	}
}
