// Package edit is the interaction engine: the only path through which the
// clip, track and marker collections of a project change.
package edit

import (
	"io"
	"log/slog"
	"slices"
	"sync"

	"reelkit/internal/timeline"
)

// Config holds the interaction tunables.
type Config struct {
	PixelsPerSecond     float64
	SnapThresholdPx     float64
	MinDuration         float64
	DefaultDropDuration float64
}

// DefaultConfig returns the stock editor tunables.
func DefaultConfig() Config {
	return Config{
		PixelsPerSecond:     80,
		SnapThresholdPx:     8,
		MinDuration:         timeline.MinDuration,
		DefaultDropDuration: 2,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.PixelsPerSecond <= 0 {
		c.PixelsPerSecond = def.PixelsPerSecond
	}
	if c.SnapThresholdPx <= 0 {
		c.SnapThresholdPx = def.SnapThresholdPx
	}
	if c.MinDuration <= 0 {
		c.MinDuration = def.MinDuration
	}
	if c.DefaultDropDuration <= 0 {
		c.DefaultDropDuration = def.DefaultDropDuration
	}
	return c
}

// SnapThreshold returns the snap distance in seconds.
func (c Config) SnapThreshold() float64 {
	return c.SnapThresholdPx / c.PixelsPerSecond
}

// Committer receives the project after every committed mutation.
type Committer interface {
	Commit(p *timeline.Project)
}

// CommitFunc adapts a function to Committer.
type CommitFunc func(p *timeline.Project)

// Commit calls f.
func (f CommitFunc) Commit(p *timeline.Project) { f(p) }

// Option configures an Editor.
type Option func(*Editor)

// WithCommitter registers the receiver of committed states.
func WithCommitter(c Committer) Option {
	return func(e *Editor) { e.committer = c }
}

// WithLogger sets the editor logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.log = l
		}
	}
}

// Editor owns the committed project state and the gestures in flight.
type Editor struct {
	cfg Config
	log *slog.Logger

	mu        sync.Mutex
	project   *timeline.Project
	playhead  float64
	gestures  map[PointerID]*gesture
	committer Committer
}

// New wraps p. The editor takes ownership of p.
func New(p *timeline.Project, cfg Config, opts ...Option) *Editor {
	if p == nil {
		p = timeline.New("")
	}
	e := &Editor{
		cfg:      cfg.withDefaults(),
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		project:  p,
		gestures: make(map[PointerID]*gesture),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the active tunables.
func (e *Editor) Config() Config {
	return e.cfg
}

// Project returns a copy of the committed state.
func (e *Editor) Project() *timeline.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project.Clone()
}

// View returns the committed state with every in-flight gesture preview
// applied on top. It is what a live preview draws.
func (e *Editor) View() *timeline.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	view := e.project.Clone()
	for _, g := range e.gestures {
		for id, patch := range g.preview {
			if c, ok := view.Clip(id); ok {
				*c = patch.Clone()
			}
		}
	}
	return view
}

// Playhead returns the current time used by split and snapping.
func (e *Editor) Playhead() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playhead
}

// SetPlayhead moves the playhead, clamped to the timeline.
func (e *Editor) SetPlayhead(t float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := e.project.TotalDuration()
	switch {
	case t < 0:
		t = 0
	case t > total:
		t = total
	}
	e.playhead = t
}

// Selection returns the selected clip ids in selection order.
func (e *Editor) Selection() Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(Selection(e.project.SelectedClipIDs))
}

// Click updates the selection for a click on id. Unknown ids are ignored.
func (e *Editor) Click(id string, modifier bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.project.Clip(id); !ok {
		return false
	}
	e.project.SelectedClipIDs = Selection(e.project.SelectedClipIDs).Click(id, modifier)
	e.commitLocked()
	return true
}

// ClearSelection empties the clip selection.
func (e *Editor) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.project.SelectedClipIDs) == 0 {
		return
	}
	e.project.SelectedClipIDs = nil
	e.commitLocked()
}

// Mutate applies fn to the committed project and commits when fn reports a
// change. It is the escape hatch for bulk edits such as script rebuilds.
func (e *Editor) Mutate(fn func(p *timeline.Project) bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !fn(e.project) {
		return false
	}
	e.commitLocked()
	return true
}

func (e *Editor) commitLocked() {
	if e.committer == nil {
		return
	}
	e.committer.Commit(e.project.Clone())
}
