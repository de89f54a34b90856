package store

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"reelkit/internal/timeline"
)

// DefaultDebounce is the quiet period before a committed project is written.
const DefaultDebounce = 250 * time.Millisecond

// Debouncer coalesces committed projects and writes the latest one after a
// quiet period. It satisfies the editor's Committer.
type Debouncer struct {
	store   Store
	delay   time.Duration
	timeout time.Duration
	log     *slog.Logger

	// writeMu orders writes so an older snapshot never lands after a newer one.
	writeMu sync.Mutex

	mu      sync.Mutex
	pending *timeline.Project
	timer   *time.Timer
	closed  bool
	saves   int
}

// NewDebouncer wraps s. A non-positive delay picks DefaultDebounce.
func NewDebouncer(s Store, delay time.Duration, logger *slog.Logger) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Debouncer{store: s, delay: delay, timeout: 10 * time.Second, log: logger}
}

// Commit schedules p for writing, replacing any snapshot still waiting.
func (d *Debouncer) Commit(p *timeline.Project) {
	if p == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.pending = p
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fire)
		return
	}
	d.timer.Reset(d.delay)
}

// Pending reports whether a snapshot is waiting to be written.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Saves returns the number of completed writes.
func (d *Debouncer) Saves() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saves
}

// Flush writes the waiting snapshot now.
func (d *Debouncer) Flush(ctx context.Context) error {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()
	return d.write(ctx)
}

// Close flushes and ignores later commits.
func (d *Debouncer) Close(ctx context.Context) error {
	err := d.Flush(ctx)
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return err
}

func (d *Debouncer) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	_ = d.write(ctx)
}

func (d *Debouncer) write(ctx context.Context) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	d.mu.Lock()
	p := d.pending
	d.pending = nil
	d.mu.Unlock()
	if p == nil {
		return nil
	}

	if err := d.store.Save(ctx, p.ID, p); err != nil {
		d.log.Error("project save failed", "project", p.ID, "err", err)
		return err
	}
	d.mu.Lock()
	d.saves++
	d.mu.Unlock()
	d.log.Debug("project saved", "project", p.ID, "clips", len(p.Clips))
	return nil
}
