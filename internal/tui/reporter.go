package tui

import (
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"reelkit/internal/render"
)

// ExportColumns is the table layout of a frame export.
var ExportColumns = []Column{
	{Header: "SECOND", Width: 6},
	{Header: "FRAMES", Width: 9},
	{Header: "LAYERS", Width: 6},
	{Header: "STATUS", Width: 10},
}

type bucket struct {
	total, done, skipped, failed, layers int
}

// ExportReporter folds per-frame notifications into one row per second of
// timeline and forwards them as RowUpdateMsg.
type ExportReporter struct {
	send func(tea.Msg)
	fps  int

	mu      sync.Mutex
	buckets map[int]*bucket
}

// NewExportReporter prepares a reporter for frames frames at fps.
func NewExportReporter(send func(tea.Msg), fps, frames int) *ExportReporter {
	if fps <= 0 {
		fps = 1
	}
	r := &ExportReporter{send: send, fps: fps, buckets: map[int]*bucket{}}
	for i := 0; i < frames; i++ {
		b := r.bucketFor(i)
		b.total++
	}
	return r
}

// ExportRows adds the pending rows of an export to m.
func ExportRows(m *ProgressModel, fps, frames int) {
	if fps <= 0 {
		fps = 1
	}
	seconds := (frames + fps - 1) / fps
	for s := 0; s < seconds; s++ {
		n := min(fps, frames-s*fps)
		m.AddRow(secondKey(s), []string{fmt.Sprintf("%d", s), fmt.Sprintf("0/%d", n), "-", StatusPending})
	}
}

func secondKey(s int) string {
	return fmt.Sprintf("sec:%04d", s)
}

func (r *ExportReporter) bucketFor(index int) *bucket {
	s := index / r.fps
	b, ok := r.buckets[s]
	if !ok {
		b = &bucket{}
		r.buckets[s] = b
	}
	return b
}

// Start implements render.ProgressReporter.
func (r *ExportReporter) Start(job render.FrameJob) {
	if job.Index%r.fps == 0 {
		r.send(RowUpdateMsg{
			Key:    secondKey(job.Index / r.fps),
			Fields: map[string]string{"STATUS": StatusExporting},
		})
	}
}

// Complete implements render.ProgressReporter.
func (r *ExportReporter) Complete(res render.FrameResult) {
	r.mu.Lock()
	b := r.bucketFor(res.Index)
	b.done++
	switch {
	case res.Err != nil:
		b.failed++
	case res.Skipped:
		b.skipped++
	}
	b.layers = max(b.layers, res.Layers)
	fields := map[string]string{
		"FRAMES": fmt.Sprintf("%d/%d", b.done, b.total),
		"LAYERS": fmt.Sprintf("%d", b.layers),
	}
	if b.done >= b.total {
		switch {
		case b.failed > 0:
			fields["STATUS"] = StatusError
		case b.skipped == b.total:
			fields["STATUS"] = StatusSkipped
		default:
			fields["STATUS"] = StatusExported
		}
	}
	r.mu.Unlock()

	r.send(RowUpdateMsg{Key: secondKey(res.Index / r.fps), Fields: fields})
}
