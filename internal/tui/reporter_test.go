package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"reelkit/internal/render"
)

func TestExportRows(t *testing.T) {
	m := NewProgressModel("", ExportColumns)
	ExportRows(&m, 10, 25)
	if len(m.rows) != 3 {
		t.Fatalf("expected 3 second rows, got %d", len(m.rows))
	}
	if m.rows[2].Fields[1] != "0/5" {
		t.Fatalf("expected partial last second, got %v", m.rows[2].Fields)
	}
}

func TestExportReporterFoldsFramesPerSecond(t *testing.T) {
	var msgs []RowUpdateMsg
	r := NewExportReporter(func(msg tea.Msg) { msgs = append(msgs, msg.(RowUpdateMsg)) }, 2, 3)

	r.Start(render.FrameJob{Index: 0})
	r.Start(render.FrameJob{Index: 1})
	r.Complete(render.FrameResult{Index: 0, Layers: 2})
	r.Complete(render.FrameResult{Index: 1, Layers: 3})
	r.Start(render.FrameJob{Index: 2})
	r.Complete(render.FrameResult{Index: 2, Err: errors.New("disk full")})

	if len(msgs) != 5 {
		t.Fatalf("expected 5 messages, got %d: %+v", len(msgs), msgs)
	}
	if msgs[0].Key != "sec:0000" || msgs[0].Fields["STATUS"] != StatusExporting {
		t.Fatalf("unexpected start message %+v", msgs[0])
	}
	if _, ok := msgs[1].Fields["STATUS"]; ok {
		t.Fatalf("partial second must not be terminal: %+v", msgs[1])
	}
	done := msgs[2]
	if done.Fields["STATUS"] != StatusExported || done.Fields["FRAMES"] != "2/2" || done.Fields["LAYERS"] != "3" {
		t.Fatalf("unexpected completion %+v", done)
	}
	if last := msgs[4]; last.Key != "sec:0001" || last.Fields["STATUS"] != StatusError {
		t.Fatalf("expected failed second, got %+v", last)
	}
}

func TestExportReporterAllSkipped(t *testing.T) {
	var last RowUpdateMsg
	r := NewExportReporter(func(msg tea.Msg) { last = msg.(RowUpdateMsg) }, 30, 1)
	r.Complete(render.FrameResult{Index: 0, Skipped: true})
	if last.Fields["STATUS"] != StatusSkipped {
		t.Fatalf("expected skipped, got %+v", last)
	}
}
