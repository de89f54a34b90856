package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func exportModel() ProgressModel {
	m := NewProgressModel("demo", ExportColumns).WithVerb("Exporting")
	m.AddRow("sec:0000", []string{"0", "0/10", "-", StatusPending})
	m.AddRow("sec:0001", []string{"1", "0/5", "-", StatusPending})
	return m
}

func TestRowUpdateMsg(t *testing.T) {
	m := exportModel()
	updated, _ := m.Update(RowUpdateMsg{
		Key:    "sec:0000",
		Fields: map[string]string{"STATUS": StatusExported, "FRAMES": "10/10"},
	})
	m = updated.(ProgressModel)

	if m.rows[0].Fields[3] != StatusExported || m.rows[0].Fields[1] != "10/10" {
		t.Errorf("unexpected row %v", m.rows[0].Fields)
	}
	if m.rows[1].Fields[3] != StatusPending {
		t.Errorf("expected second row untouched, got %v", m.rows[1].Fields)
	}

	updated, _ = m.Update(RowUpdateMsg{Key: "sec:9999", Fields: map[string]string{"STATUS": StatusError}})
	m = updated.(ProgressModel)
	if m.rows[0].Fields[3] != StatusExported || m.rows[1].Fields[3] != StatusPending {
		t.Error("unknown keys must be ignored")
	}
}

func TestDoneAndErrorQuit(t *testing.T) {
	tests := []struct {
		name    string
		msg     tea.Msg
		wantErr bool
	}{
		{name: "work done", msg: WorkDoneMsg{}},
		{name: "error", msg: ErrorMsg{Err: errors.New("boom")}, wantErr: true},
		{name: "ctrl+c", msg: tea.KeyMsg{Type: tea.KeyCtrlC}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, cmd := exportModel().Update(tt.msg)
			m := updated.(ProgressModel)
			if !m.Done() || cmd == nil {
				t.Fatalf("expected done with quit command, got done=%v cmd=%v", m.Done(), cmd != nil)
			}
			if (m.Err() != nil) != tt.wantErr {
				t.Fatalf("Err() = %v", m.Err())
			}
		})
	}
}

func TestViewFooter(t *testing.T) {
	m := exportModel()
	view := m.View()
	for _, want := range []string{"demo", "SECOND", "FRAMES", "0/10", StatusPending, "Exporting 0/2"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q:\n%s", want, view)
		}
	}

	updated, _ := m.Update(WorkDoneMsg{})
	if strings.Contains(updated.View(), "Exporting") {
		t.Error("footer must disappear once done")
	}
}

func TestProgressCounts(t *testing.T) {
	m := NewProgressModel("", []Column{{Header: "KEY"}, {Header: "STATUS", Width: 10}})
	m.AddRow("a", []string{"a", StatusPending})
	m.AddRow("b", []string{"b", StatusExporting})
	m.AddRow("c", []string{"c", StatusSkipped})
	m.AddRow("d", []string{"d", StatusError})

	processed, total := m.progressCounts()
	if processed != 2 || total != 4 {
		t.Fatalf("progressCounts = %d/%d, want 2/4", processed, total)
	}
}

func TestTickStopsAfterDone(t *testing.T) {
	m := exportModel()
	updated, cmd := m.Update(tickMsg{})
	if updated.(ProgressModel).tick != 1 || cmd == nil {
		t.Fatal("expected tick to advance and reschedule")
	}
	updated, _ = updated.Update(WorkDoneMsg{})
	if _, cmd = updated.Update(tickMsg{}); cmd != nil {
		t.Fatal("expected no tick after done")
	}
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		input string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"a longer string here", 10, "a longe..."},
		{"abcd", 3, "abc"},
		{"", 5, ""},
		{"hello", 0, ""},
		{"财库漏财库", 5, "财..."},
	}
	for _, tt := range tests {
		got := TruncateWithEllipsis(tt.input, tt.limit)
		if got != tt.want {
			t.Errorf("TruncateWithEllipsis(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.want)
		}
		if lipgloss.Width(got) > tt.limit {
			t.Errorf("TruncateWithEllipsis(%q, %d) is %d cells wide", tt.input, tt.limit, lipgloss.Width(got))
		}
	}
}

func TestMarqueeText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		tick  int
		want  string
	}{
		{"short", 10, 0, "short"},
		{"hello world here", 5, 0, "hello"},
		{"hello world here", 5, 1, "ello "},
		{"abcdef", 4, 6, "   a"},
		{"财库漏了", 4, 0, "财库"},
		{"财库漏了", 4, 1, "库漏"},
	}
	for _, tt := range tests {
		if got := marqueeText(tt.text, tt.width, tt.tick); got != tt.want {
			t.Errorf("marqueeText(%q, %d, %d) = %q, want %q", tt.text, tt.width, tt.tick, got, tt.want)
		}
	}
}

func TestPadUsesCellWidth(t *testing.T) {
	if got := pad("财库", 6); got != "财库  " {
		t.Fatalf("pad = %q", got)
	}
	if NonEmptyOrDash("  ") != "-" || NonEmptyOrDash(" x ") != "x" {
		t.Fatal("NonEmptyOrDash")
	}
}
