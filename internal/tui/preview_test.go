package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"reelkit/internal/compose"
	"reelkit/internal/timeline"
)

func previewProject() *timeline.Project {
	p := timeline.New("preview")
	p.Name = "Preview"
	p.Clips = append(p.Clips,
		timeline.Clip{ID: "line1", Type: timeline.TypeText, TrackID: timeline.TrackText, Start: 0, Duration: 2, Src: "别让[财库]漏"},
		timeline.Clip{ID: "line2", Type: timeline.TypeText, TrackID: timeline.TrackText, Start: 2, Duration: 2, Src: "开源"},
	)
	return p
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPreviewPlayAndAdvance(t *testing.T) {
	p := previewProject()
	m := NewPreviewModel(p, compose.EnvFor(p, nil), 10)

	updated, cmd := m.Update(key(" "))
	m = updated.(PreviewModel)
	if !m.Scheduler().Playing() || cmd == nil {
		t.Fatal("space should start playback and schedule a frame")
	}

	start := time.Now()
	updated, _ = m.Update(frameMsg(start))
	m = updated.(PreviewModel)
	if got := m.Frame().Time; got != 0.1 {
		t.Fatalf("first frame time = %v, want 0.1", got)
	}
	// Half a second later the scheduler catches up five frames.
	updated, _ = m.Update(frameMsg(start.Add(500 * time.Millisecond)))
	m = updated.(PreviewModel)
	if got := m.Frame().Time; got != 0.6 {
		t.Fatalf("caught-up time = %v, want 0.6", got)
	}

	updated, _ = m.Update(key(" "))
	m = updated.(PreviewModel)
	if m.Scheduler().Playing() {
		t.Fatal("second space should pause")
	}
	if _, cmd = m.Update(frameMsg(time.Now())); cmd != nil {
		t.Fatal("paused preview must not reschedule frames")
	}
}

func TestPreviewSeekClamps(t *testing.T) {
	p := previewProject()
	m := NewPreviewModel(p, compose.EnvFor(p, nil), 30)

	updated, _ := m.Update(key("left"))
	m = updated.(PreviewModel)
	if m.Frame().Time != 0 {
		t.Fatalf("seek before zero = %v", m.Frame().Time)
	}
	for i := 0; i < 3; i++ {
		updated, _ = m.Update(key("right"))
		m = updated.(PreviewModel)
	}
	if m.Frame().Time != 3 {
		t.Fatalf("after three steps = %v, want 3", m.Frame().Time)
	}
	if !strings.Contains(m.View(), "line2") {
		t.Fatalf("expected second line on screen:\n%s", m.View())
	}
	updated, _ = m.Update(key("0"))
	m = updated.(PreviewModel)
	if m.Frame().Time != 0 || !strings.Contains(m.View(), "line1") {
		t.Fatalf("expected first line after rewind:\n%s", m.View())
	}
}

func TestPreviewQuit(t *testing.T) {
	p := previewProject()
	updated, cmd := NewPreviewModel(p, compose.EnvFor(p, nil), 30).Update(key("q"))
	if cmd == nil || updated.View() != "" {
		t.Fatal("q should quit and clear the view")
	}
}

func TestTimecode(t *testing.T) {
	tests := map[float64]string{0: "00:00.00", 1.5: "00:01.50", 61.25: "01:01.25", -3: "00:00.00"}
	for in, want := range tests {
		if got := Timecode(in); got != want {
			t.Errorf("Timecode(%v) = %q, want %q", in, got, want)
		}
	}
}
