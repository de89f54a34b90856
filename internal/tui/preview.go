package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"reelkit/internal/compose"
	"reelkit/internal/playback"
	"reelkit/internal/timeline"
)

// SeekStep is how far the arrow keys move the playhead.
const SeekStep = 1.0

// frameMsg advances the preview by the frames elapsed since the last one.
type frameMsg time.Time

// PreviewModel plays a project in the terminal, listing the layers the
// composite holds at the playhead.
type PreviewModel struct {
	project *timeline.Project
	env     compose.Env
	sched   *playback.Scheduler
	frame   compose.Frame
	last    time.Time
	width   int
	quit    bool
}

// NewPreviewModel builds a paused preview at zero. fps is the preview rate.
func NewPreviewModel(p *timeline.Project, env compose.Env, fps int) PreviewModel {
	sched := playback.NewScheduler(fps, p.TotalDuration())
	m := PreviewModel{project: p, env: env, sched: sched, width: 60}
	m.frame = compose.Composite(p, 0, env)
	return m
}

// Scheduler exposes the playhead driver.
func (m PreviewModel) Scheduler() *playback.Scheduler {
	return m.sched
}

// Frame returns the composite at the playhead.
func (m PreviewModel) Frame() compose.Frame {
	return m.frame
}

func (m PreviewModel) nextFrame() tea.Cmd {
	interval := time.Second / time.Duration(m.sched.FPS())
	return tea.Tick(interval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// Init satisfies the tea.Model interface.
func (m PreviewModel) Init() tea.Cmd {
	return nil
}

// Update satisfies the tea.Model interface.
func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if !m.sched.Playing() {
			return m, nil
		}
		now := time.Time(msg)
		n := 1
		if !m.last.IsZero() {
			// Catch up on display frames the terminal could not draw.
			n = max(1, int(math.Round(now.Sub(m.last).Seconds()*float64(m.sched.FPS()))))
		}
		m.last = now
		m.refresh(m.sched.Advance(n))
		if !m.sched.Playing() {
			return m, nil
		}
		return m, m.nextFrame()

	case tea.WindowSizeMsg:
		m.width = max(20, msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quit = true
			return m, tea.Quit
		case " ", "k":
			m.last = time.Time{}
			if m.sched.Toggle() {
				m.refresh(m.sched.Now())
				return m, m.nextFrame()
			}
			return m, nil
		case "left", "h":
			m.seek(m.sched.Now() - SeekStep)
		case "right", "l":
			m.seek(m.sched.Now() + SeekStep)
		case "home", "0":
			m.seek(0)
		case "end":
			m.seek(m.project.TotalDuration())
		}
	}
	return m, nil
}

func (m *PreviewModel) seek(t float64) {
	m.sched.Seek(t)
	m.last = time.Time{}
	m.refresh(m.sched.Now())
}

func (m *PreviewModel) refresh(t float64) {
	m.frame = compose.Composite(m.project, t, m.env)
}

// View satisfies the tea.Model interface.
func (m PreviewModel) View() string {
	if m.quit {
		return ""
	}
	var b strings.Builder
	name := m.project.Name
	if name == "" {
		name = m.project.ID
	}
	total := m.project.TotalDuration()
	state := "paused"
	if m.sched.Playing() {
		state = "playing"
	}
	fmt.Fprintf(&b, "%s  %s / %s  %s\n", TitleStyle.Render(name), Timecode(m.frame.Time), Timecode(total), dimStyle.Render(state))
	b.WriteString(scrubBar(m.frame.Time, total, m.width))
	b.WriteString("\n\n")

	if len(m.frame.Layers) == 0 && len(m.frame.Audio) == 0 {
		b.WriteString(dimStyle.Render("(nothing on screen)"))
		b.WriteByte('\n')
	}
	for _, l := range m.frame.Layers {
		fmt.Fprintf(&b, "%-9s %-12s %s  %s\n", l.Kind, TruncateWithEllipsis(l.TrackID, 12),
			pad(TruncateWithEllipsis(l.ClipID, 14), 14), describeLayer(l, m.width-40))
	}
	for _, l := range m.frame.Audio {
		fmt.Fprintf(&b, "%-9s %-12s %s  vol %.2f\n", l.Kind, TruncateWithEllipsis(l.TrackID, 12),
			pad(TruncateWithEllipsis(l.ClipID, 14), 14), l.Volume)
	}
	b.WriteString(dimStyle.Render("\nspace play/pause  ←/→ seek  0 start  q quit"))
	b.WriteByte('\n')
	return b.String()
}

func describeLayer(l compose.Layer, width int) string {
	width = max(10, width)
	switch {
	case l.Subtitle != nil:
		var parts []string
		for _, u := range l.Subtitle.Units {
			if u.Opacity <= 0 {
				continue
			}
			text := u.Text
			if s, ok := sentimentStyles[string(u.Sentiment)]; ok && u.Highlight {
				text = s.Render(text)
			}
			parts = append(parts, text)
		}
		return fmt.Sprintf("[%s] %s", l.Subtitle.Style, strings.Join(parts, ""))
	case l.Pattern != nil:
		return fmt.Sprintf("[%s] %s", l.Pattern.Style, l.Pattern.Fill)
	case l.Treatment != nil:
		return fmt.Sprintf("[%s] opacity %.2f scale %.2f", l.Treatment.Style, l.Treatment.Opacity, l.Treatment.Scale)
	case l.Text != "":
		return TruncateWithEllipsis(l.Text, width)
	}
	return fmt.Sprintf("at %.0f,%.0f opacity %.2f", l.Transform.X, l.Transform.Y, l.Opacity)
}

func scrubBar(t, total float64, width int) string {
	cells := max(10, width-2)
	pos := 0
	if total > 0 {
		pos = int(math.Round(t / total * float64(cells-1)))
	}
	pos = min(max(pos, 0), cells-1)
	return "[" + dimStyle.Render(strings.Repeat("─", pos)) + playheadStyle.Render("●") +
		dimStyle.Render(strings.Repeat("─", cells-1-pos)) + "]"
}

// Timecode formats seconds as MM:SS.cc.
func Timecode(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	cs := int64(math.Round(seconds * 100))
	return fmt.Sprintf("%02d:%02d.%02d", cs/6000, (cs/100)%60, cs%100)
}
