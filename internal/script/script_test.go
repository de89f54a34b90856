package script

import (
	"math"
	"reflect"
	"testing"

	"reelkit/internal/sentiment"
	"reelkit/internal/timeline"
)

var testKeywords = sentiment.Keywords{
	Positive: []string{"财库"},
	Negative: []string{"漏"},
}

func TestParsePlainText(t *testing.T) {
	lines := Parse("别让[财库]变空\n\n  \n钱总是[漏]掉", testKeywords)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	first := lines[0]
	if first.Text != "别让财库变空" {
		t.Fatalf("unexpected text %q", first.Text)
	}
	if !reflect.DeepEqual(first.Highlights, []string{"财库"}) {
		t.Fatalf("unexpected highlights %v", first.Highlights)
	}
	if first.Event != EventPositive {
		t.Fatalf("expected positive event, got %q", first.Event)
	}
	// 8 runes -> max(40, 48) + 20 frames at 60 fps.
	if want := 68.0 / 60; math.Abs(first.Duration-want) > 1e-9 {
		t.Fatalf("duration = %v, want %v", first.Duration, want)
	}
	if lines[1].Start != first.Duration {
		t.Fatalf("expected second line to start at %v, got %v", first.Duration, lines[1].Start)
	}
	if lines[1].Event != EventNegative || lines[1].Sentiment() != sentiment.Negative {
		t.Fatalf("expected negative second line, got %q", lines[1].Event)
	}
}

func TestParseShortLineUsesFloor(t *testing.T) {
	lines := Parse("好", sentiment.Keywords{})
	if want := 1.0; lines[0].Duration != want {
		t.Fatalf("duration = %v, want %v", lines[0].Duration, want)
	}
	if lines[0].Event != EventNormal || lines[0].Sentiment() != sentiment.Neutral {
		t.Fatalf("expected normal event, got %q", lines[0].Event)
	}
}

func TestParseSRT(t *testing.T) {
	srt := "1\n00:00:00,000 --> 00:00:02,500\n第一句[财库]\n\n2\n00:00:02,500 --> 00:00:02,700\n第二句\n换行\n"
	lines := Parse(srt, testKeywords)
	if len(lines) != 2 {
		t.Fatalf("expected 2 SRT lines, got %d", len(lines))
	}
	if !lines[0].SRT || lines[0].Start != 0 || lines[0].Duration != 2.5 {
		t.Fatalf("unexpected first line %+v", lines[0])
	}
	if lines[1].Duration != 0.5 {
		t.Fatalf("expected 0.5s floor, got %v", lines[1].Duration)
	}
	if lines[1].Text != "第二句 换行" {
		t.Fatalf("expected joined text, got %q", lines[1].Text)
	}
}

func TestGenerateLinksChildren(t *testing.T) {
	p := timeline.New("p")
	p.Config.Images = []string{"localimage://first"}
	created := Generate(p, Parse("一\n二", testKeywords))
	if len(created) != 8 || len(p.Clips) != 8 {
		t.Fatalf("expected 8 clips, got %d", len(p.Clips))
	}

	text := p.Clips[0]
	if text.Type != timeline.TypeText || text.ParentID != "" {
		t.Fatalf("expected parent text clip first, got %+v", text)
	}
	children := p.Children(text.ID)
	if len(children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(children))
	}
	bg, _ := p.Child(text.ID, timeline.TrackBackground)
	if bg.MotionStyle != p.Styles.Motion || *bg.ZIndex != ZBackground {
		t.Fatalf("unexpected background layer %+v", bg)
	}
	cut, _ := p.Child(text.ID, timeline.TrackCutout)
	if cut.Src != "localimage://first" || cut.VisualStyle != p.Styles.Cutout {
		t.Fatalf("unexpected cutout layer %+v", cut)
	}
	second, _ := p.Child(p.Clips[4].ID, timeline.TrackBroll)
	if second.Src != "" {
		t.Fatalf("expected only the first line to carry the image, got %q", second.Src)
	}
	if len(p.ScriptLines()) != 2 {
		t.Fatalf("expected 2 script lines, got %d", len(p.ScriptLines()))
	}
}

func TestRebuildKeepsManualClips(t *testing.T) {
	p := timeline.New("p")
	Generate(p, Parse("旧的", testKeywords))
	p.Clips = append(p.Clips, timeline.Clip{ID: "music", Type: timeline.TypeAudio, TrackID: timeline.TrackAudio, Duration: 5, Src: "localaudio://a"})

	Rebuild(p, "新的一行\n第二行")
	if p.InputText != "新的一行\n第二行" {
		t.Fatal("expected input text stored")
	}
	if p.ClipIndex("music") < 0 {
		t.Fatal("manual audio clip must survive a rebuild")
	}
	if got := len(p.ScriptLines()); got != 2 {
		t.Fatalf("expected 2 script lines, got %d", got)
	}
	if len(p.Clips) != 9 {
		t.Fatalf("expected 9 clips, got %d", len(p.Clips))
	}
}

func TestApplyStyle(t *testing.T) {
	p := timeline.New("p")
	Generate(p, Parse("一", testKeywords))
	parent := p.Clips[0].ID

	tests := []struct {
		role  Role
		style string
		check func() string
	}{
		{RoleBackground, "grid", func() string { c, _ := p.Child(parent, timeline.TrackBackground); return c.MotionStyle }},
		{RoleCutout, "cutout-film", func() string { c, _ := p.Child(parent, timeline.TrackCutout); return c.VisualStyle }},
		{RoleBroll, "dv", func() string { c, _ := p.Child(parent, timeline.TrackBroll); return c.VisualStyle }},
		{RoleText, "impact", func() string { c, _ := p.Clip(parent); return c.SubtitleStyle }},
	}
	for _, tt := range tests {
		if !ApplyStyle(p, parent, tt.role, tt.style) {
			t.Fatalf("ApplyStyle(%s) reported no change", tt.role)
		}
		if got := tt.check(); got != tt.style {
			t.Fatalf("%s style = %q, want %q", tt.role, got, tt.style)
		}
	}
	if ApplyStyle(p, "missing", RoleCutout, "x") {
		t.Fatal("expected no-op for unknown parent")
	}
}
