package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"reelkit/internal/compose"
	"reelkit/internal/timeline"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("reelkit %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func decode(t *testing.T, data string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(data), v); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
}

func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	out := mustExecute(t, "init", "--project", dir)
	if !strings.Contains(out, "created project main") {
		t.Fatalf("expected project to be created, got %q", out)
	}
	return dir
}

func TestInitIsIdempotent(t *testing.T) {
	dir := initProject(t)
	out := mustExecute(t, "init", "--project", dir)
	if !strings.Contains(out, "already initialized") {
		t.Fatalf("expected second init to be a no-op, got %q", out)
	}

	var list []struct {
		ID string `json:"id"`
	}
	decode(t, mustExecute(t, "project", "list", "--project", dir, "--json"), &list)
	if len(list) != 1 || list[0].ID != DefaultProjectID {
		t.Fatalf("project list = %+v", list)
	}
}

func TestScriptClipAndFrameFlow(t *testing.T) {
	dir := initProject(t)

	var built struct {
		Created  []string `json:"created"`
		Duration float64  `json:"duration"`
	}
	decode(t, mustExecute(t, "script", "--project", dir, "--json", "--text", "今天聊聊[财库]\n别让小钱漏下去"), &built)
	if len(built.Created) == 0 || built.Duration <= 1 {
		t.Fatalf("script produced %+v", built)
	}

	var inspect inspectOutput
	decode(t, mustExecute(t, "project", "inspect", "--project", dir, "--json"), &inspect)
	var lines []inspectClip
	total := 0
	for _, tr := range inspect.Tracks {
		total += len(tr.Clips)
		if tr.ID == timeline.TrackText {
			lines = append(lines, tr.Clips...)
		}
	}
	if len(lines) != 2 {
		t.Fatalf("expected two text lines, got %d", len(lines))
	}

	var frame compose.Frame
	decode(t, mustExecute(t, "frame", "--project", dir, "--json", "-t", "0.5"), &frame)
	if len(frame.Layers) == 0 {
		t.Fatal("expected layers at 0.5s")
	}
	if frame.Width != timeline.BaseWidth || frame.Height != timeline.BaseHeight {
		t.Fatalf("frame size %dx%d", frame.Width, frame.Height)
	}

	mustExecute(t, "clip", "delete", lines[0].ID, "--project", dir)
	decode(t, mustExecute(t, "project", "inspect", "--project", dir, "--json"), &inspect)
	after := 0
	for _, tr := range inspect.Tracks {
		after += len(tr.Clips)
		for _, c := range tr.Clips {
			if c.ID == lines[0].ID || c.Parent == lines[0].ID {
				t.Fatalf("clip %s survived deletion of its line", c.ID)
			}
		}
	}
	if after >= total {
		t.Fatalf("expected fewer clips after delete, %d → %d", total, after)
	}
}

func TestClipSetTogglesKeyframe(t *testing.T) {
	dir := initProject(t)
	mustExecute(t, "script", "--project", dir, "--text", "今天聊聊[财库]")

	var inspect inspectOutput
	decode(t, mustExecute(t, "project", "inspect", "--project", dir, "--json"), &inspect)
	var line string
	for _, tr := range inspect.Tracks {
		if tr.ID == timeline.TrackText && len(tr.Clips) > 0 {
			line = tr.Clips[0].ID
		}
	}
	if line == "" {
		t.Fatal("script produced no text line")
	}

	rotationAt := func() float64 {
		t.Helper()
		var frame compose.Frame
		decode(t, mustExecute(t, "frame", "--project", dir, "--json", "-t", "0.5"), &frame)
		for _, l := range frame.Layers {
			if l.ClipID == line {
				return l.Transform.Rotation
			}
		}
		t.Fatalf("line %s not on screen at 0.5s", line)
		return 0
	}

	out := mustExecute(t, "clip", "set", line, "--set", "rotation=15", "--keyframe", "rotation", "--at", "0.5", "--project", dir)
	if !strings.Contains(out, "keyframe rotation=15") {
		t.Fatalf("expected keyframe to be added, got %q", out)
	}
	mustExecute(t, "clip", "set", line, "--set", "rotation=40", "--project", dir)
	if got := rotationAt(); got != 15 {
		t.Fatalf("keyframed rotation = %v, want 15", got)
	}

	out = mustExecute(t, "clip", "set", line, "--keyframe", "rotation", "--at", "0.5", "--project", dir)
	if !strings.Contains(out, "removed keyframe rotation") {
		t.Fatalf("expected keyframe to be removed, got %q", out)
	}
	if got := rotationAt(); got != 40 {
		t.Fatalf("static rotation = %v, want 40", got)
	}

	if _, err := execute(t, "clip", "set", line, "--keyframe", "color", "--project", dir); err == nil {
		t.Fatal("expected error for a property that cannot be keyframed")
	}
}

func TestMarkerCommands(t *testing.T) {
	dir := initProject(t)
	mustExecute(t, "marker", "add", "1.5", "--label", "drop", "--project", dir)

	var markers []timeline.Marker
	decode(t, mustExecute(t, "marker", "list", "--project", dir, "--json"), &markers)
	if len(markers) != 1 || markers[0].Time != 1.5 || markers[0].Label != "drop" {
		t.Fatalf("markers = %+v", markers)
	}

	mustExecute(t, "marker", "delete", markers[0].ID, "--project", dir)
	decode(t, mustExecute(t, "marker", "list", "--project", dir, "--json"), &markers)
	if len(markers) != 0 {
		t.Fatalf("expected marker removed, got %+v", markers)
	}
}

func TestExportWritesFrames(t *testing.T) {
	dir := initProject(t)
	mustExecute(t, "script", "--project", dir, "--text", "一句话")

	var summary exportSummary
	decode(t, mustExecute(t, "export", "--project", dir, "--json", "--fps", "2"), &summary)
	if summary.Frames == 0 || summary.Written != summary.Frames || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	decode(t, mustExecute(t, "export", "--project", dir, "--json", "--fps", "2"), &summary)
	if summary.Skipped != summary.Frames {
		t.Fatalf("expected second export to skip existing frames, got %+v", summary)
	}
}

func TestRenderWithoutRenderer(t *testing.T) {
	dir := initProject(t)
	_, err := execute(t, "render", "--project", dir)
	if err == nil || !strings.Contains(err.Error(), "no renderer configured") {
		t.Fatalf("expected missing renderer error, got %v", err)
	}
}

func TestUnknownProject(t *testing.T) {
	dir := initProject(t)
	_, err := execute(t, "frame", "--project", dir, "--id", "ghost")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestConfigValidateDefaults(t *testing.T) {
	dir := initProject(t)
	var payload struct {
		Results []struct {
			Level   string `json:"level"`
			Message string `json:"message"`
		} `json:"results"`
	}
	decode(t, mustExecute(t, "config", "validate", "--project", dir, "--json"), &payload)
	for _, r := range payload.Results {
		if r.Level == "error" {
			t.Fatalf("default config has error: %s", r.Message)
		}
	}
}
