package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestHashStable(t *testing.T) {
	v := map[string]any{"b": 2, "a": []string{"x"}}
	h1 := Hash(v)
	h2 := Hash(map[string]any{"a": []string{"x"}, "b": 2})
	if h1 != h2 {
		t.Errorf("equal values produced different hashes: %q vs %q", h1, h2)
	}
	if !strings.HasPrefix(h1, "sha256:") {
		t.Errorf("expected sha256: prefix, got %q", h1)
	}
	if Hash(map[string]any{"b": 3}) == h1 {
		t.Error("different values should hash differently")
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(present, []byte("fake"), 0o644); err != nil {
		t.Fatal(err)
	}
	rs := &RenderState{
		RendererHash: "r1",
		Renders: map[string]Record{
			"done":    {PropsHash: "h", OutputPath: present},
			"remote":  {PropsHash: "h", URL: "https://cdn.example.com/out.mp4"},
			"deleted": {PropsHash: "h", OutputPath: filepath.Join(dir, "gone.mp4")},
		},
	}

	tests := []struct {
		name     string
		project  string
		hash     string
		renderer string
		force    bool
		action   string
		reason   string
	}{
		{name: "forced", project: "done", hash: "h", renderer: "r1", force: true, action: ActionRender, reason: ReasonForced},
		{name: "renderer changed", project: "done", hash: "h", renderer: "r2", action: ActionRender, reason: ReasonRendererChanged},
		{name: "new project", project: "other", hash: "h", renderer: "r1", action: ActionRender, reason: ReasonNew},
		{name: "props changed", project: "done", hash: "h2", renderer: "r1", action: ActionRender, reason: ReasonPropsChanged},
		{name: "output missing", project: "deleted", hash: "h", renderer: "r1", action: ActionRender, reason: ReasonOutputMissing},
		{name: "up to date", project: "done", hash: "h", renderer: "r1", action: ActionSkip, reason: ReasonUpToDate},
		{name: "remote output", project: "remote", hash: "h", renderer: "r1", action: ActionSkip, reason: ReasonUpToDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(rs, tt.project, tt.hash, tt.renderer, tt.force)
			if got.Action != tt.action || got.Reason != tt.reason {
				t.Fatalf("Detect = %s/%s, want %s/%s", got.Action, got.Reason, tt.action, tt.reason)
			}
		})
	}
}

func TestPutResetsOnRendererChange(t *testing.T) {
	rs := emptyState()
	rs.Put("a", "r1", Record{PropsHash: "x"})
	rs.Put("b", "r1", Record{PropsHash: "y"})
	if len(rs.Renders) != 2 {
		t.Fatalf("expected 2 records, got %d", len(rs.Renders))
	}
	rs.Put("c", "r2", Record{PropsHash: "z"})
	if len(rs.Renders) != 1 || rs.RendererHash != "r2" {
		t.Fatalf("expected stale records dropped, got %+v", rs)
	}
}

func TestPrune(t *testing.T) {
	rs := &RenderState{Renders: map[string]Record{"a": {}, "b": {}, "c": {}}}
	Prune(rs, map[string]bool{"a": true, "c": true})
	if len(rs.Renders) != 2 {
		t.Fatalf("expected 2 records after prune, got %d", len(rs.Renders))
	}
	if _, ok := rs.Renders["b"]; ok {
		t.Error("b should have been pruned")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta", "render_state.json")
	rs := emptyState()
	rs.Put("p1", "r", Record{PropsHash: "h", URL: "/out.mp4", RenderedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)})
	if err := rs.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should be renamed away")
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Renders["p1"].URL != "/out.mp4" || !loaded.Renders["p1"].RenderedAt.Equal(rs.Renders["p1"].RenderedAt) {
		t.Fatalf("unexpected record %+v", loaded.Renders["p1"])
	}
}

func TestLoadMissingOrCorrupt(t *testing.T) {
	dir := t.TempDir()
	rs, err := Load(filepath.Join(dir, "missing.json"))
	if err != nil || rs.Renders == nil || len(rs.Renders) != 0 {
		t.Fatalf("expected empty state, got %+v, %v", rs, err)
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	rs, err = Load(corrupt)
	if err != nil || len(rs.Renders) != 0 {
		t.Fatalf("expected empty state for corrupt file, got %+v, %v", rs, err)
	}
}

func TestUpdateKeepsOtherProjects(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	for _, id := range []string{"one", "two"} {
		err := Update(path, func(rs *RenderState) {
			rs.Put(id, "r1", Record{PropsHash: "h-" + id})
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	rs, _ := Load(path)
	if len(rs.Renders) != 2 || rs.Renders["one"].PropsHash != "h-one" {
		t.Fatalf("unexpected records: %+v", rs.Renders)
	}
}
