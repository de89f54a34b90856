package render

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"reelkit/internal/compose"
	"reelkit/internal/playback"
	"reelkit/internal/render/state"
	"reelkit/internal/timeline"
)

func testProject() *timeline.Project {
	p := timeline.New("demo")
	p.Clips = append(p.Clips,
		timeline.Clip{ID: "bg", Type: timeline.TypeBackground, TrackID: timeline.TrackBackground, Duration: 2, MotionStyle: "grid"},
		timeline.Clip{ID: "img", Type: timeline.TypeImage, TrackID: timeline.TrackBroll, Start: 0.5, Duration: 1, Src: "localimage://abc"},
		timeline.Clip{ID: "gone", Type: timeline.TypeImage, TrackID: timeline.TrackCutout, Duration: 1, Src: "localimage://missing"},
		timeline.Clip{ID: "txt", Type: timeline.TypeText, TrackID: timeline.TrackText, Duration: 2.5, Src: "财库"},
	)
	return p
}

var testResolver = compose.ResolverFunc(func(src string) (string, bool) {
	switch src {
	case "localimage://abc":
		return "data:image/png;base64,AAAA", true
	case "localimage://missing":
		return "", false
	}
	return src, true
})

func TestBuildProps(t *testing.T) {
	p := testProject()
	p.ExportPreset = "4k"
	props, dropped := BuildProps(p, testResolver)

	if props.Width != 2160 || props.Height != 3840 || props.FPS != 60 {
		t.Fatalf("unexpected size %dx%d@%d", props.Width, props.Height, props.FPS)
	}
	if props.Duration != 2.5 || props.DurationInFrames != 150 {
		t.Fatalf("duration %v / %d frames", props.Duration, props.DurationInFrames)
	}
	if !reflect.DeepEqual(dropped, []string{"gone"}) {
		t.Fatalf("dropped = %v", dropped)
	}
	srcs := map[string]string{}
	for _, c := range props.Clips {
		srcs[c.ID] = c.Src
	}
	if srcs["img"] != "data:image/png;base64,AAAA" || srcs["gone"] != "" || srcs["txt"] != "财库" {
		t.Fatalf("unexpected sources %v", srcs)
	}
	if p.Clips[1].Src != "localimage://abc" {
		t.Fatal("BuildProps must not mutate the project")
	}
	if len(props.NegativeWords) == 0 || props.GridDirection != timeline.GridForward {
		t.Fatal("expected keyword lists and grid direction carried")
	}
}

func TestBuildPropsUnknownPreset(t *testing.T) {
	p := timeline.New("p")
	p.ExportPreset = "8k"
	props, _ := BuildProps(p, nil)
	if props.ExportPreset != timeline.DefaultExportPreset || props.Width != 1440 {
		t.Fatalf("expected default preset, got %s %dx%d", props.ExportPreset, props.Width, props.Height)
	}
	if props.Duration != 1 || props.DurationInFrames != 60 {
		t.Fatalf("expected the one second floor, got %v", props.Duration)
	}
}

type fakeRunner struct {
	command string
	args    []string
	err     error
}

func (f *fakeRunner) Run(_ context.Context, command string, args []string, opts RunOptions) (RunResult, error) {
	f.command = command
	f.args = args
	if opts.Stderr != nil {
		opts.Stderr.Write([]byte("rendering\n"))
	}
	return RunResult{}, f.err
}

func TestCommandRenderer(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	r := &CommandRenderer{
		Command:   "npx",
		Args:      []string{"remotion", "render", "{composition}", "{output}", "--props={props}", "--scale", "{scale}"},
		OutputDir: filepath.Join(dir, "renders"),
		LogsDir:   filepath.Join(dir, "logs"),
		Runner:    runner,
		Now:       func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) },
	}
	props, _ := BuildProps(testProject(), testResolver)
	res, err := r.Render(context.Background(), NewRequest(props))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	wantOutput := filepath.Join(dir, "renders", "mycomp-20260304-050607.mp4")
	wantProps := filepath.Join(dir, "renders", "mycomp-20260304-050607.props.json")
	want := []string{"remotion", "render", "MyComp", wantOutput, "--props=" + wantProps, "--scale", "1"}
	if runner.command != "npx" || !reflect.DeepEqual(runner.args, want) {
		t.Fatalf("ran %s %v", runner.command, runner.args)
	}
	if res.URL != wantOutput || res.OutputPath != wantOutput {
		t.Fatalf("unexpected result %+v", res)
	}

	data, err := os.ReadFile(wantProps)
	if err != nil {
		t.Fatalf("props file: %v", err)
	}
	var written Props
	if err := json.Unmarshal(data, &written); err != nil {
		t.Fatalf("decode props: %v", err)
	}
	if written.DurationInFrames != props.DurationInFrames || len(written.Clips) != len(props.Clips) {
		t.Fatalf("props file mismatch: %+v", written)
	}
	if log, _ := os.ReadFile(res.LogPath); string(log) != "rendering\n" {
		t.Fatalf("expected stderr captured in log, got %q", log)
	}
}

func TestCommandRendererFailure(t *testing.T) {
	r := &CommandRenderer{Command: "render", OutputDir: t.TempDir(), Runner: &fakeRunner{err: errors.New("exit status 1")}}
	if _, err := r.Render(context.Background(), NewRequest(Props{})); err == nil || !strings.Contains(err.Error(), "exit status 1") {
		t.Fatalf("expected runner error, got %v", err)
	}
	if _, err := (&CommandRenderer{}).Render(context.Background(), Request{}); err == nil {
		t.Fatal("expected error without a command")
	}
}

func TestHTTPRenderer(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantURL string
		wantErr string
	}{
		{name: "success", status: 200, body: `{"type":"success","data":{"url":"/out.mp4"}}`, wantURL: "/out.mp4"},
		{name: "error envelope", status: 500, body: `{"type":"error","message":"bundle failed"}`, wantErr: "bundle failed"},
		{name: "missing url", status: 200, body: `{"type":"success","data":{}}`, wantErr: "missing url"},
		{name: "garbage", status: 502, body: `<html>`, wantErr: "502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Request
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("unexpected request %s %s", r.Method, r.Header.Get("Content-Type"))
				}
				json.NewDecoder(r.Body).Decode(&got)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			res, err := (&HTTPRenderer{Endpoint: srv.URL}).Render(context.Background(), Request{ID: CompositionID, Scale: 1})
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if res.URL != tt.wantURL || got.ID != CompositionID {
				t.Fatalf("result %+v, request %+v", res, got)
			}
		})
	}
}

type stubRenderer struct {
	mu      sync.Mutex
	calls   int
	err     error
	release chan struct{}
	output  string
}

func (s *stubRenderer) Render(ctx context.Context, _ Request) (Result, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	if s.err != nil {
		return Result{}, s.err
	}
	return Result{URL: "/out.mp4", OutputPath: s.output}, nil
}

func TestSessionLifecycle(t *testing.T) {
	stub := &stubRenderer{release: make(chan struct{})}
	s := NewSession(stub, SessionOptions{ProjectID: "demo"})
	if s.State().Status != StatusInit {
		t.Fatal("expected init")
	}

	if err := s.Start(context.Background(), Request{ID: CompositionID}, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.State().Status != StatusInvoking {
		t.Fatalf("expected invoking, got %s", s.State().Status)
	}
	if err := s.Start(context.Background(), Request{}, false); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if s.Reset() {
		t.Fatal("Reset must refuse while invoking")
	}

	close(stub.release)
	st, err := s.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if st.Status != StatusDone || st.URL != "/out.mp4" || st.FinishedAt.IsZero() {
		t.Fatalf("unexpected final state %+v", st)
	}
	if !s.Reset() || s.State().Status != StatusInit {
		t.Fatal("expected reset to init")
	}
}

func TestSessionErrorNotRetried(t *testing.T) {
	stub := &stubRenderer{err: errors.New("boom")}
	s := NewSession(stub, SessionOptions{})
	st, err := s.Run(context.Background(), Request{}, false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Status != StatusError || st.Error != "boom" || stub.calls != 1 {
		t.Fatalf("unexpected state %+v after %d calls", st, stub.calls)
	}
}

func TestSessionTimeout(t *testing.T) {
	stub := &stubRenderer{release: make(chan struct{})}
	s := NewSession(stub, SessionOptions{Timeout: 10 * time.Millisecond})
	st, _ := s.Run(context.Background(), Request{}, false)
	if st.Status != StatusError || !strings.Contains(st.Error, "deadline") {
		t.Fatalf("expected deadline error, got %+v", st)
	}
}

func TestSessionSkipsUnchangedRender(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.mp4")
	if err := os.WriteFile(output, []byte("mp4"), 0o644); err != nil {
		t.Fatal(err)
	}
	stub := &stubRenderer{output: output}
	opts := SessionOptions{ProjectID: "demo", StatePath: filepath.Join(dir, "state.json"), RendererHash: "cmd"}
	props, _ := BuildProps(testProject(), testResolver)
	req := NewRequest(props)

	s := NewSession(stub, opts)
	s.Run(context.Background(), req, false)
	st, _ := NewSession(stub, opts).Run(context.Background(), req, false)
	if stub.calls != 1 || st.Status != StatusDone || st.URL != "/out.mp4" || st.Reason != "up to date" {
		t.Fatalf("expected cached answer, got %+v after %d calls", st, stub.calls)
	}

	NewSession(stub, opts).Run(context.Background(), req, true)
	if stub.calls != 2 {
		t.Fatalf("force must render again, got %d calls", stub.calls)
	}

	props.Clips = props.Clips[:1]
	NewSession(stub, opts).Run(context.Background(), NewRequest(props), false)
	if stub.calls != 3 {
		t.Fatalf("changed props must render again, got %d calls", stub.calls)
	}
}

func TestConcurrentSessionsShareStateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	props, _ := BuildProps(testProject(), testResolver)
	req := NewRequest(props)

	projects := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for _, id := range projects {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			opts := SessionOptions{ProjectID: id, StatePath: path, RendererHash: "cmd"}
			NewSession(&stubRenderer{}, opts).Run(context.Background(), req, false)
		}(id)
	}
	wg.Wait()

	rs, err := state.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range projects {
		if _, ok := rs.Renders[id]; !ok {
			t.Errorf("record for project %q lost, have %d records", id, len(rs.Renders))
		}
	}
}

type recordingReporter struct {
	mu       sync.Mutex
	started  int
	finished []FrameResult
}

func (r *recordingReporter) Start(FrameJob) {
	r.mu.Lock()
	r.started++
	r.mu.Unlock()
}

func (r *recordingReporter) Complete(res FrameResult) {
	r.mu.Lock()
	r.finished = append(r.finished, res)
	r.mu.Unlock()
}

func TestExporterMatchesLiveFrames(t *testing.T) {
	p := testProject()
	env := compose.EnvFor(p, testResolver)
	dir := t.TempDir()
	exp := &Exporter{Env: env, OutDir: dir}
	rep := &recordingReporter{}

	results, err := exp.Export(context.Background(), p, ExportOptions{Concurrency: 4, FPS: 10, Reporter: rep})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(results) != 25 || rep.started != 25 || len(rep.finished) != 25 {
		t.Fatalf("expected 25 frames, got %d results, %d started, %d finished", len(results), rep.started, len(rep.finished))
	}

	var want []compose.Frame
	err = playback.Frames(context.Background(), p, 10, env, func(_ int, f compose.Frame) error {
		want = append(want, f)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, res := range results {
		if res.Err != nil || res.Index != i {
			t.Fatalf("frame %d: %+v", i, res)
		}
		data, err := os.ReadFile(res.Path)
		if err != nil {
			t.Fatalf("read frame %d: %v", i, err)
		}
		wantData, _ := json.Marshal(want[i])
		if string(data) != string(wantData) {
			t.Fatalf("frame %d differs from the live evaluation", i)
		}
	}

	var m Manifest
	data, _ := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err := json.Unmarshal(data, &m); err != nil || m.Frames != 25 || m.Composition != CompositionID {
		t.Fatalf("manifest %+v, %v", m, err)
	}

	again, _ := exp.Export(context.Background(), p, ExportOptions{FPS: 10})
	for _, res := range again {
		if !res.Skipped {
			t.Fatalf("expected frame %d skipped on rerun", res.Index)
		}
	}
}

func TestExporterRewritesChangedInputs(t *testing.T) {
	p := timeline.New("edit")
	p.Clips = append(p.Clips, timeline.Clip{ID: "txt", Type: timeline.TypeText, TrackID: timeline.TrackText, Duration: 1, Src: "OLD"})
	dir := t.TempDir()
	exp := &Exporter{Env: compose.EnvFor(p, nil), OutDir: dir}

	if _, err := exp.Export(context.Background(), p, ExportOptions{FPS: 4}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	p.Clips[0].Src = "NEW"
	results, err := exp.Export(context.Background(), p, ExportOptions{FPS: 4})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	for _, res := range results {
		if res.Skipped {
			t.Fatalf("frame %d reused after an edit", res.Index)
		}
	}
	data, err := os.ReadFile(results[0].Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "NEW") || strings.Contains(string(data), "OLD") {
		t.Fatalf("frame 0 is stale: %s", data)
	}

	results, err = exp.Export(context.Background(), p, ExportOptions{FPS: 2})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(results) != 2 || results[0].Skipped {
		t.Fatalf("fps change must re-evaluate, got %+v", results)
	}
	stale, _ := filepath.Glob(filepath.Join(dir, "frame_*.json"))
	if len(stale) != 2 {
		t.Fatalf("expected frames of the earlier export removed, found %d files", len(stale))
	}

	results, _ = exp.Export(context.Background(), p, ExportOptions{FPS: 2})
	if !results[0].Skipped || !results[1].Skipped {
		t.Fatal("unchanged inputs should reuse frames")
	}
	results, _ = exp.Export(context.Background(), p, ExportOptions{FPS: 2, Force: true})
	if results[0].Skipped {
		t.Fatal("force must rewrite")
	}
}

func TestExporterStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Exporter{OutDir: t.TempDir()}).Export(ctx, testProject(), ExportOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

type fakePublisher struct{ got string }

func (f *fakePublisher) Publish(_ context.Context, local string) (string, error) {
	f.got = local
	return "https://storage.googleapis.com/bucket/" + filepath.Base(local), nil
}

func TestPublishingRenderer(t *testing.T) {
	pub := &fakePublisher{}
	r := PublishingRenderer{Renderer: &stubRenderer{output: "/tmp/out.mp4"}, Publisher: pub}
	res, err := r.Render(context.Background(), Request{})
	if err != nil {
		t.Fatal(err)
	}
	if pub.got != "/tmp/out.mp4" || res.URL != "https://storage.googleapis.com/bucket/out.mp4" {
		t.Fatalf("unexpected publish %q -> %+v", pub.got, res)
	}
}
