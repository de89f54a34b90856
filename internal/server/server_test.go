package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"reelkit/internal/assets"
	"reelkit/internal/compose"
	"reelkit/internal/render"
	"reelkit/internal/store"
	"reelkit/internal/timeline"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type stubRenderer struct {
	mu      sync.Mutex
	calls   int
	release chan struct{}
}

func (s *stubRenderer) Render(ctx context.Context, req render.Request) (render.Result, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.release != nil {
		select {
		case <-s.release:
		case <-ctx.Done():
			return render.Result{}, ctx.Err()
		}
	}
	return render.Result{URL: "https://cdn.example.com/" + req.ID + ".mp4"}, nil
}

type envelope struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestServer(t *testing.T, r render.Renderer, opts Options) (*Server, store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := store.OpenDB(filepath.Join(t.TempDir(), "reelkit.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	projects, err := store.NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	blobs, err := assets.NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("assets: %v", err)
	}
	resolver, err := assets.NewResolver(blobs, 8, nil)
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	srv := New(Deps{Projects: projects, Assets: blobs, Resolver: resolver, Renderer: r}, opts)
	return srv, projects
}

func do(t *testing.T, h http.Handler, method, path string, body []byte, contentType string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, w.Body.String())
		}
	}
	return w, env
}

func TestProjectRoutes(t *testing.T) {
	srv, _ := newTestServer(t, nil, Options{})
	h := srv.Handler()

	w, _ := do(t, h, http.MethodGet, "/api/v1/projects/nope", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	p := timeline.New("demo")
	p.Clips = append(p.Clips, timeline.Clip{ID: "t1", Type: timeline.TypeText, TrackID: timeline.TrackText, Start: -1, Duration: 2, Src: "财库"})
	body, _ := json.Marshal(p)
	w, env := do(t, h, http.MethodPut, "/api/v1/projects/demo", body, "application/json")
	if w.Code != http.StatusOK || env.Type != "success" {
		t.Fatalf("PUT: %d %s", w.Code, w.Body.String())
	}
	var saved saveResponse
	if err := json.Unmarshal(env.Data, &saved); err != nil {
		t.Fatalf("decode save: %v", err)
	}
	if len(saved.Repairs) == 0 || saved.Project.Clips[0].Start != 0 {
		t.Fatalf("expected negative start repaired, got %+v", saved)
	}

	w, env = do(t, h, http.MethodGet, "/api/v1/projects", nil, "")
	var list []store.Summary
	if err := json.Unmarshal(env.Data, &list); err != nil || len(list) != 1 || list[0].ID != "demo" {
		t.Fatalf("list: %d %s", w.Code, w.Body.String())
	}

	w, env = do(t, h, http.MethodGet, "/api/v1/projects/demo/frame?t=1", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("frame: %d %s", w.Code, w.Body.String())
	}
	var frame compose.Frame
	if err := json.Unmarshal(env.Data, &frame); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if frame.Time != 1 || len(frame.Layers) == 0 {
		t.Fatalf("expected the text clip composited, got %+v", frame)
	}

	w, env = do(t, h, http.MethodGet, "/api/v1/projects/demo/frame?t=abc", nil, "")
	if w.Code != http.StatusBadRequest || env.Type != "error" {
		t.Fatalf("expected 400 error envelope, got %d %s", w.Code, w.Body.String())
	}

	w, _ = do(t, h, http.MethodDelete, "/api/v1/projects/demo", nil, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", w.Code)
	}
}

func multipartFile(t *testing.T, name string, data []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	fw.Write(data)
	mw.Close()
	return buf.Bytes(), mw.FormDataContentType()
}

func TestAssetUpload(t *testing.T) {
	srv, _ := newTestServer(t, nil, Options{MaxUploadBytes: 1024})
	h := srv.Handler()

	body, ct := multipartFile(t, "dot.png", pngBytes)
	w, env := do(t, h, http.MethodPost, "/api/v1/projects/demo/assets", body, ct)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: %d %s", w.Code, w.Body.String())
	}
	var got assetResponse
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode asset: %v", err)
	}
	if got.Kind != assets.KindImage || got.Token != assets.Token(assets.KindImage, got.ID) {
		t.Fatalf("unexpected asset %+v", got)
	}

	w, _ = do(t, h, http.MethodGet, "/api/v1/assets/"+got.ID, nil, "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" || !bytes.Equal(w.Body.Bytes(), pngBytes) {
		t.Fatalf("download: %d %q", w.Code, w.Header().Get("Content-Type"))
	}

	_, env = do(t, h, http.MethodGet, "/api/v1/projects/demo/assets", nil, "")
	var list []assetResponse
	if err := json.Unmarshal(env.Data, &list); err != nil || len(list) != 1 {
		t.Fatalf("list assets: %v %s", err, env.Data)
	}

	big, ct := multipartFile(t, "big.png", append(pngBytes, make([]byte, 2048)...))
	w, _ = do(t, h, http.MethodPost, "/api/v1/projects/demo/assets", big, ct)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}

	junk, ct := multipartFile(t, "notes.txt", []byte("plain text"))
	w, _ = do(t, h, http.MethodPost, "/api/v1/projects/demo/assets", junk, ct)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", w.Code)
	}

	w, _ = do(t, h, http.MethodDelete, "/api/v1/assets/"+got.ID, nil, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete asset: %d", w.Code)
	}
	w, _ = do(t, h, http.MethodGet, "/api/v1/assets/"+got.ID, nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", w.Code)
	}
}

func renderState(t *testing.T, env envelope) render.State {
	t.Helper()
	var st renderResponse
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("decode render state: %v", err)
	}
	return st.State
}

func TestRenderLifecycle(t *testing.T) {
	r := &stubRenderer{release: make(chan struct{})}
	srv, projects := newTestServer(t, r, Options{RenderTimeout: time.Minute})
	h := srv.Handler()
	if err := projects.Save(context.Background(), "demo", timeline.New("demo")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	w, env := do(t, h, http.MethodPost, "/api/v1/projects/demo/render", nil, "")
	if w.Code != http.StatusAccepted || renderState(t, env).Status != render.StatusInvoking {
		t.Fatalf("start: %d %s", w.Code, w.Body.String())
	}

	w, _ = do(t, h, http.MethodPost, "/api/v1/projects/demo/render", nil, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 while invoking, got %d", w.Code)
	}
	w, _ = do(t, h, http.MethodDelete, "/api/v1/projects/demo/render", nil, "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected reset refused while invoking, got %d", w.Code)
	}

	close(r.release)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := srv.session("demo").Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if st.Status != render.StatusDone || st.URL != "https://cdn.example.com/MyComp.mp4" {
		t.Fatalf("unexpected final state %+v", st)
	}

	_, env = do(t, h, http.MethodGet, "/api/v1/projects/demo/render", nil, "")
	if got := renderState(t, env); got.URL != st.URL {
		t.Fatalf("GET render = %+v", got)
	}
	_, env = do(t, h, http.MethodDelete, "/api/v1/projects/demo/render", nil, "")
	if got := renderState(t, env); got.Status != render.StatusInit || got.URL != "" {
		t.Fatalf("expected reset to init, got %+v", got)
	}
}

func TestRenderRateLimit(t *testing.T) {
	srv, projects := newTestServer(t, &stubRenderer{}, Options{RendersPerMinute: 1})
	h := srv.Handler()
	for _, id := range []string{"a", "b"} {
		if err := projects.Save(context.Background(), id, timeline.New(id)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if w, _ := do(t, h, http.MethodPost, "/api/v1/projects/a/render", nil, ""); w.Code != http.StatusAccepted {
		t.Fatalf("first render: %d", w.Code)
	}
	w, env := do(t, h, http.MethodPost, "/api/v1/projects/b/render", nil, "")
	if w.Code != http.StatusTooManyRequests || env.Type != "error" {
		t.Fatalf("expected 429, got %d %s", w.Code, w.Body.String())
	}
}

func TestRenderWithoutRenderer(t *testing.T) {
	srv, _ := newTestServer(t, nil, Options{})
	w, _ := do(t, srv.Handler(), http.MethodPost, "/api/v1/projects/demo/render", nil, "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
