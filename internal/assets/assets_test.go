package assets

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

var (
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	mp3Bytes = []byte("ID3\x03\x00\x00\x00\x00\x00\x00 audio frames")
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "assets.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	s, err := NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	return s
}

func TestParseToken(t *testing.T) {
	tests := []struct {
		src    string
		kind   Kind
		id     string
		wantOK bool
	}{
		{src: "localimage://abc", kind: KindImage, id: "abc", wantOK: true},
		{src: "localaudio://x-1", kind: KindAudio, id: "x-1", wantOK: true},
		{src: "localimage://", wantOK: false},
		{src: "https://example.com/a.png", wantOK: false},
		{src: "", wantOK: false},
	}
	for _, tt := range tests {
		kind, id, ok := ParseToken(tt.src)
		if ok != tt.wantOK || kind != tt.kind || id != tt.id {
			t.Errorf("ParseToken(%q) = %q, %q, %v", tt.src, kind, id, ok)
		}
	}
	if got := Token(KindAudio, "a1"); got != "localaudio://a1" {
		t.Fatalf("Token = %q", got)
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		meta     Meta
		wantKind Kind
		wantMIME string
		wantErr  error
	}{
		{name: "png", data: pngBytes, wantKind: KindImage, wantMIME: "image/png"},
		{name: "mp3", data: mp3Bytes, wantKind: KindAudio, wantMIME: "audio/mpeg"},
		{name: "declared svg", data: []byte("<svg/>"), meta: Meta{MIME: "image/svg+xml"}, wantKind: KindImage, wantMIME: "image/svg+xml"},
		{name: "unknown", data: []byte("plain words"), wantErr: ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sniff(tt.data, tt.meta)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Sniff: %v", err)
			}
			if got.Kind != tt.wantKind || got.MIME != tt.wantMIME {
				t.Fatalf("Sniff = %+v", got)
			}
		})
	}
}

func TestSQLiteStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	img, err := s.Put(ctx, "p1", pngBytes, Meta{Name: "cover.png"})
	if err != nil {
		t.Fatalf("Put image: %v", err)
	}
	snd, err := s.Put(ctx, "p1", mp3Bytes, Meta{Duration: 3.5})
	if err != nil {
		t.Fatalf("Put audio: %v", err)
	}
	if _, err := s.Put(ctx, "p2", pngBytes, Meta{}); err != nil {
		t.Fatalf("Put other project: %v", err)
	}

	a, err := s.Get(ctx, img)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if a.Name != "cover.png" || a.Kind != KindImage || a.Size != int64(len(pngBytes)) || string(a.Data) != string(pngBytes) {
		t.Fatalf("unexpected asset %+v", a)
	}

	list, err := s.List(ctx, "p1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(list))
	}
	for _, item := range list {
		if item.Data != nil {
			t.Fatal("List must not load data")
		}
		if item.ID == snd && (item.Kind != KindAudio || item.Duration != 3.5) {
			t.Fatalf("unexpected audio entry %+v", item)
		}
	}

	if err := s.Delete(ctx, img); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, img); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, img); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

type countingStore struct {
	Store
	gets int
}

func (c *countingStore) Get(ctx context.Context, id string) (*Asset, error) {
	c.gets++
	return c.Store.Get(ctx, id)
}

func TestResolver(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{Store: openTestStore(t)}
	id, err := backing.Put(ctx, "p1", pngBytes, Meta{})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	r, err := NewResolver(backing, 0, nil)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	token := Token(KindImage, id)
	url, ok := r.Resolve(token)
	if !ok || !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("Resolve(%q) = %q, %v", token, url, ok)
	}
	if again, _ := r.Resolve(token); again != url {
		t.Fatal("expected identical url from cache")
	}
	if backing.gets != 1 {
		t.Fatalf("expected one store read, got %d", backing.gets)
	}

	r.Forget(id)
	r.Resolve(token)
	if backing.gets != 2 {
		t.Fatalf("expected re-read after Forget, got %d", backing.gets)
	}

	tests := []struct {
		src    string
		want   string
		wantOK bool
	}{
		{src: "https://cdn.example.com/a.png", want: "https://cdn.example.com/a.png", wantOK: true},
		{src: "localimage://missing", wantOK: false},
		{src: "localaudio://", wantOK: false},
		{src: "", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := r.Resolve(tt.src)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Resolve(%q) = %q, %v", tt.src, got, ok)
		}
	}
}
