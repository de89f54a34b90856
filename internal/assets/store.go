package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

var (
	// ErrNotFound is returned for an unknown asset id.
	ErrNotFound = errors.New("asset not found")
	// ErrUnsupported is returned for data that is neither image nor audio.
	ErrUnsupported = errors.New("unsupported asset type")
)

// Meta describes an upload. Empty fields are sniffed from the data.
type Meta struct {
	Name     string
	MIME     string
	Kind     Kind
	Duration float64
}

// Asset is a stored blob and its metadata. List leaves Data empty.
type Asset struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"projectId"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	MIME      string    `json:"mime"`
	Size      int64     `json:"size"`
	Duration  float64   `json:"duration,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	Data      []byte    `json:"-"`
}

// Token returns the clip source for a.
func (a Asset) Token() string {
	return Token(a.Kind, a.ID)
}

// Store is the local asset store.
type Store interface {
	Put(ctx context.Context, projectID string, data []byte, meta Meta) (string, error)
	Get(ctx context.Context, id string) (*Asset, error)
	List(ctx context.Context, projectID string) ([]Asset, error)
	Delete(ctx context.Context, id string) error
}

// Sniff fills the MIME type and kind of meta from the leading bytes of
// data, keeping what the caller already set.
func Sniff(data []byte, meta Meta) (Meta, error) {
	if meta.MIME == "" {
		if t, err := filetype.Match(data); err == nil && t != filetype.Unknown {
			meta.MIME = t.MIME.Value
		}
	}
	if meta.Kind == "" {
		switch {
		case filetype.IsImage(data) || strings.HasPrefix(meta.MIME, "image/"):
			meta.Kind = KindImage
		case filetype.IsAudio(data) || strings.HasPrefix(meta.MIME, "audio/"):
			meta.Kind = KindAudio
		default:
			return meta, ErrUnsupported
		}
	}
	if meta.MIME == "" {
		meta.MIME = "application/octet-stream"
	}
	return meta, nil
}

// SQLiteStore keeps assets in the project database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore prepares the assets table on db.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		mime TEXT NOT NULL,
		size INTEGER NOT NULL,
		duration REAL NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		data BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assets_project ON assets(project_id, created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create assets table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Put stores data under a fresh id.
func (s *SQLiteStore) Put(ctx context.Context, projectID string, data []byte, meta Meta) (string, error) {
	meta, err := Sniff(data, meta)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if meta.Name == "" {
		meta.Name = id
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO assets
		(id, project_id, name, kind, mime, size, duration, created_at, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, projectID, meta.Name, string(meta.Kind), meta.MIME, len(data), meta.Duration, time.Now().UnixNano(), data)
	if err != nil {
		return "", fmt.Errorf("insert asset: %w", err)
	}
	return id, nil
}

// Get loads one asset with its data.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Asset, error) {
	var (
		a       Asset
		kind    string
		created int64
	)
	row := s.db.QueryRowContext(ctx, `SELECT id, project_id, name, kind, mime, size, duration, created_at, data
		FROM assets WHERE id = ?`, id)
	err := row.Scan(&a.ID, &a.ProjectID, &a.Name, &kind, &a.MIME, &a.Size, &a.Duration, &created, &a.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load asset %s: %w", id, err)
	}
	a.Kind = Kind(kind)
	a.CreatedAt = time.Unix(0, created)
	return &a, nil
}

// List returns the assets of a project, oldest first, without data.
func (s *SQLiteStore) List(ctx context.Context, projectID string) ([]Asset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, project_id, name, kind, mime, size, duration, created_at
		FROM assets WHERE project_id = ? ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var out []Asset
	for rows.Next() {
		var (
			a       Asset
			kind    string
			created int64
		)
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.Name, &kind, &a.MIME, &a.Size, &a.Duration, &created); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		a.Kind = Kind(kind)
		a.CreatedAt = time.Unix(0, created)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes an asset.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
