// Package store persists projects and coalesces editor commits into
// debounced writes.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"reelkit/internal/timeline"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no project is stored under an id.
var ErrNotFound = errors.New("project not found")

// Summary lists a stored project without decoding it.
type Summary struct {
	ID      string    `json:"id"`
	Name    string    `json:"name,omitempty"`
	SavedAt time.Time `json:"savedAt"`
}

// Store is a project persistence backend.
type Store interface {
	Save(ctx context.Context, id string, p *timeline.Project) error
	Load(ctx context.Context, id string) (*timeline.Project, timeline.ValidationErrors, error)
	List(ctx context.Context) ([]Summary, error)
	Delete(ctx context.Context, id string) error
}

// OpenDB opens the sqlite database at path, creating its directory.
func OpenDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}
	return db, nil
}

// Encode serializes p with a fresh save timestamp.
func Encode(id string, p *timeline.Project) ([]byte, error) {
	doc := *p
	doc.ID = id
	doc.SavedAt = time.Now().UTC()
	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode project %s: %w", id, err)
	}
	return data, nil
}

// Decode parses a stored document and normalizes it. An unreadable document
// yields a fresh project; the repair list says so.
func Decode(id string, data []byte) (*timeline.Project, timeline.ValidationErrors) {
	var p timeline.Project
	if err := json.Unmarshal(data, &p); err != nil {
		fresh := timeline.New(id)
		return fresh, timeline.ValidationErrors{{
			Entity:  "project",
			ID:      id,
			Message: fmt.Sprintf("unreadable document replaced: %v", err),
		}}
	}
	if p.ID == "" {
		p.ID = id
	}
	return &p, p.Normalize()
}

// SQLiteStore keeps one JSON document per project.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore prepares the projects table on db.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		saved_at INTEGER NOT NULL,
		document BLOB NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create projects table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, id string, p *timeline.Project) error {
	data, err := Encode(id, p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT OR REPLACE INTO projects (id, name, saved_at, document) VALUES (?, ?, ?, ?)`,
		id, p.Name, time.Now().UnixNano(), data)
	if err != nil {
		return fmt.Errorf("save project %s: %w", id, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id string) (*timeline.Project, timeline.ValidationErrors, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT document FROM projects WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load project %s: %w", id, err)
	}
	p, repairs := Decode(id, data)
	return p, repairs, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, saved_at FROM projects ORDER BY saved_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum   Summary
			saved int64
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &saved); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		sum.SavedAt = time.Unix(0, saved).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
