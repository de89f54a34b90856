// Package state remembers what each project last rendered to so unchanged
// renders can be answered from the previous output.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileMu serializes read-modify-write cycles on state files within the
// process. Sessions for different projects share one file.
var fileMu sync.Mutex

// Record tracks the inputs and output of one project's last render.
type Record struct {
	PropsHash  string    `json:"props_hash"`
	URL        string    `json:"url"`
	OutputPath string    `json:"output_path,omitempty"`
	RenderedAt time.Time `json:"rendered_at"`
	DurationS  float64   `json:"duration_s"`
}

// RenderState tracks render records across projects.
type RenderState struct {
	RendererHash string            `json:"renderer_hash"`
	Renders      map[string]Record `json:"renders"`
}

// Load reads render state from the given path. A missing or corrupt file
// returns an empty state without error.
func Load(path string) (*RenderState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return emptyState(), nil
	}

	var rs RenderState
	if err := json.Unmarshal(data, &rs); err != nil {
		return emptyState(), nil
	}

	if rs.Renders == nil {
		rs.Renders = map[string]Record{}
	}
	return &rs, nil
}

// Save writes the render state atomically to the given path.
func (rs *RenderState) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(rs, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Update loads the state at path, applies fn and saves the result while
// holding the state file lock.
func Update(path string, fn func(*RenderState)) error {
	fileMu.Lock()
	defer fileMu.Unlock()

	rs, err := Load(path)
	if err != nil {
		return err
	}
	fn(rs)
	return rs.Save(path)
}

// Put stores the record of a finished render.
func (rs *RenderState) Put(projectID, rendererHash string, rec Record) {
	if rs.Renders == nil {
		rs.Renders = map[string]Record{}
	}
	if rs.RendererHash != rendererHash {
		// Records made by another renderer setup are stale.
		rs.Renders = map[string]Record{}
		rs.RendererHash = rendererHash
	}
	rs.Renders[projectID] = rec
}

func emptyState() *RenderState {
	return &RenderState{
		Renders: map[string]Record{},
	}
}
