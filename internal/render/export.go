package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"reelkit/internal/compose"
	"reelkit/internal/playback"
	"reelkit/internal/render/state"
	"reelkit/internal/sentiment"
	"reelkit/internal/timeline"
)

// Exporter evaluates every frame of a project offline and writes one frame
// document per index.
type Exporter struct {
	Env    compose.Env
	OutDir string
}

// ExportOptions controls export execution behaviour.
type ExportOptions struct {
	Concurrency int
	FPS         int
	Force       bool
	Reporter    ProgressReporter
}

// FrameJob is one frame awaiting evaluation.
type FrameJob struct {
	Index int
	Time  float64
	Path  string
}

// FrameResult captures the outcome of a frame.
type FrameResult struct {
	Index   int
	Time    float64
	Path    string
	Layers  int
	Skipped bool
	Err     error
}

// ProgressReporter receives notifications as frames move through the export.
type ProgressReporter interface {
	Start(job FrameJob)
	Complete(result FrameResult)
}

// Manifest summarizes an export directory.
type Manifest struct {
	ProjectID   string  `json:"projectId"`
	Composition string  `json:"composition"`
	FPS         int     `json:"fps"`
	Frames      int     `json:"frames"`
	Duration    float64 `json:"duration"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	// Inputs hashes everything the frames were evaluated from. Existing
	// frames are reused only when it matches.
	Inputs string `json:"inputs"`
}

// FramePath returns the document path of frame index.
func (e *Exporter) FramePath(index int) string {
	return filepath.Join(e.OutDir, fmt.Sprintf("frame_%06d.json", index))
}

// Export renders every frame of p. Frames are independent, so they are
// evaluated concurrently; results keep frame order.
func (e *Exporter) Export(ctx context.Context, p *timeline.Project, opts ExportOptions) ([]FrameResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	fps := opts.FPS
	if fps <= 0 {
		fps = p.FPS
	}
	if fps <= 0 {
		fps = timeline.DefaultFPS
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	if err := os.MkdirAll(e.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure export directory: %w", err)
	}

	snapshot := p.Clone()
	duration := snapshot.TotalDuration()
	count := playback.FrameCount(duration, fps)
	inputs := e.inputsHash(snapshot, fps)
	reuse := !opts.Force && e.previousInputs() == inputs
	if !reuse {
		if err := e.clearFrames(); err != nil {
			return nil, err
		}
	}

	results := make([]FrameResult, count)
	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, concurrency)
	)

	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return results[:i], err
		}
		job := FrameJob{Index: i, Time: playback.TimeAt(fps, int64(i)), Path: e.FramePath(i)}
		if opts.Reporter != nil {
			opts.Reporter.Start(job)
		}
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			res := e.exportOne(snapshot, job, reuse)
			results[job.Index] = res
			if opts.Reporter != nil {
				opts.Reporter.Complete(res)
			}
		}()
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return results, err
	}
	for _, res := range results {
		if res.Err != nil {
			return results, nil
		}
	}
	if err := e.writeManifest(snapshot, fps, count, duration, inputs); err != nil {
		return results, err
	}
	return results, nil
}

// inputsHash fingerprints the frame inputs. Save time and selection do not
// change a frame and are left out.
func (e *Exporter) inputsHash(p *timeline.Project, fps int) string {
	q := p.Clone()
	q.SavedAt = time.Time{}
	q.SelectedClipIDs = nil
	q.SelectedMarkerID = ""
	return state.Hash(struct {
		Project       *timeline.Project
		FPS           int
		Keywords      sentiment.Keywords
		GridDirection string
		EnvFPS        int
	}{q, fps, e.Env.Keywords, e.Env.GridDirection, e.Env.FPS})
}

func (e *Exporter) manifestPath() string {
	return filepath.Join(e.OutDir, "manifest.json")
}

func (e *Exporter) previousInputs() string {
	data, err := os.ReadFile(e.manifestPath())
	if err != nil {
		return ""
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return ""
	}
	return m.Inputs
}

// clearFrames removes the manifest and every frame document of an earlier
// export.
func (e *Exporter) clearFrames() error {
	if err := os.Remove(e.manifestPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove manifest: %w", err)
	}
	stale, err := filepath.Glob(filepath.Join(e.OutDir, "frame_*.json"))
	if err != nil {
		return err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove stale frame: %w", err)
		}
	}
	return nil
}

func (e *Exporter) exportOne(p *timeline.Project, job FrameJob, reuse bool) FrameResult {
	result := FrameResult{Index: job.Index, Time: job.Time, Path: job.Path}
	if reuse {
		if _, err := os.Stat(job.Path); err == nil {
			result.Skipped = true
			return result
		}
	}

	frame := compose.Composite(p, job.Time, e.Env)
	result.Layers = len(frame.Layers) + len(frame.Audio)

	data, err := json.Marshal(frame)
	if err != nil {
		result.Err = fmt.Errorf("encode frame %d: %w", job.Index, err)
		return result
	}
	tmp := job.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		result.Err = fmt.Errorf("write frame %d: %w", job.Index, err)
		return result
	}
	if err := os.Rename(tmp, job.Path); err != nil {
		result.Err = fmt.Errorf("write frame %d: %w", job.Index, err)
	}
	return result
}

func (e *Exporter) writeManifest(p *timeline.Project, fps, frames int, duration float64, inputs string) error {
	m := Manifest{
		ProjectID:   p.ID,
		Composition: CompositionID,
		FPS:         fps,
		Frames:      frames,
		Duration:    duration,
		Width:       p.Width,
		Height:      p.Height,
		Inputs:      inputs,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(e.manifestPath(), data, 0o644)
}
