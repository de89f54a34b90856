package timeline

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError records a single repair applied to loaded state.
type ValidationError struct {
	Entity  string
	ID      string
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	parts := []string{e.Entity}
	if e.ID != "" {
		parts = append(parts, e.ID)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	return strings.Join(parts, " ") + ": " + e.Message
}

// ValidationErrors aggregates the repairs of one Normalize pass.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(errs))
	for i, err := range errs {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// Normalize repairs p in place so every invariant of the model holds and
// returns what it changed. Loaded state is never rejected.
func (p *Project) Normalize() ValidationErrors {
	var errs ValidationErrors
	note := func(entity, id, field, format string, args ...any) {
		errs = append(errs, ValidationError{Entity: entity, ID: id, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if p.ID == "" {
		p.ID = NewID("project")
		note("project", p.ID, "id", "missing id assigned")
	}
	if p.Version == 0 {
		p.Version = SchemaVersion
	}
	if p.Width <= 0 {
		p.Width = BaseWidth
	}
	if p.Height <= 0 {
		p.Height = BaseHeight
	}
	if p.FPS <= 0 {
		p.FPS = DefaultFPS
	}

	p.normalizeTracks(note)
	p.normalizeClips(note)

	if p.Markers == nil {
		p.Markers = []Marker{}
	}
	for i := range p.Markers {
		m := &p.Markers[i]
		if m.ID == "" {
			m.ID = NewID("marker")
			note("marker", m.ID, "id", "missing id assigned")
		}
		if m.Time < 0 || math.IsNaN(m.Time) {
			note("marker", m.ID, "time", "invalid time %v reset to 0", m.Time)
			m.Time = 0
		}
	}

	p.Config.Keywords = p.Config.Keywords.WithDefaults()

	defaults := DefaultStyles()
	if p.Styles.Subtitle == "" {
		p.Styles.Subtitle = defaults.Subtitle
	}
	if p.Styles.Cutout == "" {
		p.Styles.Cutout = defaults.Cutout
	}
	if p.Styles.Broll == "" {
		p.Styles.Broll = defaults.Broll
	}
	if p.Styles.Motion == "" {
		p.Styles.Motion = defaults.Motion
	}
	if p.GridDirection != GridForward && p.GridDirection != GridBackward {
		p.GridDirection = GridForward
	}
	if _, ok := ExportPreset(p.ExportPreset); !ok {
		if p.ExportPreset != "" {
			note("project", p.ID, "exportPreset", "unknown preset %q replaced", p.ExportPreset)
		}
		p.ExportPreset = DefaultExportPreset
	}

	p.SelectedClipIDs = p.existingClipIDs(p.SelectedClipIDs)
	if p.SelectedMarkerID != "" {
		if _, ok := p.Marker(p.SelectedMarkerID); !ok {
			p.SelectedMarkerID = ""
		}
	}
	return errs
}

func (p *Project) normalizeTracks(note func(entity, id, field, format string, args ...any)) {
	if len(p.Tracks) == 0 {
		p.Tracks = DefaultTracks()
		return
	}
	for i := range p.Tracks {
		tr := &p.Tracks[i]
		if tr.ID == "" {
			tr.ID = NewID("track")
			note("track", tr.ID, "id", "missing id assigned")
		}
		if !tr.Type.Valid() {
			note("track", tr.ID, "type", "unknown type %q treated as text", tr.Type)
			tr.Type = TypeText
		}
	}
	if _, ok := p.Track(TrackAudio); ok {
		return
	}
	audio := Track{ID: TrackAudio, Label: "音频", Type: TypeAudio}
	at := len(p.Tracks)
	for i, tr := range p.Tracks {
		if tr.ID == TrackText {
			at = i
			break
		}
	}
	p.Tracks = append(p.Tracks[:at], append([]Track{audio}, p.Tracks[at:]...)...)
	note("track", TrackAudio, "", "missing audio track inserted")
}

func (p *Project) normalizeClips(note func(entity, id, field, format string, args ...any)) {
	if p.Clips == nil {
		p.Clips = []Clip{}
	}
	seen := make(map[string]bool, len(p.Clips))
	for i := range p.Clips {
		c := &p.Clips[i]
		if c.ID == "" || seen[c.ID] {
			old := c.ID
			c.ID = NewID("clip")
			note("clip", c.ID, "id", "missing or duplicate id %q replaced", old)
		}
		seen[c.ID] = true
		if !c.Type.Valid() {
			note("clip", c.ID, "type", "unknown type %q", c.Type)
		}
		if c.Start < 0 || math.IsNaN(c.Start) {
			note("clip", c.ID, "start", "negative start %v reset to 0", c.Start)
			c.Start = 0
		}
		if !(c.Duration >= MinDuration) {
			note("clip", c.ID, "duration", "duration %v raised to %v", c.Duration, MinDuration)
			c.Duration = MinDuration
		}
		if _, ok := p.Track(c.TrackID); !ok {
			note("clip", c.ID, "trackId", "unknown track %q", c.TrackID)
		}
	}
}

func (p *Project) existingClipIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if p.ClipIndex(id) >= 0 {
			out = append(out, id)
		}
	}
	return out
}
