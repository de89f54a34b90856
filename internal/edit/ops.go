package edit

import (
	"fmt"
	"math"
	"slices"

	"reelkit/internal/script"
	"reelkit/internal/timeline"
)

// Split cuts clip id at the playhead. The playhead must lie strictly inside
// the clip. The second half gets a fresh id and becomes the selection.
func (e *Editor) Split(id string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.project.ClipIndex(id)
	if idx < 0 || e.heldLocked(id) {
		return "", false
	}
	c := e.project.Clips[idx]
	t := e.playhead
	if t <= c.Start || t >= c.End() || e.lockedLocked(c.TrackID) {
		return "", false
	}

	second := c.Clone()
	second.ID = timeline.NewID("clip")
	second.Start = t
	second.Duration = c.End() - t
	e.project.Clips[idx].Duration = t - c.Start
	e.project.Clips = slices.Insert(e.project.Clips, idx+1, second)
	e.project.SelectedClipIDs = []string{second.ID}
	e.commitLocked()
	return second.ID, true
}

// Duplicate clones clip id right after its end and selects the copy.
func (e *Editor) Duplicate(id string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := e.project.ClipIndex(id)
	if idx < 0 {
		return "", false
	}
	c := e.project.Clips[idx]
	if e.lockedLocked(c.TrackID) {
		return "", false
	}
	dup := c.Clone()
	dup.ID = timeline.NewID("clip")
	dup.Start = c.End()
	e.project.Clips = slices.Insert(e.project.Clips, idx+1, dup)
	e.project.SelectedClipIDs = []string{dup.ID}
	e.commitLocked()
	return dup.ID, true
}

// Delete removes the clips and everything generated from them, then clears
// the selection. It returns the removed ids.
func (e *Editor) Delete(ids ...string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	removed := e.project.RemoveClips(ids...)
	if len(removed) == 0 {
		return nil
	}
	for pointer, g := range e.gestures {
		for _, id := range removed {
			if _, ok := g.origin[id]; ok {
				delete(e.gestures, pointer)
				break
			}
		}
	}
	e.project.SelectedClipIDs = nil
	e.commitLocked()
	return removed
}

// DefaultTextSrc is the content of a text clip dropped without text.
const DefaultTextSrc = "新字幕"

// Drop describes a resource dropped onto a track.
type Drop struct {
	TrackID string
	Time    float64
	Type    timeline.ClipType
	Src     string
	Name    string
	// Duration is the media duration when known. Zero picks the default.
	Duration float64
}

// Drop places a new clip on a track and selects it.
func (e *Editor) Drop(d Drop) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	track, ok := e.project.Track(d.TrackID)
	if !ok || track.IsLocked {
		return "", false
	}
	typ := d.Type
	if typ == "" {
		typ = track.Type
	}
	if !typ.Valid() {
		return "", false
	}

	c := timeline.Clip{
		ID:       timeline.NewID("clip"),
		Name:     d.Name,
		Type:     typ,
		Start:    math.Max(0, d.Time),
		Duration: e.cfg.DefaultDropDuration,
		TrackID:  track.ID,
		Src:      d.Src,
		ZIndex:   dropZIndex(track.ID, typ),
	}
	switch typ {
	case timeline.TypeAudio:
		dur := d.Duration
		if dur <= 0 {
			dur = 5
		}
		c.Duration = math.Max(0.5, dur)
		c.Volume = timeline.Float(1)
	case timeline.TypeText:
		if c.Src == "" {
			c.Src = DefaultTextSrc
		}
		c.SubtitleStyle = e.project.Styles.Subtitle
	case timeline.TypeBackground:
		c.MotionStyle = e.project.Styles.Motion
	default:
		if d.Duration > 0 {
			c.Duration = d.Duration
		}
	}
	if typ.Transformable() {
		c.X = timeline.Float(float64(e.project.Width) / 2)
		c.Y = timeline.Float(float64(e.project.Height) / 2)
		c.Scale = timeline.Float(1)
		c.Rotation = timeline.Float(0)
		c.Opacity = timeline.Float(1)
	}
	if c.Name == "" {
		c.Name = track.Label
	}
	if c.Src == "" && typ != timeline.TypeBackground {
		return "", false
	}
	c.Duration = math.Max(e.cfg.MinDuration, c.Duration)

	e.project.Clips = append(e.project.Clips, c)
	e.project.SelectedClipIDs = []string{c.ID}
	e.commitLocked()
	return c.ID, true
}

// UpdateClip applies fn to clip id and re-establishes the start and
// duration floors. Clips held by a gesture or on a locked track are left
// alone.
func (e *Editor) UpdateClip(id string, fn func(c *timeline.Clip)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.project.Clip(id)
	if !ok || e.heldLocked(id) || e.lockedLocked(c.TrackID) {
		return false
	}
	next := c.Clone()
	fn(&next)
	next.ID = id
	next.Start = math.Max(0, next.Start)
	if !(next.Duration >= e.cfg.MinDuration) {
		next.Duration = e.cfg.MinDuration
	}
	if !next.Type.Valid() {
		return false
	}
	track, ok := e.project.Track(next.TrackID)
	if !ok || track.IsLocked {
		return false
	}
	*c = next
	e.commitLocked()
	return true
}

// dropZIndex places a dropped clip in the same paint band as the layers
// generated for script lines. Audio has no paint order.
func dropZIndex(trackID string, typ timeline.ClipType) *int {
	switch {
	case typ == timeline.TypeAudio:
		return nil
	case typ == timeline.TypeBackground:
		return timeline.Int(script.ZBackground)
	case typ == timeline.TypeText:
		return timeline.Int(script.ZText)
	case trackID == timeline.TrackCutout:
		return timeline.Int(script.ZCutout)
	}
	return timeline.Int(script.ZBroll)
}

// AddMarker pins a marker at t and selects it.
func (e *Editor) AddMarker(t float64, label, color string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	m := timeline.Marker{
		ID:    timeline.NewID("marker"),
		Time:  math.Max(0, t),
		Label: label,
		Color: color,
	}
	e.project.Markers = append(e.project.Markers, m)
	e.project.SelectedMarkerID = m.ID
	e.commitLocked()
	return m.ID
}

// UpdateMarker applies fn to marker id.
func (e *Editor) UpdateMarker(id string, fn func(m *timeline.Marker)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.project.Marker(id)
	if !ok {
		return false
	}
	fn(m)
	m.ID = id
	m.Time = math.Max(0, m.Time)
	e.commitLocked()
	return true
}

// DeleteMarker removes marker id.
func (e *Editor) DeleteMarker(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	idx := slices.IndexFunc(e.project.Markers, func(m timeline.Marker) bool { return m.ID == id })
	if idx < 0 {
		return false
	}
	e.project.Markers = slices.Delete(e.project.Markers, idx, idx+1)
	if e.project.SelectedMarkerID == id {
		e.project.SelectedMarkerID = ""
	}
	e.commitLocked()
	return true
}

// SelectMarker selects marker id, or clears the marker selection for "".
func (e *Editor) SelectMarker(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id != "" {
		if _, ok := e.project.Marker(id); !ok {
			return false
		}
	}
	e.project.SelectedMarkerID = id
	e.commitLocked()
	return true
}

// AddTrack appends a text track.
func (e *Editor) AddTrack() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := timeline.Track{
		ID:    timeline.NewID("track"),
		Label: fmt.Sprintf("轨道 %d", len(e.project.Tracks)+1),
		Type:  timeline.TypeText,
	}
	e.project.Tracks = append(e.project.Tracks, t)
	e.commitLocked()
	return t.ID
}

// TrackFlag names one of the independent track switches.
type TrackFlag string

const (
	FlagMuted  TrackFlag = "mute"
	FlagHidden TrackFlag = "hide"
	FlagLocked TrackFlag = "lock"
)

// ToggleTrack flips one flag of track id and returns its new value.
func (e *Editor) ToggleTrack(id string, flag TrackFlag) (bool, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.project.Track(id)
	if !ok {
		return false, false
	}
	var v *bool
	switch flag {
	case FlagMuted:
		v = &t.IsMuted
	case FlagHidden:
		v = &t.IsHidden
	case FlagLocked:
		v = &t.IsLocked
	default:
		return false, false
	}
	*v = !*v
	e.commitLocked()
	return *v, true
}

// RebuildScript regenerates every script line and its layers from text.
func (e *Editor) RebuildScript(text string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.gestures)
	created := script.Rebuild(e.project, text)
	e.commitLocked()
	return created
}

// ApplyStyle sets the preset of one generated layer of a script line.
func (e *Editor) ApplyStyle(parentID string, role script.Role, style string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !script.ApplyStyle(e.project, parentID, role, style) {
		return false
	}
	e.commitLocked()
	return true
}

// Shuffle draws random presets for the lines selected by parentID (all lines
// when empty), as script.Shuffle does, and commits when anything changed.
func (e *Editor) Shuffle(seed uint64, parentID string, roles ...script.Role) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	changed := script.Shuffle(e.project, seed, parentID, roles...)
	if len(changed) > 0 {
		e.commitLocked()
	}
	return changed
}

// SelectedStyles derives the presets shown for the first selected clip.
func (e *Editor) SelectedStyles() timeline.Styles {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.project.SelectedClipIDs) == 0 {
		return e.project.Styles
	}
	return script.StylesOf(e.project, e.project.SelectedClipIDs[0])
}

func (e *Editor) heldLocked(id string) bool {
	for _, g := range e.gestures {
		if _, ok := g.origin[id]; ok {
			return true
		}
	}
	return false
}
