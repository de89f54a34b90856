package edit

import (
	"math"

	"reelkit/internal/timeline"
)

// PointerID identifies one pointer. At most one gesture runs per pointer.
type PointerID int

// Kind names a gesture.
type Kind string

const (
	KindMove         Kind = "move"
	KindRotate       Kind = "rotate"
	KindResize       Kind = "resize"
	KindTimelineDrag Kind = "timeline-drag"
	KindTrimLeft     Kind = "trim-left"
	KindTrimRight    Kind = "trim-right"
)

// Handle is a compass handle of the transform box.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// Valid reports whether h is one of the eight handles.
func (h Handle) Valid() bool {
	switch h {
	case HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW:
		return true
	}
	return false
}

func (k Kind) canvas() bool {
	return k == KindMove || k == KindRotate || k == KindResize
}

func (k Kind) valid() bool {
	switch k {
	case KindMove, KindRotate, KindResize, KindTimelineDrag, KindTrimLeft, KindTrimRight:
		return true
	}
	return false
}

// Gesture describes a pointer-down on a clip.
type Gesture struct {
	Kind   Kind
	ClipID string
	// Handle selects the box handle for KindResize.
	Handle Handle
	// At is the pointer position. Timeline gestures only read X.
	At Point
	// Viewport maps the preview container for canvas gestures.
	Viewport Viewport
}

type gesture struct {
	Gesture
	origin  map[string]timeline.Clip
	order   []string
	preview map[string]timeline.Clip
}

// Begin starts a gesture on pointer. It is rejected when the pointer is
// busy, the clip is unknown or sits on a locked track, a canvas gesture
// targets a non-visual clip, or another gesture already holds the clip.
func (e *Editor) Begin(pointer PointerID, g Gesture) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, busy := e.gestures[pointer]; busy || !g.Kind.valid() {
		return false
	}
	if g.Kind == KindResize && !g.Handle.Valid() {
		return false
	}
	clip, ok := e.project.Clip(g.ClipID)
	if !ok || e.lockedLocked(clip.TrackID) {
		return false
	}
	if g.Kind.canvas() && !clip.Type.Transformable() {
		return false
	}

	targets := []string{clip.ID}
	sel := Selection(e.project.SelectedClipIDs)
	if g.Kind == KindTimelineDrag && len(sel) > 1 && sel.Has(clip.ID) {
		targets = targets[:0]
		for _, id := range sel {
			c, ok := e.project.Clip(id)
			if !ok || e.lockedLocked(c.TrackID) {
				continue
			}
			targets = append(targets, id)
		}
	}
	for _, other := range e.gestures {
		for _, id := range targets {
			if _, held := other.origin[id]; held {
				return false
			}
		}
	}

	st := &gesture{
		Gesture: g,
		origin:  make(map[string]timeline.Clip, len(targets)),
		order:   targets,
		preview: make(map[string]timeline.Clip, len(targets)),
	}
	for _, id := range targets {
		c, _ := e.project.Clip(id)
		st.origin[id] = c.Clone()
	}
	e.gestures[pointer] = st
	e.log.Debug("gesture begin", "pointer", int(pointer), "kind", string(g.Kind), "clip", g.ClipID, "targets", len(targets))
	return true
}

// Move streams a preview-only update for the gesture on pointer. overTrack
// is the track under the pointer, or empty.
func (e *Editor) Move(pointer PointerID, at Point, overTrack string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.gestures[pointer]
	if !ok {
		return false
	}
	g.preview = e.computeLocked(g, at, overTrack)
	return true
}

// End finishes the gesture on pointer and commits its final position as
// one batch.
func (e *Editor) End(pointer PointerID, at Point, overTrack string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	g, ok := e.gestures[pointer]
	if !ok {
		return false
	}
	delete(e.gestures, pointer)

	final := e.computeLocked(g, at, overTrack)
	changed := false
	for _, id := range g.order {
		next, ok := final[id]
		if !ok {
			continue
		}
		c, ok := e.project.Clip(id)
		if !ok {
			continue
		}
		*c = next
		changed = true
	}
	if changed {
		e.commitLocked()
	}
	e.log.Debug("gesture end", "pointer", int(pointer), "kind", string(g.Kind), "clips", len(final))
	return changed
}

// Cancel drops the gesture on pointer. The committed state is untouched.
func (e *Editor) Cancel(pointer PointerID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.gestures[pointer]; !ok {
		return false
	}
	delete(e.gestures, pointer)
	return true
}

// Active reports whether a gesture is running on pointer.
func (e *Editor) Active(pointer PointerID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.gestures[pointer]
	return ok
}

func (e *Editor) lockedLocked(trackID string) bool {
	t, ok := e.project.Track(trackID)
	return ok && t.IsLocked
}

func (e *Editor) computeLocked(g *gesture, at Point, overTrack string) map[string]timeline.Clip {
	switch g.Kind {
	case KindTimelineDrag:
		return e.dragLocked(g, at, overTrack)
	case KindTrimLeft, KindTrimRight:
		return e.trimLocked(g, at)
	default:
		return e.transformLocked(g, at)
	}
}

func (e *Editor) dragLocked(g *gesture, at Point, overTrack string) map[string]timeline.Clip {
	anchor := g.origin[g.ClipID]
	delta := (at.X - g.At.X) / e.cfg.PixelsPerSecond
	start := math.Max(0, anchor.Start+delta)

	// Without an unlocked track under the pointer every clip keeps its own.
	track := ""
	if overTrack != "" {
		if t, ok := e.project.Track(overTrack); ok && !t.IsLocked {
			track = overTrack
		}
	}

	own := make(map[float64]bool, 2*len(g.origin))
	for _, c := range g.origin {
		own[c.Start] = true
		own[c.End()] = true
	}
	points := withoutValues(SnapPoints(e.project, e.playhead), own)
	start = math.Max(0, start+SnapDelta(start, anchor.Duration, points, e.cfg.SnapThreshold()))

	shift := start - anchor.Start
	out := make(map[string]timeline.Clip, len(g.origin))
	for id, c := range g.origin {
		next := c.Clone()
		next.Start = math.Max(0, c.Start+shift)
		if track != "" {
			next.TrackID = track
		}
		out[id] = next
	}
	return out
}

func (e *Editor) trimLocked(g *gesture, at Point) map[string]timeline.Clip {
	c := g.origin[g.ClipID]
	delta := (at.X - g.At.X) / e.cfg.PixelsPerSecond
	next := c.Clone()
	if g.Kind == KindTrimRight {
		next.Duration = TrimRight(c.Duration, delta, e.cfg.MinDuration)
	} else {
		next.Start, next.Duration = TrimLeft(c.Start, c.Duration, delta, e.cfg.MinDuration)
	}
	return map[string]timeline.Clip{c.ID: next}
}

func (e *Editor) transformLocked(g *gesture, at Point) map[string]timeline.Clip {
	c := g.origin[g.ClipID]
	box := Box{
		X: timeline.Value(c.X, float64(e.project.Width)/2),
		Y: timeline.Value(c.Y, float64(e.project.Height)/2),
		W: timeline.Value(c.Width, 0),
		H: timeline.Value(c.Height, 0),
		R: timeline.Value(c.Rotation, 0),
	}
	next := c.Clone()
	switch g.Kind {
	case KindMove:
		box = MoveBox(box, g.Viewport, g.At, at)
		next.X, next.Y = timeline.Float(box.X), timeline.Float(box.Y)
	case KindRotate:
		box = RotateBox(box, g.Viewport, g.At, at)
		next.Rotation = timeline.Float(box.R)
	case KindResize:
		box = ResizeBox(box, g.Handle, g.Viewport, g.At, at)
		next.X, next.Y = timeline.Float(box.X), timeline.Float(box.Y)
		next.Width, next.Height = timeline.Float(box.W), timeline.Float(box.H)
	}
	return map[string]timeline.Clip{c.ID: next}
}
