package timeline

import (
	"math"
	"sort"
)

// TotalDuration is the latest clip end, floored at MinTotalDuration.
func TotalDuration(clips []Clip) float64 {
	total := 0.0
	for _, c := range clips {
		total = math.Max(total, c.End())
	}
	return math.Max(MinTotalDuration, total)
}

// ActiveOnTrack returns every clip of trackID whose window contains t, in
// array order.
func ActiveOnTrack(clips []Clip, trackID string, t float64) []Clip {
	var out []Clip
	for _, c := range clips {
		if c.TrackID == trackID && c.Contains(t) {
			out = append(out, c)
		}
	}
	return out
}

// ActiveClip resolves the single showing clip of a track at t. Among
// overlapping candidates the most recently started wins; equal starts keep
// the earlier array entry.
func ActiveClip(clips []Clip, trackID string, t float64) (Clip, bool) {
	var (
		best  Clip
		found bool
	)
	for _, c := range clips {
		if c.TrackID != trackID || !c.Contains(t) {
			continue
		}
		if !found || c.Start > best.Start {
			best = c
			found = true
		}
	}
	return best, found
}

// ActiveTextClips returns every text clip containing t ordered by paint
// order, ties broken by array order.
func ActiveTextClips(clips []Clip, t float64) []Clip {
	type entry struct {
		clip  Clip
		z     int
		index int
	}
	var active []entry
	for i, c := range clips {
		if c.Type == TypeText && c.Contains(t) {
			active = append(active, entry{clip: c, z: c.ZIndexAt(i), index: i})
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].z < active[j].z })
	out := make([]Clip, len(active))
	for i, e := range active {
		out[i] = e.clip
	}
	return out
}

// CurrentLineIndex returns the index of the first line containing t. Past
// the end it returns the last index; otherwise -1.
func CurrentLineIndex(lines []Clip, t, total float64) int {
	for i, c := range lines {
		if c.Contains(t) {
			return i
		}
	}
	if len(lines) > 0 && t >= total {
		return len(lines) - 1
	}
	return -1
}

// TotalDuration of the project.
func (p *Project) TotalDuration() float64 {
	return TotalDuration(p.Clips)
}

// ActiveOnTrack of the project at t.
func (p *Project) ActiveOnTrack(trackID string, t float64) []Clip {
	return ActiveOnTrack(p.Clips, trackID, t)
}

// ActiveClip of the project track at t.
func (p *Project) ActiveClip(trackID string, t float64) (Clip, bool) {
	return ActiveClip(p.Clips, trackID, t)
}

// ActiveTextClips of the project at t.
func (p *Project) ActiveTextClips(t float64) []Clip {
	return ActiveTextClips(p.Clips, t)
}

// ScriptLines returns the script-derived text clips in array order.
func (p *Project) ScriptLines() []Clip {
	var out []Clip
	for _, c := range p.Clips {
		if c.Type == TypeText && c.ParentID == "" {
			out = append(out, c)
		}
	}
	return out
}

// CurrentLineIndex of the project's script lines at t.
func (p *Project) CurrentLineIndex(t float64) int {
	return CurrentLineIndex(p.ScriptLines(), t, p.TotalDuration())
}
