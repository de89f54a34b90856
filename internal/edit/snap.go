package edit

import (
	"math"

	"reelkit/internal/timeline"
)

// SnapPoints collects the distinct salient times of p: zero, the total
// duration, the playhead, every marker and both edges of every clip.
func SnapPoints(p *timeline.Project, playhead float64) []float64 {
	seen := make(map[float64]bool)
	var points []float64
	add := func(v float64) {
		if !seen[v] {
			seen[v] = true
			points = append(points, v)
		}
	}
	add(0)
	add(p.TotalDuration())
	add(playhead)
	for _, m := range p.Markers {
		add(m.Time)
	}
	for _, c := range p.Clips {
		add(c.Start)
		add(c.End())
	}
	return points
}

// SnapDelta returns the shift that lands the nearest clip edge on a point,
// or zero when no point lies within threshold seconds. The leading edge
// wins ties.
func SnapDelta(start, duration float64, points []float64, threshold float64) float64 {
	bestDelta := 0.0
	bestDistance := threshold + 1
	for _, point := range points {
		lead := point - start
		trail := point - (start + duration)
		if d := math.Abs(lead); d < bestDistance {
			bestDistance = d
			bestDelta = lead
		}
		if d := math.Abs(trail); d < bestDistance {
			bestDistance = d
			bestDelta = trail
		}
	}
	if bestDistance <= threshold {
		return bestDelta
	}
	return 0
}

func withoutValues(points []float64, exclude map[float64]bool) []float64 {
	out := make([]float64, 0, len(points))
	for _, p := range points {
		if !exclude[p] {
			out = append(out, p)
		}
	}
	return out
}
