package edit

import "math"

// TrimRight moves the right edge of a clip by delta seconds.
func TrimRight(duration, delta, minDuration float64) float64 {
	return math.Max(minDuration, duration+delta)
}

// TrimLeft moves the left edge of a clip by delta seconds while keeping the
// right edge fixed. The start never passes the point minDuration before the
// right edge and never goes below zero.
func TrimLeft(start, duration, delta, minDuration float64) (float64, float64) {
	newStart := math.Min(start+delta, start+duration-minDuration)
	newStart = math.Max(0, newStart)
	newDuration := math.Max(minDuration, duration-(newStart-start))
	return newStart, newDuration
}
