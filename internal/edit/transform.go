package edit

import (
	"math"
	"strings"
)

// Box is the on-canvas geometry of a visual clip in project pixels. X and Y
// are the center; R is the rotation in degrees.
type Box struct {
	X float64
	Y float64
	W float64
	H float64
	R float64
}

// MoveBox translates b by a screen-space delta.
func MoveBox(b Box, v Viewport, start, at Point) Box {
	s := v.Scale()
	b.X += (at.X - start.X) / s
	b.Y += (at.Y - start.Y) / s
	return b
}

// RotateBox turns b by the angle swept around its center between start and
// at. The result lies in [0, 360).
func RotateBox(b Box, v Viewport, start, at Point) Box {
	c := v.ToScreen(Point{X: b.X, Y: b.Y})
	from := math.Atan2(start.Y-c.Y, start.X-c.X)
	to := math.Atan2(at.Y-c.Y, at.X-c.X)
	b.R = normalizeDegrees(b.R + (to-from)*180/math.Pi)
	return b
}

// ResizeBox drags one of the eight compass handles of b. The pointer delta
// is un-rotated into the box frame, the touched edges move independently
// with a one pixel floor, and the center shifts by half the edge motion
// rotated back into project space.
func ResizeBox(b Box, handle Handle, v Viewport, start, at Point) Box {
	s := v.Scale()
	dx := (at.X - start.X) / s
	dy := (at.Y - start.Y) / s

	back := -b.R * math.Pi / 180
	localX := dx*math.Cos(back) - dy*math.Sin(back)
	localY := dx*math.Sin(back) + dy*math.Cos(back)

	var left, right, top, bottom float64
	h := string(handle)
	if strings.Contains(h, "e") {
		right = localX
	}
	if strings.Contains(h, "w") {
		left = -localX
	}
	if strings.Contains(h, "s") {
		bottom = localY
	}
	if strings.Contains(h, "n") {
		top = -localY
	}

	shiftX := (right - left) / 2
	shiftY := (bottom - top) / 2
	fwd := b.R * math.Pi / 180

	out := b
	out.W = math.Max(1, b.W+right+left)
	out.H = math.Max(1, b.H+top+bottom)
	out.X = b.X + shiftX*math.Cos(fwd) - shiftY*math.Sin(fwd)
	out.Y = b.Y + shiftX*math.Sin(fwd) + shiftY*math.Cos(fwd)
	return out
}

func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
