package edit

import "math"

// Point is a pointer position.
type Point struct {
	X float64
	Y float64
}

// Viewport maps the project pixel space onto a preview container of a
// different size, letterboxed and centered.
type Viewport struct {
	ContainerWidth  float64
	ContainerHeight float64
	ProjectWidth    float64
	ProjectHeight   float64
}

// Scale returns the uniform fit factor from project to screen pixels.
func (v Viewport) Scale() float64 {
	if v.ProjectWidth <= 0 || v.ProjectHeight <= 0 || v.ContainerWidth <= 0 || v.ContainerHeight <= 0 {
		return 1
	}
	return math.Min(v.ContainerWidth/v.ProjectWidth, v.ContainerHeight/v.ProjectHeight)
}

// Offset returns the screen position of the project origin.
func (v Viewport) Offset() Point {
	if v.ProjectWidth <= 0 || v.ProjectHeight <= 0 || v.ContainerWidth <= 0 || v.ContainerHeight <= 0 {
		return Point{}
	}
	s := v.Scale()
	return Point{
		X: (v.ContainerWidth - v.ProjectWidth*s) / 2,
		Y: (v.ContainerHeight - v.ProjectHeight*s) / 2,
	}
}

// ToScreen maps a project point to screen space.
func (v Viewport) ToScreen(p Point) Point {
	s, o := v.Scale(), v.Offset()
	return Point{X: o.X + p.X*s, Y: o.Y + p.Y*s}
}

// ToProject maps a screen point to project space.
func (v Viewport) ToProject(p Point) Point {
	s, o := v.Scale(), v.Offset()
	return Point{X: (p.X - o.X) / s, Y: (p.Y - o.Y) / s}
}
