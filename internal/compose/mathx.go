package compose

import "math"

// AnimationFPS is the time base of every frame-denominated animation
// constant: frame = localTime × AnimationFPS, whatever the output rate.
const AnimationFPS = 60

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

// progress is the reveal progress of a unit that starts after delay frames
// and takes length frames to complete.
func progress(frame, delay, length float64) float64 {
	return clamp01((frame - delay) / length)
}

// lerp maps t in [0, 1] onto [a, b].
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// cubicBezier returns the CSS cubic-bezier easing curve through (x1, y1)
// and (x2, y2).
func cubicBezier(x1, y1, x2, y2 float64) func(float64) float64 {
	cx := 3 * x1
	bx := 3*(x2-x1) - cx
	ax := 1 - cx - bx
	cy := 3 * y1
	by := 3*(y2-y1) - cy
	ay := 1 - cy - by

	sampleX := func(t float64) float64 { return ((ax*t+bx)*t + cx) * t }
	sampleY := func(t float64) float64 { return ((ay*t+by)*t + cy) * t }
	slopeX := func(t float64) float64 { return (3*ax*t+2*bx)*t + cx }

	solve := func(x float64) float64 {
		t := x
		for i := 0; i < 8; i++ {
			err := sampleX(t) - x
			if math.Abs(err) < 1e-7 {
				return t
			}
			d := slopeX(t)
			if math.Abs(d) < 1e-6 {
				break
			}
			t -= err / d
		}
		lo, hi := 0.0, 1.0
		t = x
		for i := 0; i < 50; i++ {
			v := sampleX(t)
			if math.Abs(v-x) < 1e-7 {
				break
			}
			if v < x {
				lo = t
			} else {
				hi = t
			}
			t = (lo + hi) / 2
		}
		return t
	}

	return func(x float64) float64 {
		switch {
		case x <= 0:
			return 0
		case x >= 1:
			return 1
		}
		return sampleY(solve(x))
	}
}

