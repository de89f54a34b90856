package playback

import (
	"context"
	"math"

	"reelkit/internal/compose"
	"reelkit/internal/timeline"
)

// FrameCount converts a duration into whole output frames, rounding up.
func FrameCount(duration float64, fps int) int {
	if duration <= 0 || fps <= 0 {
		return 0
	}
	return int(math.Ceil(duration * float64(fps)))
}

// FrameFunc receives each composited frame in order.
type FrameFunc func(index int, frame compose.Frame) error

// Frames composites every output frame of p at fps, synchronously and in
// order. It stops at the first error from fn or when ctx is done.
func Frames(ctx context.Context, p *timeline.Project, fps int, env compose.Env, fn FrameFunc) error {
	n := FrameCount(p.TotalDuration(), fps)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := float64(i) / float64(fps)
		if err := fn(i, compose.Composite(p, t, env)); err != nil {
			return err
		}
	}
	return nil
}
