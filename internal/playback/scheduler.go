// Package playback drives time: the live preview scheduler and the offline
// frame enumerator.
package playback

import (
	"math"
	"sync"
)

// Scheduler owns the playhead of the live preview. Time is kept as a base
// plus a whole number of preview frames, so n ticks land exactly on n/fps
// no matter how the ticks were grouped.
type Scheduler struct {
	mu      sync.Mutex
	fps     int
	total   float64
	base    float64
	frames  int64
	playing bool
}

// NewScheduler returns a paused scheduler at zero.
func NewScheduler(fps int, total float64) *Scheduler {
	if fps <= 0 {
		fps = 60
	}
	return &Scheduler{fps: fps, total: math.Max(0, total)}
}

// FPS returns the preview rate.
func (s *Scheduler) FPS() int {
	return s.fps
}

// SetTotal updates the timeline length, clamping the playhead.
func (s *Scheduler) SetTotal(total float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total = math.Max(0, total)
	if s.nowLocked() > s.total {
		s.seekLocked(s.total)
		s.playing = false
	}
}

// Now returns the current time.
func (s *Scheduler) Now() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nowLocked()
}

// Playing reports whether the scheduler advances on Tick.
func (s *Scheduler) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Play starts playback. Playing from the end restarts at zero.
func (s *Scheduler) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nowLocked() >= s.total {
		s.seekLocked(0)
	}
	s.playing = true
}

// Pause stops playback at the current time.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = false
}

// Toggle flips between playing and paused and reports the new state.
func (s *Scheduler) Toggle() bool {
	if s.Playing() {
		s.Pause()
		return false
	}
	s.Play()
	return true
}

// Seek moves the playhead, clamped to [0, total].
func (s *Scheduler) Seek(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seekLocked(t)
}

// Tick advances one preview frame while playing and returns the new time.
// Reaching the end clamps to it and pauses.
func (s *Scheduler) Tick() float64 {
	return s.Advance(1)
}

// Advance moves n preview frames forward while playing. Dropped display
// frames are caught up by passing n > 1; missed ticks are never replayed
// after a pause.
func (s *Scheduler) Advance(n int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing || n <= 0 {
		return s.nowLocked()
	}
	s.frames += int64(n)
	if s.nowLocked() >= s.total {
		s.seekLocked(s.total)
		s.playing = false
	}
	return s.nowLocked()
}

// TimeAt returns the time a scheduler started at zero reaches after n
// ticks, ignoring the end clamp.
func TimeAt(fps int, n int64) float64 {
	return float64(n) / float64(fps)
}

func (s *Scheduler) nowLocked() float64 {
	return s.base + float64(s.frames)/float64(s.fps)
}

func (s *Scheduler) seekLocked(t float64) {
	switch {
	case t < 0 || math.IsNaN(t):
		t = 0
	case t > s.total:
		t = s.total
	}
	s.base, s.frames = t, 0
}
