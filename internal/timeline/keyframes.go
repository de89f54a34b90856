package timeline

import (
	"math"
	"slices"
	"sort"
)

// Property names an animatable numeric clip field.
type Property string

const (
	PropX        Property = "x"
	PropY        Property = "y"
	PropScale    Property = "scale"
	PropRotation Property = "rotation"
	PropOpacity  Property = "opacity"
	PropVolume   Property = "volume"
)

// Keyframe is a value pinned to an absolute timeline time.
type Keyframe struct {
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// Keyframes holds per-property keyframe lists.
type Keyframes map[Property][]Keyframe

// Value interpolates prop at the absolute time. Between keyframes the value
// is linear, outside the range the nearest end value holds, and with no
// keyframes fallback is returned.
func (k Keyframes) Value(prop Property, time, fallback float64) float64 {
	frames := k[prop]
	if len(frames) == 0 {
		return fallback
	}
	sorted := frames
	if !sort.SliceIsSorted(frames, func(i, j int) bool { return frames[i].Time < frames[j].Time }) {
		sorted = slices.Clone(frames)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	}

	first, last := sorted[0], sorted[len(sorted)-1]
	if time <= first.Time {
		return first.Value
	}
	if time >= last.Time {
		return last.Value
	}
	for i := 0; i < len(sorted)-1; i++ {
		a, b := sorted[i], sorted[i+1]
		if time >= a.Time && time <= b.Time {
			span := math.Max(0.0001, b.Time-a.Time)
			ratio := (time - a.Time) / span
			return a.Value + (b.Value-a.Value)*ratio
		}
	}
	return last.Value
}

// keyframeTolerance is how close to a time an existing keyframe must be to
// count as sitting on it. One frame at 60 fps.
const keyframeTolerance = 1.0 / 60

// ParseProperty maps a property name to its Property.
func ParseProperty(name string) (Property, bool) {
	switch p := Property(name); p {
	case PropX, PropY, PropScale, PropRotation, PropOpacity, PropVolume:
		return p, true
	}
	return "", false
}

// DefaultValue is what prop evaluates to on a clip that sets nothing.
func DefaultValue(prop Property) float64 {
	switch prop {
	case PropX:
		return BaseWidth / 2
	case PropY:
		return BaseHeight / 2
	case PropScale, PropOpacity, PropVolume:
		return 1
	}
	return 0
}

// HasKeyframe reports whether prop has a keyframe at time.
func (k Keyframes) HasKeyframe(prop Property, time float64) bool {
	return k.indexAt(prop, time) >= 0
}

func (k Keyframes) indexAt(prop Property, time float64) int {
	for i, kf := range k[prop] {
		if math.Abs(kf.Time-time) < keyframeTolerance {
			return i
		}
	}
	return -1
}

// SetKeyframe inserts or replaces the keyframe of prop at time, keeping the
// list sorted. The keyframe map is allocated on first use.
func (c *Clip) SetKeyframe(prop Property, time, value float64) {
	if c.Keyframes == nil {
		c.Keyframes = Keyframes{}
	}
	frames := c.Keyframes[prop]
	if i := c.Keyframes.indexAt(prop, time); i >= 0 {
		frames[i] = Keyframe{Time: time, Value: value}
		return
	}
	frames = append(frames, Keyframe{Time: time, Value: value})
	sort.SliceStable(frames, func(i, j int) bool { return frames[i].Time < frames[j].Time })
	c.Keyframes[prop] = frames
}

// ToggleKeyframe removes the keyframe of prop at time when one exists and
// otherwise pins value there. It reports whether a keyframe was added.
func (c *Clip) ToggleKeyframe(prop Property, time, value float64) bool {
	i := c.Keyframes.indexAt(prop, time)
	if i < 0 {
		c.SetKeyframe(prop, time, value)
		return true
	}
	frames := slices.Delete(c.Keyframes[prop], i, i+1)
	if len(frames) == 0 {
		delete(c.Keyframes, prop)
	} else {
		c.Keyframes[prop] = frames
	}
	if len(c.Keyframes) == 0 {
		c.Keyframes = nil
	}
	return false
}

// Clone deep-copies the keyframe lists.
func (k Keyframes) Clone() Keyframes {
	if k == nil {
		return nil
	}
	out := make(Keyframes, len(k))
	for prop, frames := range k {
		out[prop] = slices.Clone(frames)
	}
	return out
}

// FadeFactor returns the transition multiplier of c at absolute time.
func (c Clip) FadeFactor(time float64) float64 {
	if c.Transitions == nil {
		return 1
	}
	factor := 1.0
	if in := c.Transitions.In; in > 0 {
		factor *= clamp01((time - c.Start) / in)
	}
	if out := c.Transitions.Out; out > 0 {
		factor *= clamp01((c.End() - time) / out)
	}
	return factor
}

// Animated returns prop at absolute time, keyframes first, then the static
// value, then fallback.
func (c Clip) Animated(prop Property, time, fallback float64) float64 {
	return c.Keyframes.Value(prop, time, c.Static(prop, fallback))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
