// Package compose turns the clips of a project into a declarative layer
// stack. Every result is a pure function of the clip and its local time, so
// the live preview and the offline frame driver agree frame for frame.
package compose

import (
	"math"
	"sort"

	"reelkit/internal/sentiment"
	"reelkit/internal/timeline"
)

// Resolver maps a clip source to something renderable. ok is false when a
// local asset token has no backing data.
type Resolver interface {
	Resolve(src string) (string, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(src string) (string, bool)

// Resolve calls f.
func (f ResolverFunc) Resolve(src string) (string, bool) { return f(src) }

// Env carries the project-wide inputs of evaluation.
type Env struct {
	Keywords      sentiment.Keywords
	GridDirection string
	// FPS is the composition frame rate used to discard clips shorter than
	// one frame. Zero means timeline.DefaultFPS.
	FPS      int
	Resolver Resolver
}

// EnvFor builds the evaluation environment of p.
func EnvFor(p *timeline.Project, r Resolver) Env {
	return Env{
		Keywords:      p.Config.Keywords,
		GridDirection: p.GridDirection,
		FPS:           p.FPS,
		Resolver:      r,
	}
}

func (e Env) resolve(src string) (string, bool) {
	if src == "" {
		return "", false
	}
	if e.Resolver == nil {
		return src, true
	}
	return e.Resolver.Resolve(src)
}

// Evaluate describes clip at localTime seconds after its start. track may
// be nil. ok is false when the clip contributes nothing: hidden visual
// tracks, unknown types, sub-frame durations and unresolvable sources.
func Evaluate(clip timeline.Clip, track *timeline.Track, localTime float64, env Env) (Layer, bool) {
	if !clip.Type.Valid() {
		return Layer{}, false
	}
	if track != nil && track.IsHidden && clip.Type != timeline.TypeAudio {
		return Layer{}, false
	}
	fps := env.FPS
	if fps <= 0 {
		fps = timeline.DefaultFPS
	}
	if math.Round(clip.Duration*float64(fps)) <= 0 {
		return Layer{}, false
	}

	t := clip.Start + localTime
	frame := localTime * AnimationFPS
	fade := clip.FadeFactor(t)
	muted := track != nil && track.IsMuted

	layer := Layer{
		ClipID:  clip.ID,
		TrackID: clip.TrackID,
		Z:       clip.ZIndexAt(0),
		Transform: Transform{
			X:        clip.Animated(timeline.PropX, t, timeline.DefaultValue(timeline.PropX)),
			Y:        clip.Animated(timeline.PropY, t, timeline.DefaultValue(timeline.PropY)),
			Width:    timeline.Value(clip.Width, 0),
			Height:   timeline.Value(clip.Height, 0),
			Scale:    clip.Animated(timeline.PropScale, t, 1),
			Rotation: clip.Animated(timeline.PropRotation, t, 0),
		},
		Opacity: clip.Animated(timeline.PropOpacity, t, 1) * fade,
	}
	volume := 0.0
	if !muted {
		volume = clip.Animated(timeline.PropVolume, t, 1) * fade
	}
	tone := clip.Sentiment

	switch {
	case clip.Type == timeline.TypeBackground && clip.MotionStyle != "":
		p := lookupMotion(clip.MotionStyle)(MotionInput{
			Frame:     frame,
			Keywords:  env.Keywords.Background,
			Direction: env.GridDirection,
			Config:    clip.Background,
		})
		layer.Kind, layer.FullFrame, layer.Pattern = KindPattern, true, &p
		return layer, true

	case clip.Type == timeline.TypeText && clip.SubtitleStyle != "":
		if clip.Src == "" {
			return Layer{}, false
		}
		s := lookupSubtitle(clip.SubtitleStyle)(SubtitleInput{
			Frame:      frame,
			Text:       clip.Src,
			Highlights: clip.HighlightWords,
			Tone:       tone,
			Keywords:   env.Keywords,
		})
		layer.Kind, layer.FullFrame, layer.Subtitle = KindSubtitle, true, &s
		layer.Text = clip.Src
		return layer, true

	case (clip.Type == timeline.TypeImage || clip.Type == timeline.TypeVideo) && clip.VisualStyle != "":
		src, ok := env.resolve(clip.Src)
		if !ok {
			return Layer{}, false
		}
		tr := lookupVisual(clip.VisualStyle)(VisualInput{Frame: frame, Src: src, Style: clip.VisualStyle, Tone: tone})
		layer.Kind, layer.FullFrame, layer.Treatment, layer.Src = KindTreatment, true, &tr, src
		return layer, true
	}

	switch clip.Type {
	case timeline.TypeBackground:
		if clip.Background == nil {
			return Layer{}, false
		}
		p := lookupMotion(CyberGrid)(MotionInput{Frame: frame, Config: clip.Background})
		layer.Kind, layer.FullFrame, layer.Pattern = KindPattern, true, &p
	case timeline.TypeVideo, timeline.TypeImage:
		src, ok := env.resolve(clip.Src)
		if !ok {
			return Layer{}, false
		}
		layer.Kind, layer.Src = KindMedia, src
		if clip.Type == timeline.TypeVideo {
			layer.Volume = volume
		}
	case timeline.TypeText:
		if clip.Src == "" {
			return Layer{}, false
		}
		layer.Kind, layer.Text = KindText, clip.Src
		layer.FontSize = timeline.Value(clip.FontSize, 40)
		layer.Color = clip.Color
		if layer.Color == "" {
			layer.Color = "#ffffff"
		}
	case timeline.TypeAudio:
		src, ok := env.resolve(clip.Src)
		if !ok {
			return Layer{}, false
		}
		layer.Kind, layer.Src, layer.Volume = KindAudio, src, volume
	}
	return layer, true
}

// Composite evaluates every clip of p active at t and stacks the visual
// layers by ascending zIndex, ties in array order. Audio layers are
// reported separately.
func Composite(p *timeline.Project, t float64, env Env) Frame {
	f := Frame{Time: t, Width: p.Width, Height: p.Height, Layers: []Layer{}}
	for i, c := range p.Clips {
		if !c.Contains(t) {
			continue
		}
		var track *timeline.Track
		if tr, ok := p.Track(c.TrackID); ok {
			track = tr
		}
		layer, ok := Evaluate(c, track, t-c.Start, env)
		if !ok {
			f.Skipped = append(f.Skipped, c.ID)
			continue
		}
		layer.Z = c.ZIndexAt(i)
		layer.Order = i
		if layer.Kind == KindAudio {
			f.Audio = append(f.Audio, layer)
			continue
		}
		f.Layers = append(f.Layers, layer)
	}
	sort.SliceStable(f.Layers, func(a, b int) bool {
		return f.Layers[a].Z < f.Layers[b].Z
	})
	return f
}
