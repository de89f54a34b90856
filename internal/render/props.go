package render

import (
	"math"

	"reelkit/internal/compose"
	"reelkit/internal/timeline"
)

// CompositionID names the composition the external renderer draws.
const CompositionID = "MyComp"

// Props is the input document handed to the renderer. Field names follow the
// composition's input schema.
type Props struct {
	Clips            []timeline.Clip  `json:"clips"`
	Tracks           []timeline.Track `json:"tracks"`
	Width            int              `json:"width"`
	Height           int              `json:"height"`
	FPS              int              `json:"fps"`
	Duration         float64          `json:"duration"`
	DurationInFrames int              `json:"durationInFrames"`
	ExportPreset     string           `json:"exportPreset"`
	BgKeywords       []string         `json:"bgKeywords"`
	PositiveWords    []string         `json:"positiveWords"`
	NegativeWords    []string         `json:"negativeWords"`
	GridDirection    string           `json:"gridDirection"`
	Styles           timeline.Styles  `json:"styles"`
}

// Request is one render invocation.
type Request struct {
	ID         string  `json:"id"`
	InputProps Props   `json:"inputProps"`
	Scale      float64 `json:"scale,omitempty"`
}

// BuildProps snapshots p for rendering. Local tokens are replaced by the
// resolver's URLs; a source that cannot be resolved is dropped from its clip
// and reported by clip id.
func BuildProps(p *timeline.Project, r compose.Resolver) (Props, []string) {
	preset := p.ExportPreset
	res, ok := timeline.ExportPreset(preset)
	if !ok {
		preset = timeline.DefaultExportPreset
		res, _ = timeline.ExportPreset(preset)
	}
	fps := p.FPS
	if fps <= 0 {
		fps = timeline.DefaultFPS
	}
	duration := math.Max(timeline.MinTotalDuration, p.TotalDuration())

	var dropped []string
	clips := make([]timeline.Clip, len(p.Clips))
	for i, c := range p.Clips {
		c = c.Clone()
		if c.Src != "" && c.Type != timeline.TypeText && r != nil {
			url, ok := r.Resolve(c.Src)
			if !ok {
				dropped = append(dropped, c.ID)
				url = ""
			}
			c.Src = url
		}
		clips[i] = c
	}

	tracks := make([]timeline.Track, len(p.Tracks))
	copy(tracks, p.Tracks)

	return Props{
		Clips:            clips,
		Tracks:           tracks,
		Width:            timeline.EvenDimension(res.Width),
		Height:           timeline.EvenDimension(res.Height),
		FPS:              fps,
		Duration:         duration,
		DurationInFrames: int(math.Ceil(duration * float64(fps))),
		ExportPreset:     preset,
		BgKeywords:       cloneStrings(p.Config.Background),
		PositiveWords:    cloneStrings(p.Config.Positive),
		NegativeWords:    cloneStrings(p.Config.Negative),
		GridDirection:    p.GridDirection,
		Styles:           p.Styles,
	}, dropped
}

// NewRequest wraps props for the default composition.
func NewRequest(props Props) Request {
	return Request{ID: CompositionID, InputProps: props, Scale: 1}
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
