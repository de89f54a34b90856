package timeline

import (
	"slices"
	"time"

	"reelkit/internal/sentiment"
)

// Composition space and timing constants shared by every project.
const (
	BaseWidth   = 360
	BaseHeight  = 640
	DefaultFPS  = 60
	MinDuration = 0.1

	// MinTotalDuration floors an empty or near-empty timeline.
	MinTotalDuration = 1.0

	SchemaVersion = 1
)

// ClipType is the closed set of clip payload kinds.
type ClipType string

const (
	TypeVideo      ClipType = "video"
	TypeAudio      ClipType = "audio"
	TypeText       ClipType = "text"
	TypeImage      ClipType = "image"
	TypeBackground ClipType = "background"
)

// Valid reports whether t belongs to the closed set.
func (t ClipType) Valid() bool {
	switch t {
	case TypeVideo, TypeAudio, TypeText, TypeImage, TypeBackground:
		return true
	}
	return false
}

// Transformable reports whether the on-canvas transform fields apply.
func (t ClipType) Transformable() bool {
	return t == TypeVideo || t == TypeImage || t == TypeText
}

// Well-known track ids of the initial track set.
const (
	TrackBackground = "background"
	TrackCutout     = "cutout"
	TrackBroll      = "broll"
	TrackAudio      = "audio"
	TrackText       = "text"
)

// Grid scroll directions for the grid background.
const (
	GridForward  = "forward"
	GridBackward = "backward"
)

// Transitions holds fade durations in seconds. Zero disables a fade.
type Transitions struct {
	In  float64 `json:"in"`
	Out float64 `json:"out"`
}

// GridBackground configures the legacy scrolling neon grid background.
type GridBackground struct {
	Color      string  `json:"color,omitempty"`
	Speed      float64 `json:"speed,omitempty"`
	Angle      float64 `json:"angle,omitempty"`
	GridSize   float64 `json:"gridSize,omitempty"`
	Glow       float64 `json:"glow,omitempty"`
	PulseSpeed float64 `json:"pulseSpeed,omitempty"`
	Aspect     float64 `json:"aspect,omitempty"`
}

// Clip is the atomic timed unit placed on a track. Optional numeric fields
// are pointers so an unset value round-trips as unset and picks up the
// evaluator's default.
type Clip struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	Type     ClipType `json:"type"`
	Start    float64  `json:"start"`
	Duration float64  `json:"duration"`
	TrackID  string   `json:"trackId"`
	ParentID string   `json:"parentId,omitempty"`
	Src      string   `json:"src"`

	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Scale    *float64 `json:"scale,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
	Opacity  *float64 `json:"opacity,omitempty"`
	Volume   *float64 `json:"volume,omitempty"`
	ZIndex   *int     `json:"zIndex,omitempty"`

	FontSize *float64 `json:"fontSize,omitempty"`
	Color    string   `json:"color,omitempty"`

	Keyframes   Keyframes    `json:"keyframes,omitempty"`
	Transitions *Transitions `json:"transitions,omitempty"`

	SubtitleStyle  string              `json:"subtitleStyle,omitempty"`
	VisualStyle    string              `json:"visualStyle,omitempty"`
	MotionStyle    string              `json:"motionStyle,omitempty"`
	HighlightWords []string            `json:"highlightWords,omitempty"`
	Sentiment      sentiment.Sentiment `json:"sentiment,omitempty"`

	Background *GridBackground `json:"backgroundConfig,omitempty"`
}

// End returns start + duration.
func (c Clip) End() float64 {
	return c.Start + c.Duration
}

// Contains reports whether t falls in the half-open window [start, end).
func (c Clip) Contains(t float64) bool {
	return c.Start <= t && t < c.End()
}

// ZIndexAt returns the explicit paint order or the clip's array index.
func (c Clip) ZIndexAt(index int) int {
	if c.ZIndex == nil {
		return index
	}
	return *c.ZIndex
}

// Static returns the clip's own value for prop, or fallback when unset.
func (c Clip) Static(prop Property, fallback float64) float64 {
	var p *float64
	switch prop {
	case PropX:
		p = c.X
	case PropY:
		p = c.Y
	case PropScale:
		p = c.Scale
	case PropRotation:
		p = c.Rotation
	case PropOpacity:
		p = c.Opacity
	case PropVolume:
		p = c.Volume
	}
	return Value(p, fallback)
}

// Clone returns a deep copy safe to mutate independently.
func (c Clip) Clone() Clip {
	out := c
	out.X = clonePtr(c.X)
	out.Y = clonePtr(c.Y)
	out.Width = clonePtr(c.Width)
	out.Height = clonePtr(c.Height)
	out.Scale = clonePtr(c.Scale)
	out.Rotation = clonePtr(c.Rotation)
	out.Opacity = clonePtr(c.Opacity)
	out.Volume = clonePtr(c.Volume)
	out.FontSize = clonePtr(c.FontSize)
	if c.ZIndex != nil {
		z := *c.ZIndex
		out.ZIndex = &z
	}
	out.Keyframes = c.Keyframes.Clone()
	if c.Transitions != nil {
		tr := *c.Transitions
		out.Transitions = &tr
	}
	if c.HighlightWords != nil {
		out.HighlightWords = slices.Clone(c.HighlightWords)
	}
	if c.Background != nil {
		bg := *c.Background
		out.Background = &bg
	}
	return out
}

// Track is an ordered lane grouping clips.
type Track struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Type     ClipType `json:"type"`
	IsMuted  bool     `json:"isMuted"`
	IsHidden bool     `json:"isHidden"`
	IsLocked bool     `json:"isLocked"`
}

// DefaultTracks returns the initial track set of a new project.
func DefaultTracks() []Track {
	return []Track{
		{ID: TrackBackground, Label: "背景", Type: TypeBackground},
		{ID: TrackCutout, Label: "抠像", Type: TypeImage},
		{ID: TrackBroll, Label: "空镜", Type: TypeImage},
		{ID: TrackAudio, Label: "音频", Type: TypeAudio},
		{ID: TrackText, Label: "字幕", Type: TypeText},
	}
}

// Marker pins an annotation to a timeline instant.
type Marker struct {
	ID    string  `json:"id"`
	Time  float64 `json:"time"`
	Label string  `json:"label,omitempty"`
	Color string  `json:"color,omitempty"`
}

// Settings is the persisted global configuration of a project.
type Settings struct {
	sentiment.Keywords
	Images []string `json:"images,omitempty"`
	Audios []string `json:"audios,omitempty"`
}

// Styles are the active default presets applied to newly generated clips.
type Styles struct {
	Subtitle string `json:"subtitle"`
	Cutout   string `json:"cutout"`
	Broll    string `json:"broll"`
	Motion   string `json:"motion"`
}

// DefaultStyles mirrors the presets a new project starts with.
func DefaultStyles() Styles {
	return Styles{
		Subtitle: "scrapbook",
		Cutout:   "cutout-neo",
		Broll:    "scrapbook",
		Motion:   "plus",
	}
}

// Project is the aggregate composition state.
type Project struct {
	ID      string    `json:"id"`
	Name    string    `json:"name,omitempty"`
	Version int       `json:"version"`
	SavedAt time.Time `json:"savedAt"`

	Width  int `json:"width"`
	Height int `json:"height"`
	FPS    int `json:"fps"`

	Tracks  []Track  `json:"tracks"`
	Clips   []Clip   `json:"clips"`
	Markers []Marker `json:"markers"`

	Config        Settings `json:"config"`
	Styles        Styles   `json:"styles"`
	GridDirection string   `json:"gridDirection"`
	ExportPreset  string   `json:"exportPreset"`
	InputText     string   `json:"inputText,omitempty"`

	SelectedClipIDs  []string `json:"selectedClipIds"`
	SelectedMarkerID string   `json:"selectedMarkerId,omitempty"`
}

// New returns an empty project with the default tracks and keyword lists.
func New(id string) *Project {
	if id == "" {
		id = NewID("project")
	}
	return &Project{
		ID:            id,
		Version:       SchemaVersion,
		Width:         BaseWidth,
		Height:        BaseHeight,
		FPS:           DefaultFPS,
		Tracks:        DefaultTracks(),
		Clips:         []Clip{},
		Markers:       []Marker{},
		Config:        Settings{Keywords: sentiment.Keywords{}.WithDefaults()},
		Styles:        DefaultStyles(),
		GridDirection: GridForward,
		ExportPreset:  "2k",
	}
}

// Track looks up a track by id.
func (p *Project) Track(id string) (*Track, bool) {
	for i := range p.Tracks {
		if p.Tracks[i].ID == id {
			return &p.Tracks[i], true
		}
	}
	return nil, false
}

// ClipIndex returns the array index of the clip with id, or -1.
func (p *Project) ClipIndex(id string) int {
	for i := range p.Clips {
		if p.Clips[i].ID == id {
			return i
		}
	}
	return -1
}

// Clip looks up a clip by id.
func (p *Project) Clip(id string) (*Clip, bool) {
	idx := p.ClipIndex(id)
	if idx < 0 {
		return nil, false
	}
	return &p.Clips[idx], true
}

// Marker looks up a marker by id.
func (p *Project) Marker(id string) (*Marker, bool) {
	for i := range p.Markers {
		if p.Markers[i].ID == id {
			return &p.Markers[i], true
		}
	}
	return nil, false
}

// Children returns the clips generated for parentID, in array order.
func (p *Project) Children(parentID string) []*Clip {
	if parentID == "" {
		return nil
	}
	var out []*Clip
	for i := range p.Clips {
		if p.Clips[i].ParentID == parentID {
			out = append(out, &p.Clips[i])
		}
	}
	return out
}

// Child returns the generated clip of parentID placed on trackID.
func (p *Project) Child(parentID, trackID string) (*Clip, bool) {
	for _, c := range p.Children(parentID) {
		if c.TrackID == trackID {
			return c, true
		}
	}
	return nil, false
}

// RemoveClips deletes the given clips together with every clip that
// descends from them and returns the removed ids in array order.
func (p *Project) RemoveClips(ids ...string) []string {
	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}
	// Parents may appear after their children, so expand to a fixed point.
	for changed := true; changed; {
		changed = false
		for _, c := range p.Clips {
			if c.ParentID != "" && doomed[c.ParentID] && !doomed[c.ID] {
				doomed[c.ID] = true
				changed = true
			}
		}
	}

	var removed []string
	kept := p.Clips[:0]
	for _, c := range p.Clips {
		if doomed[c.ID] {
			removed = append(removed, c.ID)
			continue
		}
		kept = append(kept, c)
	}
	p.Clips = kept
	return removed
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	out := *p
	out.Tracks = slices.Clone(p.Tracks)
	out.Clips = make([]Clip, len(p.Clips))
	for i, c := range p.Clips {
		out.Clips[i] = c.Clone()
	}
	out.Markers = slices.Clone(p.Markers)
	out.Config.Positive = slices.Clone(p.Config.Positive)
	out.Config.Negative = slices.Clone(p.Config.Negative)
	out.Config.Background = slices.Clone(p.Config.Background)
	out.Config.Images = slices.Clone(p.Config.Images)
	out.Config.Audios = slices.Clone(p.Config.Audios)
	out.SelectedClipIDs = slices.Clone(p.SelectedClipIDs)
	return &out
}

// Value dereferences p or returns fallback.
func Value(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
