package compose

import "reelkit/internal/sentiment"

// LayerKind tags the payload of a Layer.
type LayerKind string

const (
	KindPattern   LayerKind = "pattern"
	KindTreatment LayerKind = "treatment"
	KindMedia     LayerKind = "media"
	KindSubtitle  LayerKind = "subtitle"
	KindText      LayerKind = "text"
	KindAudio     LayerKind = "audio"
)

// Transform places a layer in project pixel space. X and Y are the center.
// A zero Width or Height means the natural size.
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
}

// Layer is the declarative description of one clip at one instant.
type Layer struct {
	ClipID  string    `json:"clipId"`
	TrackID string    `json:"trackId"`
	Kind    LayerKind `json:"kind"`
	Z       int       `json:"z"`
	Order   int       `json:"order"`

	// FullFrame layers cover the whole composition and ignore Transform.
	FullFrame bool      `json:"fullFrame,omitempty"`
	Transform Transform `json:"transform"`
	Opacity   float64   `json:"opacity"`
	Volume    float64   `json:"volume,omitempty"`

	Src  string `json:"src,omitempty"`
	Text string `json:"text,omitempty"`

	FontSize float64 `json:"fontSize,omitempty"`
	Color    string  `json:"color,omitempty"`

	Pattern   *Pattern   `json:"pattern,omitempty"`
	Treatment *Treatment `json:"treatment,omitempty"`
	Subtitle  *Subtitle  `json:"subtitle,omitempty"`
}

// Tile is one scrolling tiled sheet of a background pattern.
type Tile struct {
	Image    string  `json:"image"`
	Size     float64 `json:"size"`
	Aspect   float64 `json:"aspect,omitempty"`
	OffsetX  float64 `json:"offsetX"`
	OffsetY  float64 `json:"offsetY"`
	Rotation float64 `json:"rotation,omitempty"`
	Tilt     float64 `json:"tilt,omitempty"`
	Opacity  float64 `json:"opacity"`
	Glow     float64 `json:"glow,omitempty"`
}

// TextRow is a marquee row of decorative keywords.
type TextRow struct {
	Text    string  `json:"text"`
	OffsetX float64 `json:"offsetX"`
	Opacity float64 `json:"opacity"`
}

// Pattern is a procedural full-frame background.
type Pattern struct {
	Style      string    `json:"style"`
	Fill       string    `json:"fill"`
	FillBottom string    `json:"fillBottom,omitempty"`
	Tiles      []Tile    `json:"tiles,omitempty"`
	Rows       []TextRow `json:"rows,omitempty"`
	Rotation   float64   `json:"rotation,omitempty"`
	Keywords   []string  `json:"keywords,omitempty"`
	Vignette   float64   `json:"vignette,omitempty"`
	Scanlines  float64   `json:"scanlines,omitempty"`
	Noise      float64   `json:"noise,omitempty"`
}

// Treatment is a decorated frame or full-frame filter wrapped around an
// image or video source.
type Treatment struct {
	Style string `json:"style"`
	Src   string `json:"src"`
	// Template is the shared shape: cutout presets frame the media, filter
	// presets cover the frame with it.
	Template string `json:"template"`

	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`

	Enter      float64 `json:"enter"`
	Opacity    float64 `json:"opacity"`
	Scale      float64 `json:"scale"`
	TranslateY float64 `json:"translateY,omitempty"`
	Rotation   float64 `json:"rotation,omitempty"`
	TiltX      float64 `json:"tiltX,omitempty"`
	TiltY      float64 `json:"tiltY,omitempty"`

	ImageScale   float64 `json:"imageScale"`
	ImageOpacity float64 `json:"imageOpacity"`
	Filter       string  `json:"filter,omitempty"`
	Overlay      string  `json:"overlay,omitempty"`

	Accent  string `json:"accent,omitempty"`
	Sticker string `json:"sticker,omitempty"`
	Label   string `json:"label,omitempty"`
	Caption string `json:"caption,omitempty"`
	Barcode []bool `json:"barcode,omitempty"`
	// Pulse drives the recording dot of camcorder looks.
	Pulse float64 `json:"pulse,omitempty"`
}

// Unit is one independently animated piece of a subtitle.
type Unit struct {
	Text      string              `json:"text"`
	Highlight bool                `json:"highlight,omitempty"`
	Sentiment sentiment.Sentiment `json:"sentiment,omitempty"`
	Progress  float64             `json:"progress"`

	Opacity    float64 `json:"opacity"`
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translateX,omitempty"`
	TranslateY float64 `json:"translateY,omitempty"`
	Rotation   float64 `json:"rotation,omitempty"`
	Blur       float64 `json:"blur,omitempty"`

	Color      string `json:"color"`
	Background string `json:"background,omitempty"`
	Underline  bool   `json:"underline,omitempty"`
}

// Banner is the marquee strip of the impact preset.
type Banner struct {
	Text    string  `json:"text"`
	ScaleX  float64 `json:"scaleX"`
	OffsetX float64 `json:"offsetX"`
}

// Subtitle is an animated subtitle block.
type Subtitle struct {
	Style string `json:"style"`
	Units []Unit `json:"units"`

	BoxOpacity    float64 `json:"boxOpacity"`
	BoxScale      float64 `json:"boxScale"`
	BoxTranslateY float64 `json:"boxTranslateY,omitempty"`
	BoxRotation   float64 `json:"boxRotation,omitempty"`

	Caption        string  `json:"caption,omitempty"`
	CaptionOpacity float64 `json:"captionOpacity,omitempty"`
	Banner         *Banner `json:"banner,omitempty"`
}

// Frame is the composite of a project at one instant.
type Frame struct {
	Time   float64 `json:"time"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	// Layers are the visual layers in paint order.
	Layers []Layer `json:"layers"`
	Audio  []Layer `json:"audio,omitempty"`
	// Skipped lists active clips that produced no layer.
	Skipped []string `json:"skipped,omitempty"`
}
