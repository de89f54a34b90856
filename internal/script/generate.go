package script

import (
	"math"

	"reelkit/internal/timeline"
)

// Layer paint order of generated clips.
const (
	ZBackground = 0
	ZBroll      = 10
	ZCutout     = 20
	ZText       = 80
)

// Role names one of the generated layers of a script line.
type Role string

const (
	RoleBackground Role = "background"
	RoleCutout     Role = "cutout"
	RoleBroll      Role = "broll"
	RoleText       Role = "text"
)

// TrackID returns the default track a role is generated on.
func (r Role) TrackID() string {
	switch r {
	case RoleBackground:
		return timeline.TrackBackground
	case RoleCutout:
		return timeline.TrackCutout
	case RoleBroll:
		return timeline.TrackBroll
	}
	return timeline.TrackText
}

// Generate appends one text clip per line, followed by its background,
// cut-out and b-roll layers linked through ParentID. The first line's image
// layers use the project's first configured image.
func Generate(p *timeline.Project, lines []Line) []string {
	var created []string
	for i, line := range lines {
		src := ""
		if i == 0 && len(p.Config.Images) > 0 {
			src = p.Config.Images[0]
		}
		text := TextClip(line, p.Styles.Subtitle)
		created = append(created, text.ID)
		p.Clips = append(p.Clips, text)
		for _, child := range LayerClips(text, line, p.Styles, src) {
			p.Clips = append(p.Clips, child)
			created = append(created, child.ID)
		}
	}
	return created
}

// TextClip builds the subtitle clip of a line with the default text box.
func TextClip(line Line, subtitleStyle string) timeline.Clip {
	return timeline.Clip{
		ID:             timeline.NewID("clip"),
		Name:           "字幕",
		Type:           timeline.TypeText,
		Start:          line.Start,
		Duration:       math.Max(timeline.MinDuration, line.Duration),
		TrackID:        timeline.TrackText,
		Src:            line.Text,
		X:              timeline.Float(timeline.BaseWidth / 2),
		Y:              timeline.Float(timeline.BaseHeight / 2),
		Width:          timeline.Float(math.Round(timeline.BaseWidth * 0.9)),
		Height:         timeline.Float(math.Round(timeline.BaseHeight * 0.6)),
		Scale:          timeline.Float(1),
		Rotation:       timeline.Float(0),
		Opacity:        timeline.Float(1),
		ZIndex:         timeline.Int(ZText),
		SubtitleStyle:  subtitleStyle,
		HighlightWords: line.Highlights,
		Sentiment:      line.Sentiment(),
	}
}

// LayerClips builds the three generated layers of a text clip.
func LayerClips(parent timeline.Clip, line Line, styles timeline.Styles, src string) []timeline.Clip {
	base := timeline.Clip{
		Start:     parent.Start,
		Duration:  parent.Duration,
		ParentID:  parent.ID,
		Sentiment: line.Sentiment(),
	}

	bg := base
	bg.ID = timeline.NewID("clip")
	bg.Name = "动态背景"
	bg.Type = timeline.TypeBackground
	bg.TrackID = RoleBackground.TrackID()
	bg.ZIndex = timeline.Int(ZBackground)
	bg.MotionStyle = styles.Motion

	cutout := base
	cutout.ID = timeline.NewID("clip")
	cutout.Name = "抠像"
	cutout.Type = timeline.TypeImage
	cutout.TrackID = RoleCutout.TrackID()
	cutout.ZIndex = timeline.Int(ZCutout)
	cutout.VisualStyle = styles.Cutout
	cutout.Src = src

	broll := base
	broll.ID = timeline.NewID("clip")
	broll.Name = "空镜"
	broll.Type = timeline.TypeImage
	broll.TrackID = RoleBroll.TrackID()
	broll.ZIndex = timeline.Int(ZBroll)
	broll.VisualStyle = styles.Broll
	broll.Src = src

	return []timeline.Clip{bg, cutout, broll}
}

// Rebuild replaces every script line and generated layer with the result of
// parsing text. Clips the user placed by hand are kept.
func Rebuild(p *timeline.Project, text string) []string {
	kept := p.Clips[:0]
	for _, c := range p.Clips {
		if c.ParentID != "" || c.Type == timeline.TypeText {
			continue
		}
		kept = append(kept, c)
	}
	p.Clips = kept
	p.InputText = text
	created := Generate(p, Parse(text, p.Config.Keywords))
	p.SelectedClipIDs = nil
	return created
}

// ApplyStyle sets the preset of one generated layer of parentID. The text
// role targets the parent itself. It reports whether a clip changed.
func ApplyStyle(p *timeline.Project, parentID string, role Role, style string) bool {
	if role == RoleText {
		c, ok := p.Clip(parentID)
		if !ok || c.Type != timeline.TypeText {
			return false
		}
		c.SubtitleStyle = style
		return true
	}
	c, ok := p.Child(parentID, role.TrackID())
	if !ok {
		return false
	}
	switch role {
	case RoleBackground:
		c.MotionStyle = style
	default:
		c.VisualStyle = style
	}
	return true
}

// StylesOf reports the presets in effect for the script line that clipID
// belongs to. Roles without a generated layer fall back to the project
// defaults.
func StylesOf(p *timeline.Project, clipID string) timeline.Styles {
	out := p.Styles
	c, ok := p.Clip(clipID)
	if !ok {
		return out
	}
	parentID := c.ParentID
	if parentID == "" {
		parentID = c.ID
	}
	if parent, ok := p.Clip(parentID); ok && parent.Type == timeline.TypeText && parent.SubtitleStyle != "" {
		out.Subtitle = parent.SubtitleStyle
	}
	for _, child := range p.Children(parentID) {
		switch child.TrackID {
		case RoleBackground.TrackID():
			if child.MotionStyle != "" {
				out.Motion = child.MotionStyle
			}
		case RoleCutout.TrackID():
			if child.VisualStyle != "" {
				out.Cutout = child.VisualStyle
			}
		case RoleBroll.TrackID():
			if child.VisualStyle != "" {
				out.Broll = child.VisualStyle
			}
		}
	}
	return out
}
