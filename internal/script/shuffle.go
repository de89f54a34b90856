package script

import (
	"slices"

	"reelkit/internal/compose"
	"reelkit/internal/timeline"
)

// shufflePool returns the presets a shuffle may pick for role. Fallback and
// legacy patterns are never offered.
func shufflePool(role Role) []string {
	switch role {
	case RoleBackground:
		return slices.DeleteFunc(compose.MotionStyles(), func(s string) bool {
			return s == compose.FallbackMotion || s == compose.CyberGrid
		})
	case RoleCutout:
		return compose.CutoutStyles()
	case RoleBroll:
		return compose.BrollStyles()
	}
	return slices.DeleteFunc(compose.SubtitleStyles(), func(s string) bool {
		return s == compose.FallbackSubtitle
	})
}

// roleOf reports which generated layer c plays, if any.
func roleOf(c timeline.Clip) (Role, bool) {
	switch {
	case c.Type == timeline.TypeText && c.ParentID == "":
		return RoleText, true
	case c.Type == timeline.TypeBackground && c.TrackID == timeline.TrackBackground:
		return RoleBackground, true
	case c.TrackID == timeline.TrackCutout && (c.Type == timeline.TypeImage || c.Type == timeline.TypeVideo):
		return RoleCutout, true
	case c.TrackID == timeline.TrackBroll && (c.Type == timeline.TypeImage || c.Type == timeline.TypeVideo):
		return RoleBroll, true
	}
	return "", false
}

// Shuffle assigns random presets drawn from the style registries. With an
// empty parentID every line and layer of the project is shuffled; otherwise
// only the line that parentID (or its generated layer) belongs to. roles
// narrows which layers change; none means all of them. Clips on locked
// tracks keep their presets. The same seed always picks the same presets.
// It returns the ids of the changed clips.
func Shuffle(p *timeline.Project, seed uint64, parentID string, roles ...Role) []string {
	if parentID != "" {
		c, ok := p.Clip(parentID)
		if !ok {
			return nil
		}
		if c.ParentID != "" {
			parentID = c.ParentID
		}
	}
	rnd := compose.NewRandom(seed)
	var changed []string
	for i := range p.Clips {
		c := &p.Clips[i]
		if parentID != "" && c.ID != parentID && c.ParentID != parentID {
			continue
		}
		role, ok := roleOf(*c)
		if !ok || (len(roles) > 0 && !slices.Contains(roles, role)) {
			continue
		}
		if t, ok := p.Track(c.TrackID); ok && t.IsLocked {
			continue
		}
		pool := shufflePool(role)
		if len(pool) == 0 {
			continue
		}
		style := pool[rnd.Intn(len(pool))]
		switch role {
		case RoleText:
			c.SubtitleStyle = style
		case RoleBackground:
			c.MotionStyle = style
		default:
			c.VisualStyle = style
		}
		changed = append(changed, c.ID)
	}
	return changed
}
