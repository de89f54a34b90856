package compose

import (
	"math"
	"slices"
	"strings"

	"reelkit/internal/timeline"
)

// MotionInput is what a background pattern is a function of.
type MotionInput struct {
	Frame     float64
	Keywords  []string
	Direction string
	Config    *timeline.GridBackground
}

// MotionFunc evaluates one named background pattern.
type MotionFunc func(in MotionInput) Pattern

// FallbackMotion is the pattern drawn for an unknown motion style.
const FallbackMotion = "solid"

// CyberGrid is the pattern of clips carrying a grid background config and
// no motion style.
const CyberGrid = "cybergrid"

var motions = map[string]MotionFunc{
	"grid":         gridMotion,
	"velocity":     velocityMotion,
	"curve":        curveMotion,
	"dots":         dotsMotion,
	"plus":         plusMotion,
	"cross":        crossMotion,
	CyberGrid:      cyberGridMotion,
	FallbackMotion: solidMotion,
}

// MotionStyles lists the registered background patterns.
func MotionStyles() []string {
	return sortedKeys(motions)
}

func lookupMotion(style string) MotionFunc {
	if fn, ok := motions[style]; ok {
		return fn
	}
	return motions[FallbackMotion]
}

func gridMotion(in MotionInput) Pattern {
	const size = 80.0
	const secondsPerLoop = 2.0
	dir := 1.0
	if in.Direction == timeline.GridBackward {
		dir = -1
	}
	return Pattern{
		Style: "grid",
		Fill:  "#09090b",
		Tiles: []Tile{{
			Image:   "lines",
			Size:    size,
			OffsetY: math.Mod(in.Frame*size*dir/(AnimationFPS*secondsPerLoop), size),
			Tilt:    60,
			Opacity: 0.15,
		}},
	}
}

func marquee(words []string, n int) string {
	if len(words) == 0 {
		return ""
	}
	return strings.Repeat(strings.Join(words, " • ")+" • ", n)
}

func velocityMotion(in MotionInput) Pattern {
	rows := make([]TextRow, 4)
	for i := range rows {
		dir, speed := 1.0, 4.0
		if i%2 == 0 {
			dir, speed = -1, 3
		}
		rows[i] = TextRow{
			Text:    marquee(in.Keywords, 5),
			OffsetX: math.Mod(in.Frame*speed*dir, 1000),
			Opacity: 0.1,
		}
	}
	return Pattern{Style: "velocity", Fill: "#0a0a0a", Rows: rows, Rotation: -10, Keywords: in.Keywords}
}

func curveMotion(in MotionInput) Pattern {
	words := in.Keywords
	if len(words) > 3 {
		words = words[:3]
	}
	return Pattern{
		Style:    "curve",
		Fill:     "#171717",
		Rows:     []TextRow{{Text: marquee(words, 3), Opacity: 0.2}},
		Rotation: in.Frame * 0.5,
		Keywords: words,
	}
}

func dotsMotion(in MotionInput) Pattern {
	offset := math.Mod(in.Frame*0.5, 100)
	return Pattern{
		Style: "dots",
		Fill:  "#f4f4f5",
		Tiles: []Tile{{Image: "dot", Size: 24, OffsetX: offset, OffsetY: offset, Rotation: -15, Opacity: 0.2}},
	}
}

func plusMotion(in MotionInput) Pattern {
	return Pattern{
		Style: "plus",
		Fill:  "#171717",
		Tiles: []Tile{
			{Image: "sweep", Size: 720, Rotation: in.Frame, Opacity: 0.4},
			{Image: "plus", Size: 36, Opacity: 0.3},
		},
	}
}

func crossMotion(in MotionInput) Pattern {
	pan := math.Mod(in.Frame*0.5, 100)
	return Pattern{
		Style: "cross",
		Fill:  "#e5e5e5",
		Tiles: []Tile{
			{Image: "cross-fine", Size: 30, OffsetX: -pan, OffsetY: -pan, Opacity: 0.1},
			{Image: "cross-bold", Size: 120, OffsetX: pan, OffsetY: pan, Opacity: 0.2},
		},
	}
}

func cyberGridMotion(in MotionInput) Pattern {
	cfg := timeline.GridBackground{}
	if in.Config != nil {
		cfg = *in.Config
	}
	if cfg.GridSize <= 0 {
		cfg.GridSize = 40
	}
	if cfg.Aspect <= 0 {
		cfg.Aspect = 1
	}
	if cfg.Color == "" {
		cfg.Color = "#00ffff"
	}
	w, h := cfg.GridSize*cfg.Aspect, cfg.GridSize
	rad := cfg.Angle * math.Pi / 180
	moveX := math.Sin(rad) * cfg.Speed
	moveY := -math.Cos(rad) * cfg.Speed

	pulse := 1.0
	if cfg.PulseSpeed > 0 {
		pulse = 1 + math.Sin(in.Frame*cfg.PulseSpeed*0.1)*0.2*cfg.Glow
	}
	return Pattern{
		Style:      CyberGrid,
		Fill:       "#000000",
		FillBottom: "#0b0b1a",
		Tiles: []Tile{{
			Image:   "lines:" + cfg.Color,
			Size:    h,
			Aspect:  cfg.Aspect,
			OffsetX: math.Mod(in.Frame*moveX, w),
			OffsetY: math.Mod(in.Frame*moveY, h),
			Opacity: 0.8,
			Glow:    cfg.Glow * pulse,
		}},
		Vignette:  0.5,
		Scanlines: 0.3,
		Noise:     0.05,
	}
}

func solidMotion(MotionInput) Pattern {
	return Pattern{Style: FallbackMotion, Fill: "#000000"}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
