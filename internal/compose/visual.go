package compose

import (
	"fmt"
	"math"
	"strings"

	"reelkit/internal/sentiment"
)

// VisualInput is what an image treatment is a function of.
type VisualInput struct {
	Frame float64
	Src   string
	Style string
	Tone  sentiment.Sentiment
}

// VisualFunc evaluates one named image treatment.
type VisualFunc func(in VisualInput) Treatment

// Shared shapes of the treatment family.
const (
	TemplateCutout = "cutout"
	TemplateFilter = "filter"
)

// Shared entrance and idle motion of the treatment family.
type visualMotion struct {
	enter  float64
	scale  float64
	floatY float64
	swing  float64
}

func motionAt(frame float64) visualMotion {
	enter := math.Min(1, frame/30)
	return visualMotion{
		enter:  enter,
		scale:  lerp(0.9, 1, clamp01(enter)),
		floatY: math.Sin(frame*0.05) * 10,
		swing:  math.Sin(frame*0.02) * 2,
	}
}

// cutout parameterizes the framed presets. Each hook may be nil.
type cutout struct {
	width, height float64
	filter        string
	imageScale    func(frame float64) float64
	place         func(t *Treatment, m visualMotion, frame float64)
	decorate      func(t *Treatment, in VisualInput, rnd *Random)
}

func (c cutout) eval(in VisualInput) Treatment {
	m := motionAt(in.Frame)
	t := Treatment{
		Style:        in.Style,
		Src:          in.Src,
		Template:     TemplateCutout,
		Width:        c.width,
		Height:       c.height,
		Enter:        m.enter,
		Opacity:      m.enter,
		Scale:        1,
		ImageScale:   1,
		ImageOpacity: 1,
		Filter:       c.filter,
	}
	if c.imageScale != nil {
		t.ImageScale = c.imageScale(in.Frame)
	}
	if c.place != nil {
		c.place(&t, m, in.Frame)
	}
	if c.decorate != nil {
		c.decorate(&t, in, NewRandom(SeedFor(in.Src, in.Style, string(in.Tone))))
	}
	return t
}

func scaleIn(t *Treatment, m visualMotion, _ float64) {
	t.Scale = m.scale
}

func scaleInSwing(t *Treatment, m visualMotion, _ float64) {
	t.Scale = m.scale
	t.Rotation = 1 + m.swing
}

// Tailwind palette values used by the accents.
const (
	amber400  = "#fbbf24"
	amber500  = "#f59e0b"
	rose400   = "#fb7185"
	rose500   = "#f43f5e"
	rose600   = "#e11d48"
	yellow400 = "#facc15"
	indigo500 = "#6366f1"
	indigo600 = "#4f46e5"
)

func sticker(tone sentiment.Sentiment) string {
	switch tone.Emphasis() {
	case sentiment.Positive:
		return "sparkles"
	case sentiment.Negative:
		return "alert"
	}
	return "star"
}

func pick(tone sentiment.Sentiment, negative, other string) string {
	if tone.Emphasis() == sentiment.Negative {
		return negative
	}
	return other
}

func figure(rnd *Random) string {
	return fmt.Sprintf("FIG.0%d", rnd.Intn(9))
}

var cutouts = map[string]cutout{
	"cutout-neo": {
		width: 280, height: 350,
		filter: "grayscale(1) contrast(1.25)",
		place:  scaleInSwing,
		decorate: func(t *Treatment, in VisualInput, rnd *Random) {
			t.Accent = pick(in.Tone, rose400, amber400)
			t.Sticker = sticker(in.Tone)
			t.Label = figure(rnd)
		},
	},
	"cutout-film": {
		width: 300, height: 340,
		imageScale: func(frame float64) float64 { return 1 + frame*0.001 },
		place: func(t *Treatment, m visualMotion, _ float64) {
			t.TranslateY = (1 - m.enter) * 20
			t.Rotation = 1 + m.swing
		},
		decorate: func(t *Treatment, _ VisualInput, _ *Random) {
			t.Caption = "录制中 ●"
			t.Accent = "#f97316"
		},
	},
	"cutout-glass": {
		width: 280, height: 350,
		imageScale: func(frame float64) float64 { return 1.1 + math.Sin(frame*0.01)*0.05 },
		place: func(t *Treatment, m visualMotion, frame float64) {
			t.Scale = m.scale
			t.TiltX = math.Sin(frame*0.05) * 2
			t.TiltY = math.Cos(frame*0.05) * 2
			t.ImageOpacity = 0.9
		},
		decorate: func(t *Treatment, in VisualInput, _ *Random) {
			switch in.Tone.Emphasis() {
			case sentiment.Positive:
				t.Caption = "能量飙升"
			case sentiment.Negative:
				t.Caption = "能量流失"
			default:
				t.Caption = "平稳运行"
			}
			t.Label = "状态"
		},
	},
	"cutout-paper": {
		width: 252, height: 336,
		filter: "grayscale(1) contrast(1.25)",
		place: func(t *Treatment, m visualMotion, _ float64) {
			t.Scale = m.scale
			t.Rotation = -2 + m.enter*2
		},
		decorate: func(t *Treatment, in VisualInput, _ *Random) {
			t.Accent = pick(in.Tone, rose400, yellow400)
		},
	},
	"cutout-float": {
		width: 280, height: 280,
		imageScale: func(float64) float64 { return 1.1 },
		place: func(t *Treatment, m visualMotion, _ float64) {
			t.TranslateY = m.floatY
		},
		decorate: func(t *Treatment, in VisualInput, _ *Random) {
			t.Accent = pick(in.Tone, rose600, amber500)
			t.Sticker = sticker(in.Tone)
		},
	},
	"cutout-doodle": {
		width: 280, height: 350,
		filter: "grayscale(1) contrast(1.25)",
		place: func(t *Treatment, m visualMotion, _ float64) {
			t.Rotation = 1 + m.swing
		},
		decorate: func(t *Treatment, in VisualInput, _ *Random) {
			t.Label = "注意："
			t.Caption = pick(in.Tone, "千万别这样！", "重点知识！")
			t.Accent = "#fde047"
		},
	},
	"scrapbook": {
		width: 288, height: 384,
		filter: "grayscale(0.2) contrast(1.1)",
		place: func(t *Treatment, m visualMotion, _ float64) {
			t.TranslateY = 50 - m.enter*50
			t.Scale = m.scale
			t.Rotation = -2
		},
		decorate: func(t *Treatment, in VisualInput, rnd *Random) {
			t.Label = fmt.Sprintf("图例. 0%d", rnd.Intn(9))
			switch in.Tone.Emphasis() {
			case sentiment.Positive:
				t.Caption = "#高能"
			case sentiment.Negative:
				t.Caption = "#警惕"
			default:
				t.Caption = "#日常"
			}
		},
	},
	"vogue": {
		width: 296, height: 364,
		filter:     "grayscale(0.8) contrast(1.25)",
		imageScale: func(frame float64) float64 { return 1.1 + frame*0.0005 },
		decorate: func(t *Treatment, _ VisualInput, rnd *Random) {
			t.Label = "第01期"
			t.Caption = "聚焦"
			t.Barcode = make([]bool, 15)
			for i := range t.Barcode {
				t.Barcode[i] = rnd.Float64() > 0.5
			}
		},
	},
	"bubble": {
		width: 256, height: 256,
		place: scaleIn,
		decorate: func(t *Treatment, _ VisualInput, _ *Random) {
			t.Caption = "今天"
			t.Accent = "#4ade80"
		},
	},
}

// filter parameterizes the full-frame presets.
type filter struct {
	css     string
	opacity float64
	overlay string
	caption string
	pulse   bool
}

var filters = map[string]filter{
	"dv":     {css: "contrast(1.1) sepia(0.2)", opacity: 0.85, overlay: "scanlines", caption: "录制", pulse: true},
	"ccd":    {css: "contrast(1.05) brightness(1.1) saturate(1.1)", opacity: 0.9, caption: "'08 24"},
	"y2k":    {css: "contrast(1.2) saturate(1.3)", opacity: 0.9, overlay: "gradient:#3b82f633:#ec489933"},
	"impact": {css: "grayscale(1) contrast(1.4)", opacity: 0.6, overlay: "multiply:#17171780"},
	"soft":   {css: "brightness(1.05) saturate(0.8) contrast(0.9)", opacity: 1, overlay: "screen:#ffffff1a"},
	"dark":   {css: "brightness(0.6) grayscale(0.4)", opacity: 1},
	"plain":  {opacity: 0.9},
}

// FallbackVisual is the treatment used for an unknown visual style.
const FallbackVisual = "plain"

func (f filter) eval(in VisualInput) Treatment {
	m := motionAt(in.Frame)
	t := Treatment{
		Style:        in.Style,
		Src:          in.Src,
		Template:     TemplateFilter,
		Enter:        m.enter,
		Opacity:      m.enter,
		Scale:        1,
		ImageScale:   1 + in.Frame*0.001,
		ImageOpacity: f.opacity,
		Filter:       f.css,
		Overlay:      f.overlay,
		Caption:      f.caption,
	}
	if f.pulse {
		t.Pulse = 0.6 + math.Sin(in.Frame*0.2)*0.4
	}
	return t
}

var visuals = func() map[string]VisualFunc {
	out := make(map[string]VisualFunc, len(cutouts)+len(filters))
	for name, c := range cutouts {
		out[name] = c.eval
	}
	for name, f := range filters {
		out[name] = f.eval
	}
	return out
}()

// VisualStyles lists the registered image treatments.
func VisualStyles() []string {
	return sortedKeys(visuals)
}

// CutoutStyles lists the treatments of the cut-out family.
func CutoutStyles() []string {
	var out []string
	for _, name := range VisualStyles() {
		if strings.HasPrefix(name, "cutout-") {
			out = append(out, name)
		}
	}
	return out
}

// BrollStyles lists the treatments meant for b-roll footage. The fallback
// treatment is not offered.
func BrollStyles() []string {
	var out []string
	for _, name := range VisualStyles() {
		if !strings.HasPrefix(name, "cutout-") && name != FallbackVisual {
			out = append(out, name)
		}
	}
	return out
}

func lookupVisual(style string) VisualFunc {
	if fn, ok := visuals[style]; ok {
		return fn
	}
	return visuals[FallbackVisual]
}
