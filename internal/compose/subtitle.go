package compose

import (
	"math"
	"regexp"
	"strings"

	"reelkit/internal/sentiment"
)

// SubtitleInput is what a subtitle preset is a function of.
type SubtitleInput struct {
	Frame      float64
	Text       string
	Highlights []string
	Tone       sentiment.Sentiment
	Keywords   sentiment.Keywords
}

// classify colors a highlighted word with the configured lists.
func (in SubtitleInput) classify(word string) sentiment.Sentiment {
	return sentiment.ClassifyEvent(word, string(in.Tone), in.Keywords.Positive, in.Keywords.Negative)
}

// SubtitleFunc evaluates one named subtitle preset.
type SubtitleFunc func(in SubtitleInput) Subtitle

// FallbackSubtitle is the preset used for an unknown subtitle style.
const FallbackSubtitle = "plain"

var subtitles = map[string]SubtitleFunc{
	"focus":          focusSubtitle,
	"kinetic":        kineticSubtitle,
	"scrapbook":      scrapbookSubtitle,
	"bubble":         bubbleSubtitle,
	"impact":         impactSubtitle,
	"minimal":        minimalSubtitle,
	FallbackSubtitle: plainSubtitle,
}

// SubtitleStyles lists the registered subtitle presets.
func SubtitleStyles() []string {
	return sortedKeys(subtitles)
}

func lookupSubtitle(style string) SubtitleFunc {
	if fn, ok := subtitles[style]; ok {
		return fn
	}
	return subtitles[FallbackSubtitle]
}

type palette struct {
	positive, negative, neutral string
}

func (p palette) color(s sentiment.Sentiment) string {
	switch s {
	case sentiment.Positive:
		return p.positive
	case sentiment.Negative:
		return p.negative
	}
	return p.neutral
}

var (
	themeText = palette{positive: amber500, negative: rose600, neutral: indigo600}
	themeFill = palette{positive: amber500, negative: rose500, neutral: indigo500}
)

// charHighlights maps every rune of text to the highlight word covering it.
// Each word marks its first occurrence; later words win overlaps.
func charHighlights(text string, words []string) []string {
	runes := []rune(text)
	out := make([]string, len(runes))
	for _, w := range words {
		if w == "" {
			continue
		}
		byteIdx := strings.Index(text, w)
		if byteIdx < 0 {
			continue
		}
		start := len([]rune(text[:byteIdx]))
		for i, n := 0, len([]rune(w)); i < n; i++ {
			if start+i < len(out) {
				out[start+i] = w
			}
		}
	}
	return out
}

type part struct {
	text      string
	highlight bool
}

// splitHighlights cuts text around every occurrence of a highlight word.
func splitHighlights(text string, words []string) []part {
	var quoted []string
	set := make(map[string]bool)
	for _, w := range words {
		if w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
			set[w] = true
		}
	}
	if len(quoted) == 0 {
		return []part{{text: text}}
	}
	re := regexp.MustCompile(strings.Join(quoted, "|"))
	var out []part
	last := 0
	for _, m := range re.FindAllStringIndex(text, -1) {
		if m[0] > last {
			out = append(out, part{text: text[last:m[0]]})
		}
		if m[1] > m[0] {
			out = append(out, part{text: text[m[0]:m[1]], highlight: set[text[m[0]:m[1]]]})
		}
		last = m[1]
	}
	if last < len(text) {
		out = append(out, part{text: text[last:]})
	}
	return out
}

var chunkSeparators = regexp.MustCompile(`[，、]`)

func impactChunks(text string) []string {
	var out []string
	for _, c := range chunkSeparators.Split(text, -1) {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func focusSubtitle(in SubtitleInput) Subtitle {
	words := in.Highlights
	if len(words) == 0 {
		words = []string{in.Text}
	}
	units := make([]Unit, len(words))
	for i, w := range words {
		delay := float64(i) * 10
		p := progress(in.Frame, delay, 8)
		scale := 3.0
		if in.Frame > delay {
			scale = 1 + (1-p)*2
		}
		tone := in.classify(w)
		color := "#ffffff"
		if tone != sentiment.Neutral {
			color = themeText.color(tone)
		}
		units[i] = Unit{
			Text: w, Highlight: len(in.Highlights) > 0, Sentiment: tone, Progress: p,
			Opacity: p, Scale: scale, Blur: (1 - p) * 10, Color: color,
		}
	}
	return Subtitle{
		Style: "focus", Units: units, BoxOpacity: 1, BoxScale: 1,
		Caption:        in.Text,
		CaptionOpacity: clamp((in.Frame-20)/20, 0, 0.8),
	}
}

func kineticSubtitle(in SubtitleInput) Subtitle {
	parts := splitHighlights(in.Text, in.Highlights)
	units := make([]Unit, len(parts))
	for i, pt := range parts {
		p := progress(in.Frame, float64(i)*5, 10)
		u := Unit{
			Text: pt.text, Highlight: pt.highlight, Progress: p,
			Opacity: p, Scale: 1, TranslateX: (1 - p) * -50,
			Color: "#ffffffe6", Background: "#00000080",
		}
		if pt.highlight {
			u.Sentiment = in.classify(pt.text)
			u.Color = "#000000"
			if u.Sentiment != sentiment.Neutral {
				u.Color = themeText.color(u.Sentiment)
			}
			u.Background = "#ffffff"
			u.Rotation = -2
		}
		units[i] = u
	}
	return Subtitle{Style: "kinetic", Units: units, BoxOpacity: 1, BoxScale: 1}
}

func scrapbookSubtitle(in SubtitleInput) Subtitle {
	chars := []rune(in.Text)
	marks := charHighlights(in.Text, in.Highlights)
	units := make([]Unit, len(chars))
	for i, r := range chars {
		p := progress(in.Frame, float64(i)*2, 8)
		u := Unit{Text: string(r), Progress: p, Opacity: p, Scale: p, TranslateY: (1 - p) * 10, Color: "#1f2937"}
		if w := marks[i]; w != "" {
			u.Highlight = true
			u.Sentiment = in.classify(w)
			u.Scale = 1.25
			if p < 0.8 {
				u.Scale = p * 1.4
			}
			u.TranslateY = (1 - p) * 2
			u.Color = themeText.color(u.Sentiment)
			u.Background = themeFill.color(u.Sentiment)
			u.Underline = p > 0.8
		}
		units[i] = u
	}
	s := Subtitle{Style: "scrapbook", Units: units, BoxOpacity: 1, BoxScale: 1}
	if in.Frame < 5 {
		s.BoxOpacity = 0
		s.BoxTranslateY = 32
		s.BoxRotation = 1
	}
	return s
}

var bubbleEase = cubicBezier(0.34, 1.56, 0.64, 1)

func bubbleSubtitle(in SubtitleInput) Subtitle {
	bp := bubbleEase(clamp01((in.Frame - 5) / 15))
	chars := []rune(in.Text)
	marks := charHighlights(in.Text, in.Highlights)
	units := make([]Unit, len(chars))
	for i, r := range chars {
		u := Unit{Text: string(r), Progress: 1, Opacity: 1, Scale: 1, Color: "#1f2937"}
		if w := marks[i]; w != "" {
			u.Highlight = true
			u.Sentiment = in.classify(w)
			u.Color = palette{positive: amber500, negative: rose500, neutral: indigo500}.color(u.Sentiment)
		}
		units[i] = u
	}
	return Subtitle{
		Style: "bubble", Units: units,
		BoxOpacity:    clamp01(bp),
		BoxScale:      lerp(0.5, 1, bp),
		BoxTranslateY: lerp(80, 0, bp),
		Caption:       "新消息",
	}
}

func impactSubtitle(in SubtitleInput) Subtitle {
	chunks := impactChunks(in.Text)
	units := make([]Unit, len(chunks))
	for i, c := range chunks {
		p := progress(in.Frame, float64(i)*5, 10)
		u := Unit{Text: c, Progress: p, Opacity: p, Scale: 1, TranslateY: (1 - p) * 40, Color: "#000000", Background: "#ffffff"}
		for _, w := range in.Highlights {
			if w != "" && strings.Contains(c, w) {
				u.Highlight = true
				u.Sentiment = in.classify(w)
				u.Rotation = -2
				u.Color = "#ffffff"
				u.Background = palette{positive: amber500, negative: rose500, neutral: "#000000"}.color(u.Sentiment)
				break
			}
		}
		units[i] = u
	}
	return Subtitle{
		Style: "impact", Units: units, BoxOpacity: 1, BoxScale: 1,
		Banner: &Banner{
			Text:    "高能预警 /// 重点关注 /// 高能预警 /// 重点关注 ///",
			ScaleX:  clamp01(in.Frame / 5),
			OffsetX: -math.Mod(in.Frame*2, 400),
		},
	}
}

func minimalSubtitle(in SubtitleInput) Subtitle {
	chars := []rune(in.Text)
	marks := charHighlights(in.Text, in.Highlights)
	units := make([]Unit, len(chars))
	for i, r := range chars {
		p := progress(in.Frame, float64(i), 10)
		u := Unit{Text: string(r), Progress: p, Opacity: p, Scale: 1, Color: "#f3f4f6"}
		if w := marks[i]; w != "" {
			u.Highlight = true
			u.Sentiment = in.classify(w)
			u.Color = palette{positive: amber400, negative: rose400, neutral: "#ffffff"}.color(u.Sentiment)
		}
		units[i] = u
	}
	return Subtitle{Style: "minimal", Units: units, BoxOpacity: 1, BoxScale: 1}
}

func plainSubtitle(in SubtitleInput) Subtitle {
	return Subtitle{
		Style:      FallbackSubtitle,
		Units:      []Unit{{Text: in.Text, Progress: 1, Opacity: 1, Scale: 1, Color: "#ffffff"}},
		BoxOpacity: 1,
		BoxScale:   1,
	}
}
