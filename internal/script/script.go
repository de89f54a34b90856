// Package script turns pasted script text or SRT subtitles into timed text
// clips and the generated layer clips that accompany every line.
package script

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"reelkit/internal/sentiment"
	"reelkit/internal/timeline"
)

// Event values carried by parsed lines.
const (
	EventNormal   = "normal"
	EventPositive = "positive"
	EventNegative = "negative"
)

// Line is one parsed script entry.
type Line struct {
	Text       string
	Start      float64
	Duration   float64
	Highlights []string
	Event      string
	SRT        bool
}

// Sentiment maps the line event onto a clip sentiment tag.
func (l Line) Sentiment() sentiment.Sentiment {
	switch l.Event {
	case EventPositive:
		return sentiment.Positive
	case EventNegative:
		return sentiment.Negative
	}
	return sentiment.Neutral
}

var (
	srtPattern       = regexp.MustCompile(`(\d+)\s*\n(\d{2}:\d{2}:\d{2}[,.]\d{3})\s*-->\s*(\d{2}:\d{2}:\d{2}[,.]\d{3})\s*\n([\s\S]*?)(?:\n\s*\n|\s*$)`)
	highlightPattern = regexp.MustCompile(`\s*\[(.*?)\]\s*`)
)

// Parse reads SRT blocks when the text contains any, otherwise one line per
// non-blank row with a reading-speed duration.
func Parse(text string, keywords sentiment.Keywords) []Line {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if matches := srtPattern.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		lines := make([]Line, 0, len(matches))
		for _, m := range matches {
			start := math.Max(0, parseTimestamp(m[2]))
			end := math.Max(start, parseTimestamp(m[3]))
			raw := strings.TrimSpace(m[4])
			clean, highlights := extractHighlights(raw)
			lines = append(lines, Line{
				Text:       strings.ReplaceAll(clean, "\n", " "),
				Start:      start,
				Duration:   math.Max(0.5, end-start),
				Highlights: highlights,
				Event:      classifyEvent(raw, keywords),
				SRT:        true,
			})
		}
		return lines
	}

	var (
		lines  []Line
		cursor float64
	)
	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		clean, highlights := extractHighlights(raw)
		duration := ReadingDuration(raw)
		lines = append(lines, Line{
			Text:       clean,
			Start:      cursor,
			Duration:   duration,
			Highlights: highlights,
			Event:      classifyEvent(raw, keywords),
		})
		cursor += duration
	}
	return lines
}

// ReadingDuration estimates how long a plain line stays on screen: six
// frames per character with a forty frame floor plus a twenty frame tail, at
// the base frame rate.
func ReadingDuration(raw string) float64 {
	frames := math.Max(40, float64(utf8.RuneCountInString(raw))*6)
	return (frames + 20) / timeline.DefaultFPS
}

func extractHighlights(raw string) (string, []string) {
	var highlights []string
	clean := highlightPattern.ReplaceAllStringFunc(raw, func(m string) string {
		word := highlightPattern.FindStringSubmatch(m)[1]
		highlights = append(highlights, word)
		return word
	})
	return clean, highlights
}

func classifyEvent(raw string, keywords sentiment.Keywords) string {
	switch keywords.Classify(raw) {
	case sentiment.Negative:
		return EventNegative
	case sentiment.Positive:
		return EventPositive
	}
	return EventNormal
}

// parseTimestamp converts HH:MM:SS,mmm (or with a dot) to seconds.
func parseTimestamp(ts string) float64 {
	ts = strings.Replace(ts, ",", ".", 1)
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	s, err3 := strconv.ParseFloat(parts[2], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0
	}
	return float64(h)*3600 + float64(m)*60 + s
}
