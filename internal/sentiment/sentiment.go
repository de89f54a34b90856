// Package sentiment classifies script fragments against configurable keyword
// lists.
package sentiment

import (
	"regexp"
	"sort"
	"strings"
)

// Sentiment tags the emotional tone of a word or line.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"

	// Extended tags used by a few presets for accent selection.
	Worry Sentiment = "worry"
	Rich  Sentiment = "rich"
	Intro Sentiment = "intro"
)

// Valid reports whether s is one of the known tags.
func (s Sentiment) Valid() bool {
	switch s {
	case Positive, Negative, Neutral, Worry, Rich, Intro:
		return true
	}
	return false
}

// Emphasis folds the extended tags onto the three base tones.
func (s Sentiment) Emphasis() Sentiment {
	switch s {
	case Negative, Worry:
		return Negative
	case Positive, Rich, Intro:
		return Positive
	}
	return Neutral
}

// Classify checks word against the negative list first, then the positive
// list. Matching is case-sensitive substring containment.
func Classify(word string, positive, negative []string) Sentiment {
	if word == "" {
		return Neutral
	}
	if containsAny(word, negative) {
		return Negative
	}
	if containsAny(word, positive) {
		return Positive
	}
	return Neutral
}

// ClassifyEvent is Classify, except that an otherwise neutral non-empty
// word of an intro line reads as positive.
func ClassifyEvent(word, event string, positive, negative []string) Sentiment {
	s := Classify(word, positive, negative)
	if s == Neutral && word != "" && event == string(Intro) {
		return Positive
	}
	return s
}

func containsAny(word string, keywords []string) bool {
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if strings.Contains(word, k) {
			return true
		}
	}
	return false
}

var bracketPattern = regexp.MustCompile(`\[(.*?)\]`)

// Highlights returns the bracketed words of text in order of appearance.
func Highlights(text string) []string {
	matches := bracketPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if m[1] != "" {
			out = append(out, m[1])
		}
	}
	return out
}

// StripBrackets removes highlight markers, keeping the enclosed text.
func StripBrackets(text string) string {
	return strings.NewReplacer("[", "", "]", "").Replace(text)
}

// AutoTag wraps every keyword occurrence of text in brackets, longest keyword
// first. Text that already carries markers is returned unchanged.
func AutoTag(text string, keywords []string) string {
	if strings.ContainsAny(text, "[]") {
		return text
	}
	sorted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if strings.TrimSpace(k) != "" {
			sorted = append(sorted, k)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return len([]rune(sorted[i])) > len([]rune(sorted[j]))
	})

	runes := []rune(text)
	taken := make([]bool, len(runes))
	type span struct{ start, end int }
	var spans []span
	for _, k := range sorted {
		kr := []rune(k)
		for i := 0; i+len(kr) <= len(runes); i++ {
			if string(runes[i:i+len(kr)]) != k || anyTaken(taken[i:i+len(kr)]) {
				continue
			}
			for j := i; j < i+len(kr); j++ {
				taken[j] = true
			}
			spans = append(spans, span{i, i + len(kr)})
			i += len(kr) - 1
		}
	}
	if len(spans) == 0 {
		return text
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var b strings.Builder
	last := 0
	for _, s := range spans {
		b.WriteString(string(runes[last:s.start]))
		b.WriteByte('[')
		b.WriteString(string(runes[s.start:s.end]))
		b.WriteByte(']')
		last = s.end
	}
	b.WriteString(string(runes[last:]))
	return b.String()
}

func anyTaken(flags []bool) bool {
	for _, f := range flags {
		if f {
			return true
		}
	}
	return false
}
