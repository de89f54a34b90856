// Package assets stores user-uploaded media and resolves the opaque local
// tokens clips refer to it by.
package assets

import "strings"

// Kind is the media family of an asset.
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

// Token schemes of local assets.
const (
	ImageScheme = "localimage://"
	AudioScheme = "localaudio://"
)

// Token returns the clip source referring to asset id.
func Token(kind Kind, id string) string {
	if kind == KindAudio {
		return AudioScheme + id
	}
	return ImageScheme + id
}

// ParseToken splits a local token. ok is false for anything else,
// including remote URLs.
func ParseToken(src string) (Kind, string, bool) {
	switch {
	case strings.HasPrefix(src, ImageScheme):
		id := strings.TrimPrefix(src, ImageScheme)
		return KindImage, id, id != ""
	case strings.HasPrefix(src, AudioScheme):
		id := strings.TrimPrefix(src, AudioScheme)
		return KindAudio, id, id != ""
	}
	return "", "", false
}

// IsToken reports whether src uses a local scheme.
func IsToken(src string) bool {
	return strings.HasPrefix(src, ImageScheme) || strings.HasPrefix(src, AudioScheme)
}
