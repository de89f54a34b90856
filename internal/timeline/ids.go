package timeline

import "github.com/google/uuid"

// NewID returns a fresh identifier with a readable prefix. Identifiers are
// never reused.
func NewID(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "_" + uuid.NewString()
}
