package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Hash returns a deterministic hash of v's JSON encoding. Struct fields
// encode in declaration order and map keys sorted, so equal values hash
// equally.
func Hash(v any) string {
	return hashJSON(v)
}

func hashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("sha256:error-%v", err)
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("sha256:%x", sum)
}
