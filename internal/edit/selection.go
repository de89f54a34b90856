package edit

import "slices"

// Selection is an ordered set of clip ids.
type Selection []string

// Click applies a pointer click on id. A plain click replaces the selection
// with id; a modifier click toggles membership.
func (s Selection) Click(id string, modifier bool) Selection {
	if !modifier {
		return Selection{id}
	}
	if i := slices.Index(s, id); i >= 0 {
		return slices.Delete(slices.Clone(s), i, i+1)
	}
	return append(slices.Clone(s), id)
}

// Has reports membership.
func (s Selection) Has(id string) bool {
	return slices.Contains(s, id)
}
