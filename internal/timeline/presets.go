package timeline

import "sort"

// Resolution is an output frame size in pixels.
type Resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultExportPreset is used when a project names no preset.
const DefaultExportPreset = "2k"

var exportPresets = map[string]Resolution{
	"1080p": {Width: 1080, Height: 1920},
	"2k":    {Width: 1440, Height: 2560},
	"4k":    {Width: 2160, Height: 3840},
}

// ExportPreset resolves a preset id to its output size.
func ExportPreset(id string) (Resolution, bool) {
	r, ok := exportPresets[id]
	return r, ok
}

// ExportPresetIDs lists the preset ids from smallest to largest.
func ExportPresetIDs() []string {
	ids := make([]string, 0, len(exportPresets))
	for id := range exportPresets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return exportPresets[ids[i]].Width < exportPresets[ids[j]].Width
	})
	return ids
}

// EvenDimension clamps v to at least 16 and rounds it to an even number, as
// encoders require.
func EvenDimension(v int) int {
	if v < 16 {
		v = 16
	}
	if v%2 != 0 {
		v++
	}
	return v
}
