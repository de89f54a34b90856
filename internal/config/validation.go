package config

import (
	"fmt"
	"os"
	"slices"

	"reelkit/internal/timeline"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

// KnownStyles lists the preset names the compositor understands.
type KnownStyles struct {
	Subtitle []string
	Visual   []string
	Motion   []string
}

// ValidateStrict runs all strict validations against the config and returns
// structured results.
func (c Config) ValidateStrict(projectRoot string, known KnownStyles) []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateKeywordFiles(projectRoot)...)
	results = append(results, c.validateStyles(known)...)
	results = append(results, c.validateRender()...)
	results = append(results, c.validateVideo()...)
	return results
}

func (c Config) validateKeywordFiles(projectRoot string) []ValidationResult {
	var results []ValidationResult
	for _, path := range c.Keywords.Files {
		if _, err := os.Stat(resolveExternalPath(projectRoot, path)); err != nil {
			results = append(results, ValidationResult{
				Level:   "error",
				Message: fmt.Sprintf("keyword file %q not found", path),
			})
		}
	}
	return results
}

func (c Config) validateStyles(known KnownStyles) []ValidationResult {
	var results []ValidationResult
	check := func(field, value string, names []string) {
		if len(names) == 0 || slices.Contains(names, value) {
			return
		}
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: fmt.Sprintf("styles.%s %q is not a known preset; the fallback is used", field, value),
		})
	}
	check("subtitle", c.Styles.Subtitle, known.Subtitle)
	check("cutout", c.Styles.Cutout, known.Visual)
	check("broll", c.Styles.Broll, known.Visual)
	check("motion", c.Styles.Motion, known.Motion)
	return results
}

func (c Config) validateRender() []ValidationResult {
	var results []ValidationResult
	if c.Render.Command == "" && c.Render.Endpoint == "" {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: "no render command or endpoint configured; render requests will fail",
		})
	}
	if c.Render.GCSBucket != "" && c.Render.Endpoint != "" {
		results = append(results, ValidationResult{
			Level:   "warning",
			Message: "render.gcs_bucket only applies to command renders",
		})
	}
	return results
}

func (c Config) validateVideo() []ValidationResult {
	var results []ValidationResult
	if c.Video.Width != timeline.BaseWidth || c.Video.Height != timeline.BaseHeight {
		results = append(results, ValidationResult{
			Level: "warning",
			Message: fmt.Sprintf("video size %dx%d differs from the %dx%d layout space presets are designed for",
				c.Video.Width, c.Video.Height, timeline.BaseWidth, timeline.BaseHeight),
		})
	}
	if _, ok := timeline.ExportPreset(c.Export.Preset); !ok {
		results = append(results, ValidationResult{
			Level:   "error",
			Message: fmt.Sprintf("export.preset %q is not one of %v", c.Export.Preset, timeline.ExportPresetIDs()),
		})
	}
	return results
}
