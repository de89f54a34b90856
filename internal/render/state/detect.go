package state

import (
	"os"
)

const (
	ActionRender = "render"
	ActionSkip   = "skip"

	ReasonForced          = "forced"
	ReasonNew             = "new project"
	ReasonRendererChanged = "renderer changed"
	ReasonPropsChanged    = "props changed"
	ReasonOutputMissing   = "output missing"
	ReasonUpToDate        = "up to date"
)

// Decision describes what to do for a render request.
type Decision struct {
	Action string
	Reason string
	Prior  Record
}

// Detect compares the current props hash of a project against its stored
// record.
func Detect(rs *RenderState, projectID, propsHash, rendererHash string, force bool) Decision {
	if force {
		return Decision{Action: ActionRender, Reason: ReasonForced}
	}
	if rs.RendererHash != rendererHash {
		return Decision{Action: ActionRender, Reason: ReasonRendererChanged}
	}
	prior, exists := rs.Renders[projectID]
	if !exists {
		return Decision{Action: ActionRender, Reason: ReasonNew}
	}
	if prior.PropsHash != propsHash {
		return Decision{Action: ActionRender, Reason: ReasonPropsChanged, Prior: prior}
	}
	if prior.OutputPath != "" {
		if _, err := os.Stat(prior.OutputPath); os.IsNotExist(err) {
			return Decision{Action: ActionRender, Reason: ReasonOutputMissing, Prior: prior}
		}
	}
	return Decision{Action: ActionSkip, Reason: ReasonUpToDate, Prior: prior}
}

// Prune removes records of projects that no longer exist.
func Prune(rs *RenderState, current map[string]bool) {
	for id := range rs.Renders {
		if !current[id] {
			delete(rs.Renders, id)
		}
	}
}
