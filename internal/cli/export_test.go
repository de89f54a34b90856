package cli

import (
	"errors"
	"testing"

	"reelkit/internal/render"
)

func TestSummarizeExport(t *testing.T) {
	results := []render.FrameResult{
		{Index: 0},
		{Index: 1, Skipped: true},
		{Index: 2, Err: errors.New("disk full")},
		{Index: 3},
	}
	s := summarizeExport(results)
	if s.Frames != 4 || s.Written != 2 || s.Skipped != 1 || s.Failed != 1 {
		t.Fatalf("summary = %+v", s)
	}
	if len(s.Errors) != 1 || s.Errors[0] != "disk full" {
		t.Fatalf("errors = %v", s.Errors)
	}
}
