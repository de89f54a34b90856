package cli

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"reelkit/internal/compose"
	"reelkit/internal/playback"
	"reelkit/internal/render"
	"reelkit/internal/tui"
)

var (
	exportConcurrency int
	exportFPS         int
	exportForce       bool
	exportNoProgress  bool
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Evaluate every frame of the project into JSON frame documents",
		RunE:  runExport,
	}
	cmd.Flags().IntVar(&exportConcurrency, "concurrency", 0, "Frames evaluated in parallel (default from config)")
	cmd.Flags().IntVar(&exportFPS, "fps", 0, "Frame rate (default from config)")
	cmd.Flags().BoolVar(&exportForce, "force", false, "Re-evaluate every frame even when the inputs are unchanged")
	cmd.Flags().BoolVar(&exportNoProgress, "no-progress", false, "Disable interactive progress output")
	return cmd
}

type exportSummary struct {
	Project string   `json:"project"`
	Dir     string   `json:"dir"`
	FPS     int      `json:"fps"`
	Frames  int      `json:"frames"`
	Written int      `json:"written"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

func summarizeExport(results []render.FrameResult) exportSummary {
	var s exportSummary
	s.Frames = len(results)
	for _, r := range results {
		switch {
		case r.Err != nil:
			s.Failed++
			s.Errors = append(s.Errors, r.Err.Error())
		case r.Skipped:
			s.Skipped++
		default:
			s.Written++
		}
	}
	return s
}

func runExport(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx := commandContext(cmd)
	p, err := ws.loadProject(ctx, projectID, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	fps := exportFPS
	if fps <= 0 {
		fps = ws.cfg.Export.FPS
	}
	concurrency := exportConcurrency
	if concurrency <= 0 {
		concurrency = ws.cfg.Export.Concurrency
	}
	exporter := &render.Exporter{
		Env:    compose.EnvFor(p, ws.resolver),
		OutDir: ws.pp.ProjectFramesDir(p.ID),
	}
	opts := render.ExportOptions{Concurrency: concurrency, FPS: fps, Force: exportForce}
	frames := playback.FrameCount(p.TotalDuration(), fps)
	ws.log.Info("export starting", "project", p.ID, "fps", fps, "frames", frames, "dir", exporter.OutDir)

	out := cmd.OutOrStdout()
	var (
		results []render.FrameResult
		runErr  error
	)
	if tui.DetectMode(out, exportNoProgress, outputJSON) == tui.ModeTUI && frames > 0 {
		model := tui.NewProgressModel(fmt.Sprintf("Exporting %s @ %d fps", p.ID, fps), tui.ExportColumns).WithVerb("Exporting")
		tui.ExportRows(&model, fps, frames)
		err := tui.RunWithWork(out, model, func(send func(tea.Msg)) {
			opts.Reporter = tui.NewExportReporter(send, fps, frames)
			results, runErr = exporter.Export(ctx, p, opts)
		})
		if err != nil {
			return err
		}
	} else {
		results, runErr = exporter.Export(ctx, p, opts)
	}

	summary := summarizeExport(results)
	summary.Project, summary.Dir, summary.FPS = p.ID, exporter.OutDir, fps
	ws.log.Info("export finished", "project", p.ID, "written", summary.Written, "skipped", summary.Skipped, "failed", summary.Failed)

	if outputJSON {
		if err := writeJSON(cmd, summary); err != nil {
			return err
		}
	} else {
		writeExportSummary(out, cmd.ErrOrStderr(), summary)
	}
	if runErr != nil {
		return runErr
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d frame(s) failed", summary.Failed)
	}
	return nil
}

func writeExportSummary(out, errOut io.Writer, s exportSummary) {
	for _, e := range s.Errors {
		fmt.Fprintf(errOut, "frame failed: %s\n", e)
	}
	fmt.Fprintf(out, "exported %s: %d written, %d skipped, %d failed → %s\n", s.Project, s.Written, s.Skipped, s.Failed, s.Dir)
}
