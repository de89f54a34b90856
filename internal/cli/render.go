package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"reelkit/internal/render"
	"reelkit/internal/tui"
)

var (
	renderForce      bool
	renderNoProgress bool
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Send the project to the configured renderer and print the video URL",
		RunE:  runRender,
	}
	cmd.Flags().BoolVar(&renderForce, "force", false, "Render even if the project is unchanged since the last render")
	cmd.Flags().BoolVar(&renderNoProgress, "no-progress", false, "Disable the status spinner")
	return cmd
}

func runRender(cmd *cobra.Command, _ []string) error {
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
	out := cmd.OutOrStdout()
	interactive := tui.DetectMode(out, renderNoProgress, outputJSON) == tui.ModeTUI
	var rendererLog io.Writer
	if !interactive {
		rendererLog = cmd.ErrOrStderr()
	}
	renderer, closeRenderer, err := ws.renderer(ctx, rendererLog)
	if err != nil {
		return err
	}
	defer closeRenderer()

	props, dropped := render.BuildProps(p, ws.resolver)
	for _, id := range dropped {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: clip %s has no asset data and renders empty\n", id)
	}

	sess := render.NewSession(renderer, render.SessionOptions{
		ProjectID:    p.ID,
		Timeout:      ws.cfg.Render.Timeout,
		StatePath:    ws.pp.RenderStateFile,
		RendererHash: ws.rendererHash(),
		Logger:       ws.log,
	})

	var status *tui.StatusWriter
	if interactive {
		status = tui.NewStatusWriter(out, fmt.Sprintf("rendering %s (%d frames at %dx%d)", p.ID, props.DurationInFrames, props.Width, props.Height))
	}
	st, err := sess.Run(ctx, render.NewRequest(props), renderForce)
	if status != nil {
		if st.Status == render.StatusDone {
			status.Finish("rendered " + p.ID)
		} else {
			status.Stop()
		}
	}
	if err != nil {
		return err
	}

	if outputJSON {
		return writeJSON(cmd, st)
	}
	if st.Status == render.StatusError {
		return fmt.Errorf("render failed: %s", st.Error)
	}
	if st.Reason != "" {
		fmt.Fprintf(out, "%s (%s)\n", st.URL, st.Reason)
		return nil
	}
	fmt.Fprintln(out, st.URL)
	return nil
}
