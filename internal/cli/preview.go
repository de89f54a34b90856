package cli

import (
	"github.com/spf13/cobra"

	"reelkit/internal/compose"
	"reelkit/internal/tui"
)

func newPreviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview",
		Short: "Play the project in the terminal",
		RunE:  runPreview,
	}
}

func runPreview(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	p, err := ws.loadProject(commandContext(cmd), projectID, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	model := tui.NewPreviewModel(p, compose.EnvFor(p, ws.resolver), ws.cfg.Editor.PreviewFPS)
	ws.log.Info("preview started", "project", p.ID, "fps", ws.cfg.Editor.PreviewFPS)
	return tui.RunPreview(cmd.InOrStdin(), cmd.OutOrStdout(), model)
}
