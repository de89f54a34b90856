package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reelkit/internal/compose"
)

var frameAt float64

func newFrameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Print the layer stack of the project at one instant",
		RunE:  runFrame,
	}
	cmd.Flags().Float64VarP(&frameAt, "time", "t", 0, "Time in seconds")
	return cmd
}

func runFrame(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	p, err := ws.loadProject(commandContext(cmd), projectID, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	frame := compose.Composite(p, frameAt, compose.EnvFor(p, ws.resolver))
	if outputJSON {
		return writeJSON(cmd, frame)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "t=%.3fs  %dx%d  %d layers\n", frame.Time, frame.Width, frame.Height, len(frame.Layers))
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "Z\tKIND\tTRACK\tCLIP\tOPACITY\tDETAIL")
	for _, l := range frame.Layers {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.2f\t%s\n", l.Z, l.Kind, l.TrackID, l.ClipID, l.Opacity, layerDetail(l))
	}
	for _, l := range frame.Audio {
		fmt.Fprintf(tw, "-\t%s\t%s\t%s\t-\tvolume %.2f\n", l.Kind, l.TrackID, l.ClipID, l.Volume)
	}
	tw.Flush()
	for _, id := range frame.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", id)
	}
	return nil
}

func layerDetail(l compose.Layer) string {
	switch {
	case l.Subtitle != nil:
		text := ""
		for _, u := range l.Subtitle.Units {
			text += u.Text
		}
		return l.Subtitle.Style + ": " + truncateWithEllipsis(text, 40)
	case l.Pattern != nil:
		return l.Pattern.Style
	case l.Treatment != nil:
		return l.Treatment.Style
	case l.Text != "":
		return truncateWithEllipsis(l.Text, 40)
	}
	return truncateWithEllipsis(l.Src, 40)
}
