package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"reelkit/internal/render/state"
	"reelkit/internal/store"
	"reelkit/internal/timeline"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage the projects stored in this directory",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored projects",
		RunE:  runProjectList,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "new [id]",
		Short: "Create an empty project",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProjectNew,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE:  runProjectDelete,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "inspect",
		Short: "Summarize the tracks, clips and markers of a project",
		RunE:  runProjectInspect,
	})
	return cmd
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	list, err := ws.projects.List(commandContext(cmd))
	if err != nil {
		return err
	}
	if outputJSON {
		if list == nil {
			list = []store.Summary{}
		}
		return writeJSON(cmd, list)
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no projects; run `reelkit project new`")
		return nil
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSAVED")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.ID, nonEmptyOrDash(s.Name), humanize.Time(s.SavedAt))
	}
	return tw.Flush()
}

func runProjectNew(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	id := projectID
	if len(args) > 0 {
		id = args[0]
	}
	ctx := commandContext(cmd)
	if _, _, err := ws.projects.Load(ctx, id); err == nil {
		return fmt.Errorf("project %q already exists", id)
	}
	p := ws.cfg.NewProject(id)
	if err := ws.projects.Save(ctx, p.ID, p); err != nil {
		return err
	}
	ws.log.Info("project created", "project", p.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "created project %s\n", p.ID)
	return nil
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx := commandContext(cmd)
	if err := ws.projects.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("delete project %s: %w", args[0], err)
	}
	ws.log.Info("project deleted", "project", args[0])
	if err := pruneRenderState(ctx, ws); err != nil {
		ws.log.Warn("prune render state", "error", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted project %s\n", args[0])
	return nil
}

// pruneRenderState drops cached render records of projects that no longer
// exist.
func pruneRenderState(ctx context.Context, ws *workspace) error {
	list, err := ws.projects.List(ctx)
	if err != nil {
		return err
	}
	current := make(map[string]bool, len(list))
	for _, s := range list {
		current[s.ID] = true
	}
	rs, err := state.Load(ws.pp.RenderStateFile)
	if err != nil {
		return err
	}
	state.Prune(rs, current)
	return rs.Save(ws.pp.RenderStateFile)
}

type inspectOutput struct {
	ID       string            `json:"id"`
	Name     string            `json:"name,omitempty"`
	Duration float64           `json:"duration"`
	Size     string            `json:"size"`
	FPS      int               `json:"fps"`
	Preset   string            `json:"exportPreset"`
	Tracks   []inspectTrack    `json:"tracks"`
	Markers  []timeline.Marker `json:"markers"`
}

type inspectTrack struct {
	timeline.Track
	Clips []inspectClip `json:"clips"`
}

type inspectClip struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Parent   string  `json:"parentId,omitempty"`
	Src      string  `json:"src"`
}

func buildInspect(p *timeline.Project) inspectOutput {
	out := inspectOutput{
		ID:       p.ID,
		Name:     p.Name,
		Duration: p.TotalDuration(),
		Size:     fmt.Sprintf("%dx%d", p.Width, p.Height),
		FPS:      p.FPS,
		Preset:   p.ExportPreset,
		Markers:  p.Markers,
	}
	for _, t := range p.Tracks {
		it := inspectTrack{Track: t, Clips: []inspectClip{}}
		for _, c := range p.Clips {
			if c.TrackID != t.ID {
				continue
			}
			it.Clips = append(it.Clips, inspectClip{
				ID: c.ID, Type: string(c.Type), Start: c.Start, Duration: c.Duration, Parent: c.ParentID, Src: c.Src,
			})
		}
		out.Tracks = append(out.Tracks, it)
	}
	return out
}

func runProjectInspect(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	p, err := ws.loadProject(commandContext(cmd), projectID, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	summary := buildInspect(p)
	if outputJSON {
		return writeJSON(cmd, summary)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Project: %s  %s @ %d fps  %s  preset %s\n",
		summary.ID, summary.Size, summary.FPS, formatSeconds(summary.Duration), summary.Preset)
	tw := tabwriter.NewWriter(w, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "TRACK\tFLAGS\tCLIP\tSTART\tEND\tSRC")
	for _, t := range summary.Tracks {
		flags := trackFlags(t.Track)
		if len(t.Clips) == 0 {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\n", t.ID, flags)
			continue
		}
		for _, c := range t.Clips {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%.2f\t%s\n", t.ID, flags, c.ID, c.Start, c.Start+c.Duration, truncateWithEllipsis(c.Src, 32))
		}
	}
	tw.Flush()
	for _, m := range summary.Markers {
		fmt.Fprintf(w, "marker %s at %.2f %s\n", m.ID, m.Time, m.Label)
	}
	return nil
}

func trackFlags(t timeline.Track) string {
	flags := []byte("---")
	if t.IsMuted {
		flags[0] = 'M'
	}
	if t.IsHidden {
		flags[1] = 'H'
	}
	if t.IsLocked {
		flags[2] = 'L'
	}
	return string(flags)
}

func formatSeconds(s float64) string {
	return (time.Duration(s * float64(time.Second))).Round(10 * time.Millisecond).String()
}

func writeJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
