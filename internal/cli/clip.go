package cli

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelkit/internal/assets"
	"reelkit/internal/edit"
	"reelkit/internal/timeline"
)

// cliPointer is the single pointer command-line gestures run on.
const cliPointer edit.PointerID = 1

var (
	dropTrack    string
	dropAt       float64
	dropDuration float64
	moveTrack    string
	clipSet      []string
	clipKeyframe []string
)

func newClipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clip",
		Short: "Edit clips on the timeline",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "split <clip-id>",
		Short: "Split a clip at the playhead given by --at",
		Args:  cobra.ExactArgs(1),
		RunE:  runClipSplit,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "duplicate <clip-id>",
		Short: "Copy a clip right after itself",
		Args:  cobra.ExactArgs(1),
		RunE:  runClipDuplicate,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <clip-id>...",
		Short: "Delete clips and the layers generated from them",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runClipDelete,
	})

	move := &cobra.Command{
		Use:   "move <clip-id> <seconds>",
		Short: "Drag a clip (and the rest of the selection) by a signed offset, snapping to edges and markers",
		Args:  cobra.ExactArgs(2),
		RunE:  runClipMove,
	}
	move.Flags().StringVar(&moveTrack, "track", "", "Drop onto this track")
	cmd.AddCommand(move)

	cmd.AddCommand(&cobra.Command{
		Use:   "trim <clip-id> <left|right> <seconds>",
		Short: "Drag an edge of a clip by a signed offset",
		Args:  cobra.ExactArgs(3),
		RunE:  runClipTrim,
	})

	drop := &cobra.Command{
		Use:   "drop <src>",
		Short: "Add a media clip from a URL or asset token",
		Args:  cobra.ExactArgs(1),
		RunE:  runClipDrop,
	}
	drop.Flags().StringVar(&dropTrack, "track", timeline.TrackBroll, "Target track")
	drop.Flags().Float64Var(&dropAt, "start", 0, "Start time in seconds")
	drop.Flags().Float64Var(&dropDuration, "duration", 0, "Clip duration (default from config)")
	cmd.AddCommand(drop)

	set := &cobra.Command{
		Use:   "set <clip-id>",
		Short: "Set clip properties, e.g. --set x=120 --keyframe opacity --at 2",
		Args:  cobra.ExactArgs(1),
		RunE:  runClipSet,
	}
	set.Flags().StringArrayVar(&clipSet, "set", nil, "key=value (x, y, width, height, scale, rotation, opacity, volume, zIndex, fontSize, color, src, name)")
	set.Flags().StringArrayVar(&clipKeyframe, "keyframe", nil, "Toggle a keyframe of this property at the playhead (x, y, scale, rotation, opacity, volume)")
	cmd.AddCommand(set)

	cmd.AddCommand(&cobra.Command{
		Use:   "select <clip-id>...",
		Short: "Replace the selection",
		Args:  cobra.ArbitraryArgs,
		RunE:  runClipSelect,
	})

	cmd.PersistentFlags().Float64Var(&playheadAt, "at", 0, "Playhead position in seconds")
	return cmd
}

var playheadAt float64

func withEditor(cmd *cobra.Command, fn func(s *session) error) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	ctx := commandContext(cmd)
	s, err := ws.edit(ctx, projectID, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	fnErr := fn(s)
	if err := s.finish(ctx); err != nil {
		return err
	}
	return fnErr
}

func runClipSplit(cmd *cobra.Command, args []string) error {
	return withEditor(cmd, func(s *session) error {
		s.SetPlayhead(playheadAt)
		id, ok := s.Split(args[0])
		if !ok {
			return fmt.Errorf("cannot split %s at %.2fs", args[0], playheadAt)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "split %s → %s\n", args[0], id)
		return nil
	})
}

func runClipDuplicate(cmd *cobra.Command, args []string) error {
	return withEditor(cmd, func(s *session) error {
		id, ok := s.Duplicate(args[0])
		if !ok {
			return fmt.Errorf("clip %s not found", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "duplicated %s → %s\n", args[0], id)
		return nil
	})
}

func runClipDelete(cmd *cobra.Command, args []string) error {
	return withEditor(cmd, func(s *session) error {
		removed := s.Delete(args...)
		if len(removed) == 0 {
			return fmt.Errorf("no clips deleted")
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", strings.Join(removed, ", "))
		return nil
	})
}

func runClipMove(cmd *cobra.Command, args []string) error {
	delta, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid offset %q", args[1])
	}
	return withEditor(cmd, func(s *session) error {
		s.SetPlayhead(playheadAt)
		return drag(s, edit.KindTimelineDrag, args[0], delta, moveTrack, cmd)
	})
}

func runClipTrim(cmd *cobra.Command, args []string) error {
	var kind edit.Kind
	switch args[1] {
	case "left":
		kind = edit.KindTrimLeft
	case "right":
		kind = edit.KindTrimRight
	default:
		return fmt.Errorf("edge must be left or right, got %q", args[1])
	}
	delta, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid offset %q", args[2])
	}
	return withEditor(cmd, func(s *session) error {
		return drag(s, kind, args[0], delta, "", cmd)
	})
}

// drag replays a timeline gesture as pointer-down, one move and pointer-up.
func drag(s *session, kind edit.Kind, clipID string, delta float64, overTrack string, cmd *cobra.Command) error {
	p := s.Project()
	c, ok := p.Clip(clipID)
	if !ok {
		return fmt.Errorf("clip %s not found", clipID)
	}
	pps := s.Config().PixelsPerSecond
	from := edit.Point{X: c.Start * pps}
	to := edit.Point{X: from.X + delta*pps}
	if !s.Begin(cliPointer, edit.Gesture{Kind: kind, ClipID: clipID, At: from}) {
		return fmt.Errorf("clip %s cannot be edited (locked track?)", clipID)
	}
	s.Move(cliPointer, to, overTrack)
	s.End(cliPointer, to, overTrack)

	after := s.Project()
	if moved, ok := after.Clip(clipID); ok {
		fmt.Fprintf(cmd.OutOrStdout(), "%s on %s: %.3f → %.3f (%.3fs)\n", clipID, moved.TrackID, moved.Start, moved.End(), moved.Duration)
	}
	return nil
}

func runClipDrop(cmd *cobra.Command, args []string) error {
	return withEditor(cmd, func(s *session) error {
		kind := timeline.TypeImage
		switch strings.ToLower(filepath.Ext(args[0])) {
		case ".mp4", ".webm", ".mov":
			kind = timeline.TypeVideo
		}
		if k, _, ok := assets.ParseToken(args[0]); ok && k == assets.KindAudio {
			kind = timeline.TypeAudio
		}
		if t, ok := s.Project().Track(dropTrack); ok && t.Type == timeline.TypeAudio {
			kind = timeline.TypeAudio
		}
		id, ok := s.Drop(edit.Drop{TrackID: dropTrack, Time: dropAt, Type: kind, Src: args[0], Duration: dropDuration})
		if !ok {
			return fmt.Errorf("cannot drop onto track %s", dropTrack)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s on %s at %.2fs\n", id, dropTrack, dropAt)
		return nil
	})
}

func runClipSet(cmd *cobra.Command, args []string) error {
	if len(clipSet) == 0 && len(clipKeyframe) == 0 {
		return fmt.Errorf("nothing to set; pass --set key=value or --keyframe property")
	}
	patch := make(map[string]string, len(clipSet))
	for _, kv := range clipSet {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q, want key=value", kv)
		}
		patch[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	var scratch timeline.Clip
	if err := applyClipPatch(&scratch, patch); err != nil {
		return err
	}
	props := make([]timeline.Property, 0, len(clipKeyframe))
	for _, name := range clipKeyframe {
		prop, ok := timeline.ParseProperty(strings.TrimSpace(name))
		if !ok {
			return fmt.Errorf("property %q cannot be keyframed", name)
		}
		props = append(props, prop)
	}

	return withEditor(cmd, func(s *session) error {
		var toggled []string
		ok := s.UpdateClip(args[0], func(c *timeline.Clip) {
			_ = applyClipPatch(c, patch)
			toggled = toggleKeyframes(c, props, playheadAt)
		})
		if !ok {
			return fmt.Errorf("clip %s not found", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", args[0])
		for _, line := range toggled {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	})
}

// toggleKeyframes flips the keyframe of each property at time, pinning the
// value the clip currently shows there.
func toggleKeyframes(c *timeline.Clip, props []timeline.Property, at float64) []string {
	out := make([]string, 0, len(props))
	for _, prop := range props {
		value := c.Animated(prop, at, timeline.DefaultValue(prop))
		if c.ToggleKeyframe(prop, at, value) {
			out = append(out, fmt.Sprintf("keyframe %s=%g at %.2fs", prop, value, at))
		} else {
			out = append(out, fmt.Sprintf("removed keyframe %s at %.2fs", prop, at))
		}
	}
	return out
}

func applyClipPatch(c *timeline.Clip, patch map[string]string) error {
	for k, v := range patch {
		switch k {
		case "color":
			c.Color = v
			continue
		case "src":
			c.Src = v
			continue
		case "name":
			c.Name = v
			continue
		case "zIndex":
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("zIndex: %w", err)
			}
			c.ZIndex = timeline.Int(n)
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", k, err)
		}
		switch k {
		case "x":
			c.X = timeline.Float(f)
		case "y":
			c.Y = timeline.Float(f)
		case "width":
			c.Width = timeline.Float(f)
		case "height":
			c.Height = timeline.Float(f)
		case "scale":
			c.Scale = timeline.Float(f)
		case "rotation":
			c.Rotation = timeline.Float(f)
		case "opacity":
			c.Opacity = timeline.Float(f)
		case "volume":
			c.Volume = timeline.Float(f)
		case "fontSize":
			c.FontSize = timeline.Float(f)
		case "start":
			c.Start = f
		case "duration":
			c.Duration = f
		default:
			return fmt.Errorf("unknown property %q", k)
		}
	}
	return nil
}

func runClipSelect(cmd *cobra.Command, args []string) error {
	return withEditor(cmd, func(s *session) error {
		s.ClearSelection()
		for _, id := range args {
			if !s.Click(id, true) {
				return fmt.Errorf("clip %s not found", id)
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "selected %d clips\n", len(args))
		return nil
	})
}
