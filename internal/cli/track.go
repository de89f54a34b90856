package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reelkit/internal/edit"
)

func newTrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Manage tracks",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add",
		Short: "Append a text track",
		RunE:  runTrackAdd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <track-id> <mute|hide|lock>",
		Short: "Flip a track switch",
		Args:  cobra.ExactArgs(2),
		RunE:  runTrackToggle,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tracks",
		RunE:  runTrackList,
	})
	return cmd
}

func runTrackAdd(cmd *cobra.Command, _ []string) error {
	return withEditor(cmd, func(s *session) error {
		fmt.Fprintf(cmd.OutOrStdout(), "added track %s\n", s.AddTrack())
		return nil
	})
}

func runTrackToggle(cmd *cobra.Command, args []string) error {
	flag := edit.TrackFlag(args[1])
	switch flag {
	case edit.FlagMuted, edit.FlagHidden, edit.FlagLocked:
	default:
		return fmt.Errorf("unknown switch %q; use mute, hide or lock", args[1])
	}
	return withEditor(cmd, func(s *session) error {
		on, ok := s.ToggleTrack(args[0], flag)
		if !ok {
			return fmt.Errorf("track %s not found", args[0])
		}
		state := "off"
		if on {
			state = "on"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", args[0], flag, state)
		return nil
	})
}

func runTrackList(cmd *cobra.Command, _ []string) error {
	return withEditor(cmd, func(s *session) error {
		p := s.Project()
		if outputJSON {
			return writeJSON(cmd, p.Tracks)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tLABEL\tTYPE\tFLAGS\tCLIPS")
		for _, t := range p.Tracks {
			n := 0
			for _, c := range p.Clips {
				if c.TrackID == t.ID {
					n++
				}
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", t.ID, t.Label, t.Type, trackFlags(t), n)
		}
		return tw.Flush()
	})
}
