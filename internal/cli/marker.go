package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	markerLabel string
	markerColor string
)

func newMarkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "marker",
		Short: "Manage timeline markers",
	}

	add := &cobra.Command{
		Use:   "add <seconds>",
		Short: "Add a marker",
		Args:  cobra.ExactArgs(1),
		RunE:  runMarkerAdd,
	}
	add.Flags().StringVar(&markerLabel, "label", "", "Marker label")
	add.Flags().StringVar(&markerColor, "color", "", "Marker color")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <marker-id>",
		Short: "Delete a marker",
		Args:  cobra.ExactArgs(1),
		RunE:  runMarkerDelete,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List markers",
		RunE:  runMarkerList,
	})
	return cmd
}

func runMarkerAdd(cmd *cobra.Command, args []string) error {
	at, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid time %q", args[0])
	}
	return withEditor(cmd, func(s *session) error {
		id := s.AddMarker(at, markerLabel, markerColor)
		m, _ := s.Project().Marker(id)
		fmt.Fprintf(cmd.OutOrStdout(), "added marker %s at %.2fs\n", id, m.Time)
		return nil
	})
}

func runMarkerDelete(cmd *cobra.Command, args []string) error {
	return withEditor(cmd, func(s *session) error {
		if !s.DeleteMarker(args[0]) {
			return fmt.Errorf("marker %s not found", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted marker %s\n", args[0])
		return nil
	})
}

func runMarkerList(cmd *cobra.Command, _ []string) error {
	return withEditor(cmd, func(s *session) error {
		markers := s.Project().Markers
		if outputJSON {
			return writeJSON(cmd, markers)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTIME\tLABEL\tCOLOR")
		for _, m := range markers {
			fmt.Fprintf(tw, "%s\t%.2f\t%s\t%s\n", m.ID, m.Time, nonEmptyOrDash(m.Label), nonEmptyOrDash(m.Color))
		}
		return tw.Flush()
	})
}
