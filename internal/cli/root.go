package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	projectDir string
	projectID  string
	outputJSON bool
	logLevel   string
)

// DefaultProjectID names the project commands act on without --id.
const DefaultProjectID = "main"

// Execute runs the root cobra command.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reelkit",
		Short:         "Script-driven short video editor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&projectDir, "project", "", "Path to project directory")
	cmd.PersistentFlags().StringVar(&projectID, "id", DefaultProjectID, "Project id inside the directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level written to logs/ (debug, info, warn, error)")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newProjectCmd())
	cmd.AddCommand(newScriptCmd())
	cmd.AddCommand(newClipCmd())
	cmd.AddCommand(newMarkerCmd())
	cmd.AddCommand(newTrackCmd())
	cmd.AddCommand(newAssetsCmd())
	cmd.AddCommand(newFrameCmd())
	cmd.AddCommand(newPreviewCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
