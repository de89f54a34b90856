package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelkit/internal/script"
)

var (
	scriptFile   string
	scriptText   string
	shuffleRoles []string
	shuffleSeed  uint64
)

func newScriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script",
		Short: "Regenerate the text lines and their layers from a script",
		Long: "Replaces every script-generated clip of the project with clips built from\n" +
			"the script. Plain text gets one line per row; SRT keeps its timings.\n" +
			"Manually added clips are kept.",
		RunE: runScript,
	}
	cmd.Flags().StringVarP(&scriptFile, "file", "f", "", "Script file (plain text or SRT); - reads stdin")
	cmd.Flags().StringVar(&scriptText, "text", "", "Script text")

	style := &cobra.Command{
		Use:   "style <line-id> <background|cutout|broll|text> <preset>",
		Short: "Set the preset of one generated layer of a line",
		Args:  cobra.ExactArgs(3),
		RunE:  runScriptStyle,
	}
	cmd.AddCommand(style)

	shuffle := &cobra.Command{
		Use:   "shuffle [clip-id]",
		Short: "Pick random presets for every line, or for the line of one clip",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScriptShuffle,
	}
	shuffle.Flags().StringSliceVar(&shuffleRoles, "role", nil, "Only shuffle these layers (background, cutout, broll, text)")
	shuffle.Flags().Uint64Var(&shuffleSeed, "seed", 0, "Random seed; 0 picks one from the clock")
	cmd.AddCommand(shuffle)
	return cmd
}

func readScript(in io.Reader) (string, error) {
	switch {
	case scriptText != "" && scriptFile != "":
		return "", fmt.Errorf("use either --file or --text")
	case scriptText != "":
		return scriptText, nil
	case scriptFile == "-":
		data, err := io.ReadAll(in)
		return string(data), err
	case scriptFile != "":
		data, err := os.ReadFile(scriptFile)
		if err != nil {
			return "", fmt.Errorf("read script: %w", err)
		}
		return string(data), nil
	}
	return "", fmt.Errorf("no script given; pass --file or --text")
}

func runScript(cmd *cobra.Command, _ []string) error {
	text, err := readScript(cmd.InOrStdin())
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("script is empty")
	}

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
	created := s.RebuildScript(text)
	if err := s.finish(ctx); err != nil {
		return err
	}

	p := s.Project()
	ws.log.Info("script rebuilt", "project", p.ID, "clips", len(created))
	if outputJSON {
		return writeJSON(cmd, map[string]any{"project": p.ID, "created": created, "duration": p.TotalDuration()})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "generated %d clips, timeline is %s\n", len(created), formatSeconds(p.TotalDuration()))
	return nil
}

func runScriptStyle(cmd *cobra.Command, args []string) error {
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
	if !s.ApplyStyle(args[0], script.Role(args[1]), args[2]) {
		return fmt.Errorf("line %s has no %s layer", args[0], args[1])
	}
	if err := s.finish(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s → %s\n", args[0], args[1], args[2])
	return nil
}

func parseRoles(values []string) ([]script.Role, error) {
	roles := make([]script.Role, 0, len(values))
	for _, v := range values {
		switch r := script.Role(strings.TrimSpace(v)); r {
		case script.RoleBackground, script.RoleCutout, script.RoleBroll, script.RoleText:
			roles = append(roles, r)
		default:
			return nil, fmt.Errorf("unknown layer %q", v)
		}
	}
	return roles, nil
}

func runScriptShuffle(cmd *cobra.Command, args []string) error {
	roles, err := parseRoles(shuffleRoles)
	if err != nil {
		return err
	}
	seed := shuffleSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	parentID := ""
	if len(args) == 1 {
		parentID = args[0]
	}

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
	changed := s.Shuffle(seed, parentID, roles...)
	if err := s.finish(ctx); err != nil {
		return err
	}
	ws.log.Info("styles shuffled", "project", projectID, "seed", seed, "clips", len(changed))
	if outputJSON {
		return writeJSON(cmd, map[string]any{"seed": seed, "changed": changed})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "shuffled %d clips (seed %d)\n", len(changed), seed)
	return nil
}
