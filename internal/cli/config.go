package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reelkit/internal/compose"
	"reelkit/internal/config"
	"reelkit/internal/paths"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect, edit or validate project configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration in YAML",
		RunE:  runConfigShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "edit",
		Short: "Open the project configuration in $EDITOR",
		RunE:  runConfigEdit,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Check keyword files, style names and renderer settings",
		RunE:  runConfigValidate,
	})
	return cmd
}

func loadConfig() (paths.ProjectPaths, config.Config, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return pp, config.Config{}, err
	}
	if err := config.LoadEnv(pp.Root); err != nil {
		return pp, config.Config{}, err
	}
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return pp, config.Config{}, err
	}
	cfg.ApplyEnv()
	return paths.ApplyConfig(pp, cfg), cfg, nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	_, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	if len(data) == 0 || data[len(data)-1] != '\n' {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return nil
}

func knownStyles() config.KnownStyles {
	return config.KnownStyles{
		Subtitle: compose.SubtitleStyles(),
		Visual:   compose.VisualStyles(),
		Motion:   compose.MotionStyles(),
	}
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	pp, cfg, err := loadConfig()
	if err != nil {
		return err
	}
	results := cfg.ValidateStrict(pp.Root, knownStyles())

	if outputJSON {
		payload := struct {
			Config  string                    `json:"config"`
			Results []config.ValidationResult `json:"results"`
		}{Config: pp.ConfigFile, Results: results}
		if payload.Results == nil {
			payload.Results = []config.ValidationResult{}
		}
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode validation json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	} else if len(results) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", filepath.Base(pp.ConfigFile))
	} else {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
		fmt.Fprintln(tw, "LEVEL\tMESSAGE")
		for _, r := range results {
			fmt.Fprintf(tw, "%s\t%s\n", r.Level, r.Message)
		}
		tw.Flush()
	}

	for _, r := range results {
		if r.Level == "error" {
			return errors.New("configuration has errors")
		}
	}
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)

	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	if err := pp.EnsureRoot(); err != nil {
		return err
	}
	if err := ensureConfigFileExists(pp); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	parts = append(parts, pp.ConfigFile)

	return runEditor(ctx, cmd, pp.Root, parts)
}

func runEditor(ctx context.Context, cmd *cobra.Command, dir string, parts []string) error {
	execCmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	execCmd.Stdout = cmd.OutOrStdout()
	execCmd.Stderr = cmd.ErrOrStderr()
	execCmd.Stdin = cmd.InOrStdin()
	execCmd.Dir = dir
	if err := execCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}
	return nil
}

func ensureConfigFileExists(pp paths.ProjectPaths) error {
	if _, err := os.Stat(pp.ConfigFile); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	data, err := defaultConfigYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(pp.ConfigFile, data, 0o644); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}
