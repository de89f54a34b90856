package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"reelkit/internal/config"
	"reelkit/internal/paths"
	"reelkit/internal/store"
)

const envTemplate = `# Overrides read by reelkit at startup. Real environment variables win.
# REELKIT_RENDER_ENDPOINT=http://localhost:3000/api/render
# REELKIT_RENDER_COMMAND=npx remotion
# REELKIT_GCS_BUCKET=
# REELKIT_SERVER_ADDR=:8080
`

const sampleScript = `今天聊聊[财库]为什么总是存不住
别让小钱一直漏下去
学会开源 财富才会越来越多
`

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a reelkit project directory",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runInit,
	}
}

func resolveInitDir(projectFlag string, args []string) (string, error) {
	if projectFlag != "" {
		return projectFlag, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	if len(args) > 0 {
		if args[0] == "." {
			return cwd, nil
		}
		return filepath.Join(cwd, args[0]), nil
	}

	return nextAvailableDir(cwd)
}

func nextAvailableDir(base string) (string, error) {
	for i := 1; ; i++ {
		candidate := filepath.Join(base, fmt.Sprintf("reelkit-%d", i))
		exists, err := paths.DirExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	dir, err := resolveInitDir(projectDir, args)
	if err != nil {
		return err
	}

	pp, err := paths.Resolve(dir)
	if err != nil {
		return err
	}
	if err := pp.EnsureRoot(); err != nil {
		return err
	}

	created := make([]string, 0, 4)
	if err := ensureFile(pp.ConfigFile, defaultConfigYAML, &created); err != nil {
		return err
	}
	if err := ensureFile(pp.EnvFile, func() ([]byte, error) { return []byte(envTemplate), nil }, &created); err != nil {
		return err
	}
	if err := ensureFile(filepath.Join(pp.Root, "script.txt"), func() ([]byte, error) { return []byte(sampleScript), nil }, &created); err != nil {
		return err
	}

	// The workspace creates the metadata directory, database and log file.
	projectDir = pp.Root
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()
	ws.log.Info("reelkit init", "project", pp.Root)

	ctx := commandContext(cmd)
	if _, _, err := ws.projects.Load(ctx, projectID); errors.Is(err, store.ErrNotFound) {
		p := ws.cfg.NewProject(projectID)
		if err := ws.projects.Save(ctx, p.ID, p); err != nil {
			return err
		}
		created = append(created, "project "+p.ID)
	} else if err != nil {
		return err
	}

	if len(created) == 0 {
		cmd.Printf("Project already initialized at %s\n", pp.Root)
		return nil
	}
	cmd.Printf("Initialized project at %s\n", pp.Root)
	for _, entry := range created {
		cmd.Printf("  created %s\n", entry)
	}
	return nil
}

func defaultConfigYAML() ([]byte, error) {
	cfg := config.Default()
	cfg.ApplyDefaults()
	return cfg.Marshal()
}

func ensureFile(path string, contents func() ([]byte, error), created *[]string) error {
	exists, err := paths.FileExists(path)
	if err != nil {
		return fmt.Errorf("check %s: %w", filepath.Base(path), err)
	}
	if exists {
		return nil
	}
	data, err := contents()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	*created = append(*created, filepath.Base(path))
	return nil
}
