package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reelkit/internal/config"
)

// Config file names tried in order.
var configNames = []string{"reelkit.yaml", "reelkit.yml", "reelkit.toml"}

// ProjectPaths captures canonical locations for a reelkit project.
type ProjectPaths struct {
	Root            string
	ConfigFile      string
	EnvFile         string
	MetaDir         string
	Database        string
	ProjectsDir     string
	LogsDir         string
	OutputDir       string
	FramesDir       string
	RenderStateFile string
}

// Resolve determines the project root using the optional --project flag or the
// current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	metaDir := filepath.Join(root, ".reelkit")
	configFile := filepath.Join(root, configNames[0])
	for _, name := range configNames {
		candidate := filepath.Join(root, name)
		if ok, _ := FileExists(candidate); ok {
			configFile = candidate
			break
		}
	}
	return ProjectPaths{
		Root:            root,
		ConfigFile:      configFile,
		EnvFile:         filepath.Join(root, ".env"),
		MetaDir:         metaDir,
		Database:        filepath.Join(metaDir, "reelkit.db"),
		ProjectsDir:     filepath.Join(metaDir, "projects"),
		LogsDir:         filepath.Join(root, "logs"),
		OutputDir:       filepath.Join(root, "renders"),
		FramesDir:       filepath.Join(root, "frames"),
		RenderStateFile: filepath.Join(metaDir, "render_state.json"),
	}
}

// ApplyConfig points configurable locations at the paths the config names.
func ApplyConfig(pp ProjectPaths, cfg config.Config) ProjectPaths {
	if out := strings.TrimSpace(cfg.Render.OutputDir); out != "" {
		pp.OutputDir = resolveProjectPath(pp.Root, out)
	}
	if frames := strings.TrimSpace(cfg.Export.FramesDir); frames != "" {
		pp.FramesDir = resolveProjectPath(pp.Root, frames)
	}
	if db := strings.TrimSpace(cfg.Store.Path); db != "" {
		if cfg.Store.Driver == config.DriverFile {
			pp.ProjectsDir = resolveProjectPath(pp.Root, db)
		} else {
			pp.Database = resolveProjectPath(pp.Root, db)
		}
	}
	return pp
}

// ProjectFramesDir returns the frame export directory of one project.
func (p ProjectPaths) ProjectFramesDir(projectID string) string {
	return filepath.Join(p.FramesDir, projectID)
}

func resolveProjectPath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// EnsureRoot makes sure the project root exists on disk.
func (p ProjectPaths) EnsureRoot() error {
	if err := os.MkdirAll(p.Root, 0o755); err != nil {
		return fmt.Errorf("create project root: %w", err)
	}
	return nil
}

// EnsureMetaDirs creates the logs/renders hierarchy alongside the hidden
// .reelkit metadata directory.
func (p ProjectPaths) EnsureMetaDirs() error {
	dirs := []string{p.MetaDir, p.LogsDir, p.OutputDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
