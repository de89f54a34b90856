package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// resolveExternalPath returns path as-is if absolute, otherwise joins it with projectRoot.
func resolveExternalPath(projectRoot, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectRoot, path)
}

// loadKeywordFiles reads each file in Keywords.Files and appends its lists,
// skipping words already present.
func (c *Config) loadKeywordFiles(projectRoot string) error {
	for _, relPath := range c.Keywords.Files {
		absPath := resolveExternalPath(projectRoot, relPath)
		data, err := os.ReadFile(absPath)
		if err != nil {
			return fmt.Errorf("load keyword file %q: %w", relPath, err)
		}

		var extra KeywordsConfig
		if err := yaml.Unmarshal(data, &extra); err != nil {
			return fmt.Errorf("parse keyword file %q: %w", relPath, err)
		}
		c.Keywords.Positive = appendUnique(c.Keywords.Positive, extra.Positive)
		c.Keywords.Negative = appendUnique(c.Keywords.Negative, extra.Negative)
		c.Keywords.Background = appendUnique(c.Keywords.Background, extra.Background)
	}
	return nil
}

func appendUnique(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, w := range dst {
		seen[w] = true
	}
	for _, w := range src {
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		dst = append(dst, w)
	}
	return dst
}

// Environment variables that override file settings.
const (
	EnvRenderEndpoint = "REELKIT_RENDER_ENDPOINT"
	EnvRenderCommand  = "REELKIT_RENDER_COMMAND"
	EnvGCSBucket      = "REELKIT_GCS_BUCKET"
	EnvServerAddr     = "REELKIT_SERVER_ADDR"
)

// LoadEnv reads <projectRoot>/.env into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnv(projectRoot string) error {
	path := filepath.Join(projectRoot, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays REELKIT_* variables onto the configuration.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvRenderEndpoint); v != "" {
		c.Render.Endpoint = v
	}
	if v := os.Getenv(EnvRenderCommand); v != "" {
		c.Render.Command = v
	}
	if v := os.Getenv(EnvGCSBucket); v != "" {
		c.Render.GCSBucket = v
	}
	if v := os.Getenv(EnvServerAddr); v != "" {
		c.Server.Addr = v
	}
}
