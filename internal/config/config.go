package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"reelkit/internal/sentiment"
	"reelkit/internal/timeline"
)

// Config captures the editor, render and service configuration of a project.
type Config struct {
	Version  int            `yaml:"version" toml:"version"`
	Video    VideoConfig    `yaml:"video" toml:"video"`
	Export   ExportConfig   `yaml:"export" toml:"export"`
	Keywords KeywordsConfig `yaml:"keywords" toml:"keywords"`
	Styles   StylesConfig   `yaml:"styles" toml:"styles"`
	Editor   EditorConfig   `yaml:"editor" toml:"editor"`
	Render   RenderConfig   `yaml:"render" toml:"render"`
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Store    StoreConfig    `yaml:"store" toml:"store"`
}

// VideoConfig describes the composition space.
type VideoConfig struct {
	Width       int    `yaml:"width" toml:"width"`
	Height      int    `yaml:"height" toml:"height"`
	FPS         int    `yaml:"fps" toml:"fps"`
	Composition string `yaml:"composition" toml:"composition"`
}

// ExportConfig controls offline frame export.
type ExportConfig struct {
	Preset      string `yaml:"preset" toml:"preset"`
	FPS         int    `yaml:"fps" toml:"fps"`
	Concurrency int    `yaml:"concurrency" toml:"concurrency"`
	FramesDir   string `yaml:"frames_dir,omitempty" toml:"frames_dir"`
}

// KeywordsConfig holds the sentiment keyword lists. Files lists extra YAML
// documents whose lists are appended.
type KeywordsConfig struct {
	Positive   []string `yaml:"positive" toml:"positive"`
	Negative   []string `yaml:"negative" toml:"negative"`
	Background []string `yaml:"background" toml:"background"`
	Files      []string `yaml:"files,omitempty" toml:"files"`
}

// Lists returns the keyword lists in the classifier's shape.
func (k KeywordsConfig) Lists() sentiment.Keywords {
	return sentiment.Keywords{Positive: k.Positive, Negative: k.Negative, Background: k.Background}
}

// StylesConfig names the default presets of generated clips.
type StylesConfig struct {
	Subtitle string `yaml:"subtitle" toml:"subtitle"`
	Cutout   string `yaml:"cutout" toml:"cutout"`
	Broll    string `yaml:"broll" toml:"broll"`
	Motion   string `yaml:"motion" toml:"motion"`
}

// Timeline converts to the project's style set.
func (s StylesConfig) Timeline() timeline.Styles {
	return timeline.Styles{Subtitle: s.Subtitle, Cutout: s.Cutout, Broll: s.Broll, Motion: s.Motion}
}

// EditorConfig tunes the interaction engine.
type EditorConfig struct {
	PixelsPerSecond     float64       `yaml:"pixels_per_second" toml:"pixels_per_second"`
	SnapThresholdPx     float64       `yaml:"snap_threshold_px" toml:"snap_threshold_px"`
	MinClipDuration     float64       `yaml:"min_clip_duration" toml:"min_clip_duration"`
	DefaultDropDuration float64       `yaml:"default_drop_duration" toml:"default_drop_duration"`
	SaveDebounce        time.Duration `yaml:"save_debounce" toml:"save_debounce"`
	PreviewFPS          int           `yaml:"preview_fps" toml:"preview_fps"`
}

// RenderConfig selects and configures the external renderer. An endpoint
// takes precedence over a command.
type RenderConfig struct {
	Command     string        `yaml:"command,omitempty" toml:"command"`
	Args        []string      `yaml:"args,omitempty" toml:"args"`
	Endpoint    string        `yaml:"endpoint,omitempty" toml:"endpoint"`
	Timeout     time.Duration `yaml:"timeout" toml:"timeout"`
	OutputDir   string        `yaml:"output_dir" toml:"output_dir"`
	GCSBucket   string        `yaml:"gcs_bucket,omitempty" toml:"gcs_bucket"`
	GCSPrefix   string        `yaml:"gcs_prefix,omitempty" toml:"gcs_prefix"`
	CacheAssets int           `yaml:"asset_cache_size" toml:"asset_cache_size"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr             string   `yaml:"addr" toml:"addr"`
	RendersPerMinute int      `yaml:"renders_per_minute" toml:"renders_per_minute"`
	AllowOrigins     []string `yaml:"allow_origins,omitempty" toml:"allow_origins"`
	MaxUploadMB      int      `yaml:"max_upload_mb" toml:"max_upload_mb"`
}

// StoreConfig selects the project store.
type StoreConfig struct {
	Driver string `yaml:"driver" toml:"driver"`
	Path   string `yaml:"path,omitempty" toml:"path"`
}

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// Default returns the baseline configuration.
func Default() Config {
	styles := timeline.DefaultStyles()
	return Config{
		Version: 1,
		Video: VideoConfig{
			Width:       timeline.BaseWidth,
			Height:      timeline.BaseHeight,
			FPS:         timeline.DefaultFPS,
			Composition: "MyComp",
		},
		Export: ExportConfig{
			Preset:      timeline.DefaultExportPreset,
			FPS:         timeline.DefaultFPS,
			Concurrency: 4,
		},
		Keywords: KeywordsConfig{
			Positive:   append([]string(nil), sentiment.DefaultPositive...),
			Negative:   append([]string(nil), sentiment.DefaultNegative...),
			Background: append([]string(nil), sentiment.DefaultBackground...),
		},
		Styles: StylesConfig{
			Subtitle: styles.Subtitle,
			Cutout:   styles.Cutout,
			Broll:    styles.Broll,
			Motion:   styles.Motion,
		},
		Editor: EditorConfig{
			PixelsPerSecond:     80,
			SnapThresholdPx:     8,
			MinClipDuration:     timeline.MinDuration,
			DefaultDropDuration: 2,
			SaveDebounce:        250 * time.Millisecond,
			PreviewFPS:          30,
		},
		Render: RenderConfig{
			Timeout:     5 * time.Minute,
			OutputDir:   "renders",
			CacheAssets: 128,
		},
		Server: ServerConfig{
			Addr:             ":8080",
			RendersPerMinute: 6,
			MaxUploadMB:      32,
		},
		Store: StoreConfig{
			Driver: DriverSQLite,
		},
	}
}

// Load reads the configuration from disk if it exists, otherwise returns the
// default configuration. Files ending in .toml are decoded as TOML, anything
// else as YAML.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	// Lists replace the defaults instead of merging into them.
	cfg.Keywords = KeywordsConfig{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(contents, &cfg); err != nil {
			return Config{}, fmt.Errorf("unmarshal config: %w", err)
		}
	} else if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.loadKeywordFiles(filepath.Dir(path)); err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures nested fields fall back to sensible defaults when the
// file omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Video.Width <= 0 {
		c.Video.Width = defaults.Video.Width
	}
	if c.Video.Height <= 0 {
		c.Video.Height = defaults.Video.Height
	}
	if c.Video.FPS <= 0 {
		c.Video.FPS = defaults.Video.FPS
	}
	if c.Video.Composition == "" {
		c.Video.Composition = defaults.Video.Composition
	}
	if _, ok := timeline.ExportPreset(c.Export.Preset); !ok {
		c.Export.Preset = defaults.Export.Preset
	}
	if c.Export.FPS <= 0 {
		c.Export.FPS = c.Video.FPS
	}
	if c.Export.Concurrency <= 0 {
		c.Export.Concurrency = defaults.Export.Concurrency
	}
	c.Keywords = c.Keywords.withDefaults(defaults.Keywords)
	if c.Styles.Subtitle == "" {
		c.Styles.Subtitle = defaults.Styles.Subtitle
	}
	if c.Styles.Cutout == "" {
		c.Styles.Cutout = defaults.Styles.Cutout
	}
	if c.Styles.Broll == "" {
		c.Styles.Broll = defaults.Styles.Broll
	}
	if c.Styles.Motion == "" {
		c.Styles.Motion = defaults.Styles.Motion
	}
	if c.Editor.PixelsPerSecond <= 0 {
		c.Editor.PixelsPerSecond = defaults.Editor.PixelsPerSecond
	}
	if c.Editor.SnapThresholdPx <= 0 {
		c.Editor.SnapThresholdPx = defaults.Editor.SnapThresholdPx
	}
	if c.Editor.MinClipDuration <= 0 {
		c.Editor.MinClipDuration = defaults.Editor.MinClipDuration
	}
	if c.Editor.DefaultDropDuration <= 0 {
		c.Editor.DefaultDropDuration = defaults.Editor.DefaultDropDuration
	}
	if c.Editor.SaveDebounce <= 0 {
		c.Editor.SaveDebounce = defaults.Editor.SaveDebounce
	}
	if c.Editor.PreviewFPS <= 0 {
		c.Editor.PreviewFPS = defaults.Editor.PreviewFPS
	}
	if c.Render.Timeout <= 0 {
		c.Render.Timeout = defaults.Render.Timeout
	}
	if c.Render.OutputDir == "" {
		c.Render.OutputDir = defaults.Render.OutputDir
	}
	if c.Render.CacheAssets <= 0 {
		c.Render.CacheAssets = defaults.Render.CacheAssets
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.RendersPerMinute <= 0 {
		c.Server.RendersPerMinute = defaults.Server.RendersPerMinute
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = defaults.Server.MaxUploadMB
	}
	if c.Store.Driver != DriverFile {
		c.Store.Driver = DriverSQLite
	}
}

func (k KeywordsConfig) withDefaults(defaults KeywordsConfig) KeywordsConfig {
	if len(k.Positive) == 0 {
		k.Positive = defaults.Positive
	}
	if len(k.Negative) == 0 {
		k.Negative = defaults.Negative
	}
	if len(k.Background) == 0 {
		k.Background = defaults.Background
	}
	return k
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

// NewProject returns an empty project seeded with this configuration.
func (c Config) NewProject(id string) *timeline.Project {
	p := timeline.New(id)
	p.Width = c.Video.Width
	p.Height = c.Video.Height
	p.FPS = c.Video.FPS
	p.ExportPreset = c.Export.Preset
	p.Styles = c.Styles.Timeline()
	p.Config.Keywords = c.Keywords.Lists().WithDefaults()
	return p
}
