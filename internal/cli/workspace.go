package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"reelkit/internal/assets"
	"reelkit/internal/config"
	"reelkit/internal/edit"
	"reelkit/internal/logx"
	"reelkit/internal/paths"
	"reelkit/internal/render"
	"reelkit/internal/render/state"
	"reelkit/internal/store"
	"reelkit/internal/timeline"
)

// workspace bundles everything a command needs to work on a project
// directory.
type workspace struct {
	pp       paths.ProjectPaths
	cfg      config.Config
	log      *slog.Logger
	db       *sql.DB
	projects store.Store
	assets   assets.Store
	resolver *assets.Resolver

	closers []io.Closer
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func parseLogLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// openWorkspace resolves the project directory, loads .env and the config,
// opens the log file and the database.
func openWorkspace() (*workspace, error) {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return nil, err
	}
	if err := config.LoadEnv(pp.Root); err != nil {
		return nil, err
	}
	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	pp = paths.ApplyConfig(pp, cfg)
	if err := pp.EnsureMetaDirs(); err != nil {
		return nil, err
	}

	logger, logCloser, err := logx.New(pp, logx.Options{Level: parseLogLevel(logLevel)})
	if err != nil {
		return nil, err
	}
	ws := &workspace{pp: pp, cfg: cfg, log: logger, closers: []io.Closer{logCloser}}

	db, err := store.OpenDB(pp.Database)
	if err != nil {
		ws.Close()
		return nil, err
	}
	ws.db = db
	ws.closers = append([]io.Closer{db}, ws.closers...)

	blobs, err := assets.NewSQLiteStore(db)
	if err != nil {
		ws.Close()
		return nil, err
	}
	ws.assets = blobs
	if ws.resolver, err = assets.NewResolver(blobs, cfg.Render.CacheAssets, logger); err != nil {
		ws.Close()
		return nil, err
	}

	if cfg.Store.Driver == config.DriverFile {
		ws.projects = store.NewFileStore(pp.ProjectsDir)
	} else if ws.projects, err = store.NewSQLiteStore(db); err != nil {
		ws.Close()
		return nil, err
	}

	logger.Debug("workspace opened", "root", pp.Root, "store", cfg.Store.Driver)
	return ws, nil
}

// Close releases the database and the log file.
func (w *workspace) Close() error {
	var errs []error
	for _, c := range w.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// loadProject reads project id. Repairs made on load are reported on
// errOut.
func (w *workspace) loadProject(ctx context.Context, id string, errOut io.Writer) (*timeline.Project, error) {
	p, repairs, err := w.projects.Load(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("project %q not found; run `reelkit project new %s` first", id, id)
	}
	if err != nil {
		return nil, err
	}
	for _, r := range repairs {
		fmt.Fprintf(errOut, "repaired: %v\n", r)
	}
	if len(repairs) > 0 {
		w.log.Warn("project repaired on load", "project", id, "count", len(repairs))
	}
	return p, nil
}

func (w *workspace) editorConfig() edit.Config {
	return edit.Config{
		PixelsPerSecond:     w.cfg.Editor.PixelsPerSecond,
		SnapThresholdPx:     w.cfg.Editor.SnapThresholdPx,
		MinDuration:         w.cfg.Editor.MinClipDuration,
		DefaultDropDuration: w.cfg.Editor.DefaultDropDuration,
	}
}

// session is an editor whose commits are persisted through a debouncer.
type session struct {
	*edit.Editor
	saver *store.Debouncer
}

// edit loads project id into an editor wired to the store.
func (w *workspace) edit(ctx context.Context, id string, errOut io.Writer) (*session, error) {
	p, err := w.loadProject(ctx, id, errOut)
	if err != nil {
		return nil, err
	}
	saver := store.NewDebouncer(w.projects, w.cfg.Editor.SaveDebounce, w.log)
	ed := edit.New(p, w.editorConfig(), edit.WithCommitter(saver), edit.WithLogger(w.log))
	return &session{Editor: ed, saver: saver}, nil
}

// finish flushes pending saves.
func (s *session) finish(ctx context.Context) error {
	return s.saver.Close(ctx)
}

// renderer builds the configured renderer. An endpoint wins over a command;
// a GCS bucket publishes local outputs.
func (w *workspace) renderer(ctx context.Context, stderr io.Writer) (render.Renderer, func() error, error) {
	noop := func() error { return nil }
	rc := w.cfg.Render
	if strings.TrimSpace(rc.Endpoint) != "" {
		return &render.HTTPRenderer{Endpoint: rc.Endpoint}, noop, nil
	}
	if strings.TrimSpace(rc.Command) == "" {
		return nil, noop, errors.New("no renderer configured; set render.endpoint or render.command")
	}
	args := rc.Args
	if len(args) == 0 {
		args = render.DefaultCommandArgs
	}
	cr := &render.CommandRenderer{
		Command:   rc.Command,
		Args:      args,
		Dir:       w.pp.Root,
		OutputDir: w.pp.OutputDir,
		LogsDir:   w.pp.LogsDir,
		Stderr:    stderr,
	}
	if strings.TrimSpace(rc.GCSBucket) == "" {
		return cr, noop, nil
	}
	pub, err := render.NewGCSPublisher(ctx, rc.GCSBucket, rc.GCSPrefix)
	if err != nil {
		return nil, noop, err
	}
	return &render.PublishingRenderer{Renderer: cr, Publisher: pub}, pub.Close, nil
}

// rendererHash fingerprints the renderer setup so cached render records are
// dropped when it changes.
func (w *workspace) rendererHash() string {
	rc := w.cfg.Render
	return state.Hash(struct {
		Command, Endpoint, Bucket, Prefix string
		Args                              []string
	}{rc.Command, rc.Endpoint, rc.GCSBucket, rc.GCSPrefix, rc.Args})
}
