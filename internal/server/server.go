// Package server exposes projects, assets, frame evaluation and render
// sessions over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"

	"reelkit/internal/assets"
	"reelkit/internal/logx"
	"reelkit/internal/render"
	"reelkit/internal/store"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 5 * time.Second

// Deps are the services the API is built on.
type Deps struct {
	Projects store.Store
	Assets   assets.Store
	Resolver *assets.Resolver
	Renderer render.Renderer
	Logger   *slog.Logger
}

// Options configures the API.
type Options struct {
	Addr             string
	ServiceName      string
	RendersPerMinute int
	AllowOrigins     []string
	MaxUploadBytes   int64
	RenderTimeout    time.Duration
	RenderStatePath  string
	RendererHash     string
}

// Server serves the HTTP API.
type Server struct {
	deps    Deps
	opts    Options
	log     *slog.Logger
	limiter *rate.Limiter
	engine  *gin.Engine

	mu       sync.Mutex
	sessions map[string]*render.Session
}

// New wires the routes.
func New(deps Deps, opts Options) *Server {
	if deps.Logger == nil {
		deps.Logger = logx.Discard()
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "reelkit"
	}
	if opts.RendersPerMinute <= 0 {
		opts.RendersPerMinute = 6
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	s := &Server{
		deps:     deps,
		opts:     opts,
		log:      deps.Logger,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RendersPerMinute)), opts.RendersPerMinute),
		sessions: map[string]*render.Session{},
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(s.opts.ServiceName))
	r.Use(s.requestLogger())
	if len(s.opts.AllowOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = s.opts.AllowOrigins
		r.Use(cors.New(cfg))
	} else {
		r.Use(cors.Default())
	}

	apiV1 := r.Group("/api/v1")
	{
		projects := apiV1.Group("/projects")
		projects.GET("", s.listProjects)
		projects.GET("/:id", s.getProject)
		projects.PUT("/:id", s.putProject)
		projects.DELETE("/:id", s.deleteProject)
		projects.GET("/:id/frame", s.getFrame)
		projects.GET("/:id/assets", s.listAssets)
		projects.POST("/:id/assets", s.uploadAsset)
		projects.GET("/:id/render", s.getRender)
		projects.POST("/:id/render", s.rateLimited(), s.startRender)
		projects.DELETE("/:id/render", s.resetRender)

		apiV1.GET("/assets/:id", s.getAsset)
		apiV1.DELETE("/assets/:id", s.deleteAsset)
	}
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.log.Info("server ready", "addr", s.opts.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		s.log.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}

func (s *Server) rateLimited() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			fail(c, http.StatusTooManyRequests, errors.New("render rate limit exceeded"))
			return
		}
		c.Next()
	}
}

func (s *Server) session(projectID string) *render.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[projectID]
	if !ok {
		sess = render.NewSession(s.deps.Renderer, render.SessionOptions{
			ProjectID:    projectID,
			Timeout:      s.opts.RenderTimeout,
			StatePath:    s.opts.RenderStatePath,
			RendererHash: s.opts.RendererHash,
			Logger:       s.log,
		})
		s.sessions[projectID] = sess
	}
	return sess
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"type": "success", "data": data})
}

func fail(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"type": "error", "message": err.Error()})
}
