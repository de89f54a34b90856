package render

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"reelkit/internal/render/state"
)

// Status is the phase of a render session.
type Status string

const (
	StatusInit     Status = "init"
	StatusInvoking Status = "invoking"
	StatusDone     Status = "done"
	StatusError    Status = "error"
)

// ErrBusy is returned when a render is requested while one is running.
var ErrBusy = errors.New("render already in progress")

// State is a snapshot of a session.
type State struct {
	Status     Status    `json:"status"`
	URL        string    `json:"url,omitempty"`
	Error      string    `json:"error,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	StartedAt  time.Time `json:"startedAt,omitzero"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`
}

// SessionOptions configures a Session.
type SessionOptions struct {
	ProjectID string
	Timeout   time.Duration
	// StatePath, when set, persists render records so an unchanged project
	// answers with its previous output.
	StatePath    string
	RendererHash string
	Logger       *slog.Logger
}

// Session runs one render at a time for a project and exposes its progress
// as init, invoking, then done or error. Failures are not retried.
type Session struct {
	renderer Renderer
	opts     SessionOptions
	log      *slog.Logger

	mu    sync.Mutex
	state State
	done  chan struct{}
}

// NewSession binds a renderer to a project.
func NewSession(r Renderer, opts SessionOptions) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{renderer: r, opts: opts, log: logger, state: State{Status: StatusInit}}
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reset returns a finished session to init. It reports false while a render
// is running.
func (s *Session) Reset() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status == StatusInvoking {
		return false
	}
	s.state = State{Status: StatusInit}
	return true
}

// Run renders req and blocks until it finishes.
func (s *Session) Run(ctx context.Context, req Request, force bool) (State, error) {
	if err := s.begin(); err != nil {
		return s.State(), err
	}
	s.execute(ctx, req, force)
	return s.State(), nil
}

// Start renders req in the background. The render outlives ctx's
// cancellation but keeps its values.
func (s *Session) Start(ctx context.Context, req Request, force bool) error {
	if err := s.begin(); err != nil {
		return err
	}
	go s.execute(context.WithoutCancel(ctx), req, force)
	return nil
}

// Wait blocks until the running render, if any, finishes.
func (s *Session) Wait(ctx context.Context) (State, error) {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return s.State(), nil
	}
	select {
	case <-done:
		return s.State(), nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Status == StatusInvoking {
		return ErrBusy
	}
	s.state = State{Status: StatusInvoking, StartedAt: time.Now()}
	s.done = make(chan struct{})
	return nil
}

func (s *Session) execute(ctx context.Context, req Request, force bool) {
	defer func() {
		s.mu.Lock()
		close(s.done)
		s.mu.Unlock()
	}()

	propsHash := state.Hash(req)
	if s.opts.StatePath != "" {
		rs, _ := state.Load(s.opts.StatePath)
		decision := state.Detect(rs, s.opts.ProjectID, propsHash, s.opts.RendererHash, force)
		if decision.Action == state.ActionSkip {
			s.log.Info("render up to date", "project", s.opts.ProjectID, "url", decision.Prior.URL)
			s.finish(State{Status: StatusDone, URL: decision.Prior.URL, Reason: decision.Reason})
			return
		}
		s.log.Info("render starting", "project", s.opts.ProjectID, "reason", decision.Reason)
	}

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	started := time.Now()
	res, err := s.renderer.Render(ctx, req)
	if err != nil {
		s.log.Error("render failed", "project", s.opts.ProjectID, "err", err)
		s.finish(State{Status: StatusError, Error: err.Error()})
		return
	}

	if s.opts.StatePath != "" {
		rec := state.Record{
			PropsHash:  propsHash,
			URL:        res.URL,
			OutputPath: res.OutputPath,
			RenderedAt: time.Now().UTC(),
			DurationS:  time.Since(started).Seconds(),
		}
		err := state.Update(s.opts.StatePath, func(rs *state.RenderState) {
			rs.Put(s.opts.ProjectID, s.opts.RendererHash, rec)
		})
		if err != nil {
			s.log.Warn("render state not saved", "path", s.opts.StatePath, "err", err)
		}
	}
	s.log.Info("render finished", "project", s.opts.ProjectID, "url", res.URL, "elapsed", time.Since(started))
	s.finish(State{Status: StatusDone, URL: res.URL})
}

func (s *Session) finish(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next.StartedAt = s.state.StartedAt
	next.FinishedAt = time.Now()
	s.state = next
}
