package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reelkit/internal/compose"
	"reelkit/internal/render"
)

type renderResponse struct {
	render.State
	Dropped []string `json:"dropped,omitempty"`
}

func (s *Server) startRender(c *gin.Context) {
	if s.deps.Renderer == nil {
		fail(c, http.StatusServiceUnavailable, errors.New("no renderer configured"))
		return
	}
	p, found := s.loadProject(c)
	if !found {
		return
	}
	var resolver compose.Resolver
	if s.deps.Resolver != nil {
		resolver = s.deps.Resolver
	}
	props, dropped := render.BuildProps(p, resolver)
	if len(dropped) > 0 {
		s.log.WarnContext(c.Request.Context(), "unresolved sources dropped from render", "project", p.ID, "clips", dropped)
	}

	sess := s.session(p.ID)
	err := sess.Start(c.Request.Context(), render.NewRequest(props), c.Query("force") == "true")
	if errors.Is(err, render.ErrBusy) {
		fail(c, http.StatusConflict, err)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	ok(c, http.StatusAccepted, renderResponse{State: sess.State(), Dropped: dropped})
}

func (s *Server) getRender(c *gin.Context) {
	ok(c, http.StatusOK, renderResponse{State: s.session(c.Param("id")).State()})
}

func (s *Server) resetRender(c *gin.Context) {
	sess := s.session(c.Param("id"))
	if !sess.Reset() {
		fail(c, http.StatusConflict, render.ErrBusy)
		return
	}
	ok(c, http.StatusOK, renderResponse{State: sess.State()})
}
