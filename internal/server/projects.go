package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"reelkit/internal/compose"
	"reelkit/internal/store"
	"reelkit/internal/timeline"
)

type saveResponse struct {
	Project *timeline.Project `json:"project"`
	Repairs []string          `json:"repairs,omitempty"`
}

func (s *Server) listProjects(c *gin.Context) {
	list, err := s.deps.Projects.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	ok(c, http.StatusOK, list)
}

func (s *Server) loadProject(c *gin.Context) (*timeline.Project, bool) {
	id := c.Param("id")
	p, repairs, err := s.deps.Projects.Load(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, fmt.Errorf("project %s not found", id))
		return nil, false
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return nil, false
	}
	if len(repairs) > 0 {
		s.log.WarnContext(c.Request.Context(), "project repaired on load", "project", id, "repairs", repairs.Error())
	}
	return p, true
}

func (s *Server) getProject(c *gin.Context) {
	p, found := s.loadProject(c)
	if !found {
		return
	}
	ok(c, http.StatusOK, p)
}

func (s *Server) putProject(c *gin.Context) {
	var p timeline.Project
	if err := c.ShouldBindJSON(&p); err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("decode project: %w", err))
		return
	}
	p.ID = c.Param("id")
	repairs := p.Normalize()
	if err := s.deps.Projects.Save(c.Request.Context(), p.ID, &p); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	resp := saveResponse{Project: &p}
	for _, r := range repairs {
		resp.Repairs = append(resp.Repairs, r.Error())
	}
	ok(c, http.StatusOK, resp)
}

func (s *Server) deleteProject(c *gin.Context) {
	err := s.deps.Projects.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getFrame(c *gin.Context) {
	t, err := strconv.ParseFloat(c.DefaultQuery("t", "0"), 64)
	if err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("invalid time %q", c.Query("t")))
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
	ok(c, http.StatusOK, compose.Composite(p, t, compose.EnvFor(p, resolver)))
}
