package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"reelkit/internal/assets"
)

type assetResponse struct {
	assets.Asset
	Token     string `json:"token"`
	SizeHuman string `json:"sizeHuman"`
}

func describe(a assets.Asset) assetResponse {
	return assetResponse{Asset: a, Token: a.Token(), SizeHuman: humanize.Bytes(uint64(a.Size))}
}

func (s *Server) listAssets(c *gin.Context) {
	list, err := s.deps.Assets.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	out := make([]assetResponse, 0, len(list))
	for _, a := range list {
		out = append(out, describe(a))
	}
	ok(c, http.StatusOK, out)
}

func (s *Server) uploadAsset(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, fmt.Errorf("get form file: %w", err))
		return
	}
	if file.Size > s.opts.MaxUploadBytes {
		fail(c, http.StatusRequestEntityTooLarge, fmt.Errorf("file is %s, limit is %s",
			humanize.Bytes(uint64(file.Size)), humanize.Bytes(uint64(s.opts.MaxUploadBytes))))
		return
	}
	f, err := file.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.opts.MaxUploadBytes))
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()
	id, err := s.deps.Assets.Put(ctx, c.Param("id"), data, assets.Meta{Name: file.Filename})
	if errors.Is(err, assets.ErrUnsupported) {
		fail(c, http.StatusUnsupportedMediaType, err)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	a, err := s.deps.Assets.Get(ctx, id)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	s.log.InfoContext(ctx, "asset stored", "asset", id, "size", humanize.Bytes(uint64(a.Size)))
	ok(c, http.StatusCreated, describe(*a))
}

func (s *Server) getAsset(c *gin.Context) {
	a, err := s.deps.Assets.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, assets.ErrNotFound) {
		fail(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=3600")
	c.Data(http.StatusOK, a.MIME, a.Data)
}

func (s *Server) deleteAsset(c *gin.Context) {
	id := c.Param("id")
	err := s.deps.Assets.Delete(c.Request.Context(), id)
	if errors.Is(err, assets.ErrNotFound) {
		fail(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	if s.deps.Resolver != nil {
		s.deps.Resolver.Forget(id)
	}
	c.Status(http.StatusNoContent)
}
