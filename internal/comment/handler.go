package comment

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/httpx"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type contentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	videoID, err := httpx.PathID(r, "videoId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	page, limit := httpx.Page(r)
	out, err := h.svc.List(r.Context(), viewer, videoID, page, limit)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out, "comments fetched successfully")
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	videoID, err := httpx.PathID(r, "videoId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	var req contentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	c, err := h.svc.Add(r.Context(), actor, videoID, req.Content)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c, "comment added successfully")
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	id, err := httpx.PathID(r, "commentId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	var req contentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	c, err := h.svc.Update(r.Context(), actor, id, req.Content)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c, "comment updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	id, err := httpx.PathID(r, "commentId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, nil, "comment deleted successfully")
}
