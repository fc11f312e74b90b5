package tweet

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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	t, err := h.svc.Create(r.Context(), actor, in)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t, "tweet created successfully")
}

func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := httpx.PathID(r, "userId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	tweets, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tweets, "tweets fetched successfully")
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	id, err := httpx.PathID(r, "tweetId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	t, err := h.svc.Update(r.Context(), actor, id, in)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t, "tweet updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	id, err := httpx.PathID(r, "tweetId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, struct{}{}, "tweet deleted successfully")
}
