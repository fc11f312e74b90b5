package dashboard

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

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	channelID, err := httpx.PathID(r, "channelId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	st, err := h.svc.Stats(r.Context(), channelID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, st, "channel stats fetched successfully")
}

func (h *Handler) Videos(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	channelID, err := httpx.PathID(r, "channelId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	videos, err := h.svc.Videos(r.Context(), viewer, channelID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, videos, "channel videos fetched successfully")
}
