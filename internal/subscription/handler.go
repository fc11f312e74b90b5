package subscription

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

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	channelID, err := httpx.PathID(r, "channelId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	out, err := h.svc.Toggle(r.Context(), actor, channelID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	msg := "unsubscribed from channel successfully"
	if out.Subscribed {
		msg = "subscribed to channel successfully"
	}
	httpx.WriteJSON(w, http.StatusOK, out, msg)
}

func (h *Handler) Subscribers(w http.ResponseWriter, r *http.Request) {
	channelID, err := httpx.PathID(r, "channelId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	out, err := h.svc.Subscribers(r.Context(), channelID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out, "channel subscribers fetched successfully")
}

func (h *Handler) Channels(w http.ResponseWriter, r *http.Request) {
	subscriberID, err := httpx.PathID(r, "subscriberId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	out, err := h.svc.Channels(r.Context(), subscriberID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, out, "subscribed channels fetched successfully")
}
