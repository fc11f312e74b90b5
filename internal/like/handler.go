package like

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/like/entity"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, entity.TargetVideo, "videoId")
}

func (h *Handler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, entity.TargetComment, "commentId")
}

func (h *Handler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, entity.TargetTweet, "tweetId")
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, t entity.Target, param string) {
	actor, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	id, err := httpx.PathID(r, param)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	out, err := h.svc.Toggle(r.Context(), actor, t, id)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	msg := "you have unliked the " + t.String()
	if out.Liked {
		msg = "you have liked the " + t.String()
	}
	httpx.WriteJSON(w, http.StatusOK, out, msg)
}

func (h *Handler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	videos, err := h.svc.LikedVideos(r.Context(), actor)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, videos, "liked videos fetched successfully")
}
