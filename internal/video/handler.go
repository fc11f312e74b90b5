package video

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/upload"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/video/entity"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/utilities"
)

type Handler struct {
	svc     *Service
	uploads *upload.Buffer
	logger  *zap.SugaredLogger
}

func NewHandler(svc *Service, uploads *upload.Buffer, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, uploads: uploads, logger: logger}
}

type listResponse struct {
	Videos []entity.Detail `json:"videos"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Pages  int             `json:"pages"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	page, limit := httpx.Page(r)
	qs := r.URL.Query()
	q := entity.ListQuery{
		Page:     page,
		Limit:    limit,
		Query:    strings.TrimSpace(qs.Get("query")),
		SortBy:   qs.Get("sortBy"),
		SortType: qs.Get("sortType"),
	}
	if raw := qs.Get("userId"); raw != "" {
		id, err := utilities.ParseID(raw)
		if err != nil {
			httpx.Error(w, h.logger, apperr.BadRequest("invalid userId"))
			return
		}
		q.OwnerID = id
	}
	videos, total, err := h.svc.List(r.Context(), viewer, q)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{Videos: videos, Total: total, Page: page, Pages: httpx.Pages(total, limit)}, "videos fetched successfully")
}

func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	form, err := h.uploads.Parse(w, r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	defer form.Cleanup()
	in := PublishInput{Title: form.Value("title"), Description: form.Value("description")}
	if f, ok := form.File("videoFile"); ok {
		in.VideoPath = f.Path
	}
	if f, ok := form.File("thumbnail"); ok {
		in.ThumbnailPath = f.Path
	}
	if raw := form.Value("duration"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d < 0 {
			httpx.Error(w, h.logger, apperr.BadRequest("invalid duration"))
			return
		}
		in.Duration = d
	}
	v, err := h.svc.Publish(r.Context(), owner, in)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, v, "video created successfully")
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	viewer, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	id, err := httpx.PathID(r, "videoId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	v, err := h.svc.Get(r.Context(), viewer, id)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v, "video fetched successfully")
}

type updateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Update accepts either JSON or a multipart form carrying a new thumbnail.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	id, err := httpx.PathID(r, "videoId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	var in UpdateInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		form, err := h.uploads.Parse(w, r)
		if err != nil {
			httpx.Error(w, h.logger, err)
			return
		}
		defer form.Cleanup()
		in.Title, in.Description = form.Value("title"), form.Value("description")
		if f, ok := form.File("thumbnail"); ok {
			in.ThumbnailPath = f.Path
		}
	} else {
		var req updateRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Error(w, h.logger, err)
			return
		}
		in.Title, in.Description = req.Title, req.Description
	}
	v, err := h.svc.Update(r.Context(), actor, id, in)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, v, "video updated successfully")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	id, err := httpx.PathID(r, "videoId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, nil, "video deleted successfully")
}

func (h *Handler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	id, err := httpx.PathID(r, "videoId")
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	v, err := h.svc.TogglePublish(r.Context(), actor, id)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	msg := "video unpublished"
	if v.IsPublished {
		msg = "video published"
	}
	httpx.WriteJSON(w, http.StatusOK, v, msg)
}
