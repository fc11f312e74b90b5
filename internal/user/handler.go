package user

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/upload"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
)

// Sessions is the credential lifecycle the handlers drive.
type Sessions interface {
	Issue(ctx context.Context, userID snowflake.ID) (*auth.TokenPair, error)
	Rotate(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Revoke(ctx context.Context, userID snowflake.ID) error
}

// Handler exposes HTTP endpoints for account, session and channel operations.
type Handler struct {
	svc          *UserService
	sessions     Sessions
	uploads      *upload.Buffer
	logger       *zap.SugaredLogger
	cookieSecure bool
}

func NewHandler(svc *UserService, sessions Sessions, uploads *upload.Buffer, logger *zap.SugaredLogger, cookieSecure bool) *Handler {
	return &Handler{svc: svc, sessions: sessions, uploads: uploads, logger: logger, cookieSecure: cookieSecure}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	form, err := h.uploads.Parse(w, r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	defer form.Cleanup()
	in := RegisterInput{
		Username: form.Value("username"),
		Email:    form.Value("email"),
		FullName: form.Value("fullName"),
		Password: form.Value("password"),
	}
	if f, ok := form.File("avatar"); ok {
		in.AvatarPath = f.Path
	}
	if f, ok := form.File("coverImage"); ok {
		in.CoverPath = f.Path
	}
	u, err := h.svc.Register(r.Context(), in)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, u, "user registered successfully")
}

// LoginRequest login payload; either username or email identifies the account.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         *entity.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	u, err := h.svc.AuthenticatePassword(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	pair, err := h.sessions.Issue(r.Context(), u.ID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	auth.SetTokenCookies(w, pair, h.cookieSecure)
	h.logger.Debugw("user logged in", "user_id", u.ID)
	httpx.WriteJSON(w, http.StatusOK, loginResponse{User: u, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, "user logged in successfully")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	u, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	if err := h.sessions.Revoke(r.Context(), u.ID); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	auth.ClearTokenCookies(w, h.cookieSecure)
	httpx.WriteJSON(w, http.StatusOK, struct{}{}, "user logged out")
}

// RefreshRequest is the body form of the refresh call; the cookie wins when both are sent.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var token string
	if c, err := r.Cookie(auth.RefreshCookieName); err == nil {
		token = c.Value
	}
	if token == "" {
		var req RefreshRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Error(w, h.logger, err)
			return
		}
		token = req.RefreshToken
	}
	pair, err := h.sessions.Rotate(r.Context(), token)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	auth.SetTokenCookies(w, pair, h.cookieSecure)
	httpx.WriteJSON(w, http.StatusOK, pair, "access token refreshed")
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	u, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	var req changePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	if err := h.svc.ChangePassword(r.Context(), u.ID, req.OldPassword, req.NewPassword); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, struct{}{}, "password changed successfully")
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u, "current user fetched successfully")
}

type updateDetailsRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func (h *Handler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	u, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	var req updateDetailsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	updated, err := h.svc.UpdateDetails(r.Context(), u.ID, req.FullName, req.Email)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated, "account details updated successfully")
}

func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar", h.svc.UpdateAvatar, "avatar updated successfully")
}

func (h *Handler) UpdateCoverImage(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage", h.svc.UpdateCoverImage, "cover image updated successfully")
}

func (h *Handler) updateImage(w http.ResponseWriter, r *http.Request, field string,
	update func(context.Context, *entity.User, string) (*entity.User, error), msg string) {
	u, err := auth.CurrentUser(r)
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
	f, ok := form.File(field)
	if !ok {
		httpx.Error(w, h.logger, apperr.BadRequest(field+" file is missing"))
		return
	}
	updated, err := update(r.Context(), u, f.Path)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, updated, msg)
}

func (h *Handler) ChannelProfile(w http.ResponseWriter, r *http.Request) {
	u, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	p, err := h.svc.ChannelProfile(r.Context(), r.PathValue("username"), u.ID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p, "user channel fetched successfully")
}

func (h *Handler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	u, err := auth.CurrentUser(r)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	history, err := h.svc.WatchHistory(r.Context(), u.ID)
	if err != nil {
		httpx.Error(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, history, "watch history fetched successfully")
}
