// Package router mounts every /api/v1 endpoint on a net/http ServeMux.
package router

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/comment"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/dashboard"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/health"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/like"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/subscription"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/tweet"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/video"
)

const prefix = "/api/v1"

type Config struct {
	Addr        string
	CORSOrigins []string
}

// ConfigFromEnv reads HTTP_ADDR and the comma separated CORS_ORIGIN list.
func ConfigFromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8000"
	}
	var origins []string
	for _, o := range strings.Split(os.Getenv("CORS_ORIGIN"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	return Config{Addr: addr, CORSOrigins: origins}
}

// Handlers groups the per-domain handlers the router mounts.
type Handlers struct {
	Users         *user.Handler
	Videos        *video.Handler
	Comments      *comment.Handler
	Likes         *like.Handler
	Tweets        *tweet.Handler
	Subscriptions *subscription.Handler
	Dashboard     *dashboard.Handler
	Health        *health.Handler
}

func corsOptions(cfg Config) cors.Options {
	return cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// RegisterRoutes builds the API handler. Everything except registration, login,
// token refresh and the health check requires a verified access token.
func RegisterRoutes(cfg Config, h Handlers, verifier auth.Verifier, logger *zap.SugaredLogger) http.Handler {
	mux := http.NewServeMux()
	requireUser := auth.RequireUser(verifier, logger)

	public := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(withPrefix(pattern), fn)
	}
	private := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(withPrefix(pattern), requireUser(fn))
	}

	public("GET /healthcheck", h.Health.Check)

	// users
	public("POST /users/register", h.Users.Register)
	public("POST /users/login", h.Users.Login)
	public("POST /users/refresh-token", h.Users.RefreshToken)
	private("POST /users/logout", h.Users.Logout)
	private("POST /users/change-password", h.Users.ChangePassword)
	private("GET /users/current-user", h.Users.CurrentUser)
	private("POST /users/current-user", h.Users.CurrentUser)
	private("PATCH /users/update-detail", h.Users.UpdateDetails)
	private("PATCH /users/avatar", h.Users.UpdateAvatar)
	private("PATCH /users/update-cover", h.Users.UpdateCoverImage)
	private("GET /users/c/{username}", h.Users.ChannelProfile)
	private("GET /users/history", h.Users.WatchHistory)

	// videos
	private("GET /videos", h.Videos.List)
	private("POST /videos", h.Videos.Publish)
	private("GET /videos/{videoId}", h.Videos.Get)
	private("PATCH /videos/{videoId}", h.Videos.Update)
	private("DELETE /videos/{videoId}", h.Videos.Delete)
	private("PATCH /videos/toggle/publish/{videoId}", h.Videos.TogglePublish)

	// comments
	private("GET /comments/{videoId}", h.Comments.List)
	private("POST /comments/{videoId}", h.Comments.Add)
	private("PATCH /comments/c/{commentId}", h.Comments.Update)
	private("DELETE /comments/c/{commentId}", h.Comments.Delete)

	// likes
	private("POST /likes/toggle/v/{videoId}", h.Likes.ToggleVideo)
	private("POST /likes/toggle/c/{commentId}", h.Likes.ToggleComment)
	private("POST /likes/toggle/t/{tweetId}", h.Likes.ToggleTweet)
	private("GET /likes/videos", h.Likes.LikedVideos)

	// tweets
	private("POST /tweets", h.Tweets.Create)
	private("GET /tweets/user/{userId}", h.Tweets.ListByUser)
	private("PATCH /tweets/{tweetId}", h.Tweets.Update)
	private("DELETE /tweets/{tweetId}", h.Tweets.Delete)

	// subscriptions
	private("POST /subscriptions/c/{channelId}", h.Subscriptions.Toggle)
	private("GET /subscriptions/c/{channelId}", h.Subscriptions.Subscribers)
	private("GET /subscriptions/u/{subscriberId}", h.Subscriptions.Channels)

	// dashboard
	private("GET /dashboard/stats/{channelId}", h.Dashboard.Stats)
	private("GET /dashboard/videos/{channelId}", h.Dashboard.Videos)

	var handler http.Handler = mux
	handler = SecurityHeadersMiddleware()(handler)
	handler = cors.Handler(corsOptions(cfg))(handler)
	handler = LoggingMiddleware(logger)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}

// withPrefix turns "GET /users/login" into "GET /api/v1/users/login".
func withPrefix(pattern string) string {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		return prefix + pattern
	}
	return method + " " + prefix + path
}
