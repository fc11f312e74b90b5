package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/httpx"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
)

type contextKey string

const userContextKey contextKey = "authenticatedUser"

// Verifier resolves an access token to the identity it was issued for.
type Verifier interface {
	VerifyAccess(ctx context.Context, token string) (*entity.User, error)
}

// ContextWithUser stores the verified identity in ctx.
func ContextWithUser(ctx context.Context, u *entity.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// UserFromContext returns the identity attached by RequireUser, if any.
func UserFromContext(ctx context.Context) (*entity.User, bool) {
	u, ok := ctx.Value(userContextKey).(*entity.User)
	return u, ok && u != nil
}

// ExtractAccessToken reads the access token from the accessToken cookie, falling
// back to an Authorization: Bearer header. The cookie wins when both are present.
func ExtractAccessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > len("bearer ") && strings.EqualFold(h[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(h[len("bearer "):])
	}
	return ""
}

// RequireUser rejects requests without a valid access token and attaches the
// resolved identity to the request context otherwise.
func RequireUser(v Verifier, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := v.VerifyAccess(r.Context(), ExtractAccessToken(r))
			if err != nil {
				httpx.Error(w, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), u)))
		})
	}
}

// CurrentUser is used by handlers mounted behind RequireUser.
func CurrentUser(r *http.Request) (*entity.User, error) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		return nil, apperr.Unauthenticated("unauthorized request")
	}
	return u, nil
}
