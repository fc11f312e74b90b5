package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/upload"
)

type testServer struct {
	handler  *Handler
	sessions *auth.Service
	mux      *http.ServeMux
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	svc, repo, _ := newTestUserService(t)
	registerAlice(t, svc)

	logger := zap.NewNop().Sugar()
	sessions, err := auth.NewService(repo, auth.Config{
		AccessSecret:  "access",
		AccessTTL:     time.Minute,
		RefreshSecret: "refresh",
		RefreshTTL:    time.Hour,
	}, logger)
	require.NoError(t, err)

	h := NewHandler(svc, sessions, upload.NewBuffer(upload.Config{TempDir: t.TempDir()}, logger), logger, false)
	protect := auth.RequireUser(sessions, logger)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /refresh-token", h.RefreshToken)
	mux.Handle("POST /logout", protect(http.HandlerFunc(h.Logout)))
	mux.Handle("POST /change-password", protect(http.HandlerFunc(h.ChangePassword)))
	mux.Handle("GET /current-user", protect(http.HandlerFunc(h.CurrentUser)))
	return &testServer{handler: h, sessions: sessions, mux: mux}
}

func (s *testServer) do(t *testing.T, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if into != nil {
		require.NoError(t, json.Unmarshal(env.Data, into))
	}
	return env
}

func login(t *testing.T, s *testServer) auth.TokenPair {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/login", LoginRequest{Username: "alice", Password: "s3cret"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out loginResponse
	decode(t, rec, &out)
	assert.Equal(t, "alice", out.User.Username)
	assert.Len(t, rec.Result().Cookies(), 2)
	return auth.TokenPair{AccessToken: out.AccessToken, RefreshToken: out.RefreshToken}
}

func TestLoginWrongPassword(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/login", LoginRequest{Username: "alice", Password: "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	env := decode(t, rec, nil)
	assert.False(t, env.Success)
}

func TestRefreshTokenRotation(t *testing.T) {
	s := newTestServer(t)
	first := login(t, s)

	rec := s.do(t, http.MethodPost, "/refresh-token", RefreshRequest{RefreshToken: first.RefreshToken}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var second auth.TokenPair
	decode(t, rec, &second)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.NotEqual(t, first.AccessToken, second.AccessToken)

	rec = s.do(t, http.MethodPost, "/refresh-token", RefreshRequest{RefreshToken: first.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/refresh-token", RefreshRequest{RefreshToken: second.RefreshToken}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshTokenFromCookie(t *testing.T) {
	s := newTestServer(t)
	pair := login(t, s)

	req := httptest.NewRequest(http.MethodPost, "/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: auth.RefreshCookieName, Value: pair.RefreshToken})
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshTokenMissing(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/refresh-token", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	s := newTestServer(t)
	pair := login(t, s)

	rec := s.do(t, http.MethodPost, "/logout", nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.Empty(t, c.Value)
	}

	rec = s.do(t, http.MethodPost, "/refresh-token", RefreshRequest{RefreshToken: pair.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/logout", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	s := newTestServer(t)
	pair := login(t, s)

	rec := s.do(t, http.MethodPost, "/change-password", changePasswordRequest{OldPassword: "bad", NewPassword: "n"}, pair.AccessToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/change-password", changePasswordRequest{OldPassword: "s3cret", NewPassword: "n3w"}, pair.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/login", LoginRequest{Email: "alice@example.com", Password: "n3w"}, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCurrentUserEndpoint(t *testing.T) {
	s := newTestServer(t)
	pair := login(t, s)

	rec := s.do(t, http.MethodGet, "/current-user", nil, pair.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "alice", body["username"])
	assert.NotContains(t, body, "passwordHash")

	rec = s.do(t, http.MethodGet, "/current-user", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
