// Package auth issues, verifies, rotates and revokes the access/refresh token pair
// and guards mutations of owned resources.
package auth

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-vidtube-go/internal/user/entity"
)

// IdentityStore is the slice of the user repository the token lifecycle needs.
// Missing users are reported as sql.ErrNoRows.
type IdentityStore interface {
	GetByID(ctx context.Context, id snowflake.ID) (*entity.User, error)
	StoredRefreshToken(ctx context.Context, id snowflake.ID) (*string, error)
	SetRefreshToken(ctx context.Context, id snowflake.ID, token *string) error
}

// TokenPair is what login and rotation hand back to the client.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// Service owns the credential lifecycle. Only one refresh token per user is live:
// it is stored on the user row and every Issue overwrites it.
type Service struct {
	store   IdentityStore
	access  *TokenSigner
	refresh *TokenSigner
	logger  *zap.SugaredLogger
}

var errSharedSecret = errors.New("access and refresh secrets must differ")

// NewService validates the secrets in cfg and builds both signers.
// A refresh token must never verify as an access token, so the secrets must differ.
func NewService(store IdentityStore, cfg Config, logger *zap.SugaredLogger) (*Service, error) {
	if cfg.AccessSecret != "" && constantTimeEqual(cfg.AccessSecret, cfg.RefreshSecret) {
		return nil, errSharedSecret
	}
	access, err := NewTokenSigner(cfg.AccessSecret, cfg.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("access token signer: %w", err)
	}
	refresh, err := NewTokenSigner(cfg.RefreshSecret, cfg.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("refresh token signer: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{store: store, access: access, refresh: refresh, logger: logger}, nil
}

// Issue mints a new pair for userID and persists the refresh token, revoking any previous one.
func (s *Service) Issue(ctx context.Context, userID snowflake.ID) (*TokenPair, error) {
	accessToken, accessExp, err := s.access.Issue(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to sign access token", err)
	}
	refreshToken, refreshExp, err := s.refresh.Issue(userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to sign refresh token", err)
	}
	if err := s.store.SetRefreshToken(ctx, userID, &refreshToken); err != nil {
		return nil, apperr.Persistence("failed to store refresh token", err)
	}
	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccess checks an access token and loads its user without secrets.
func (s *Service) VerifyAccess(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, apperr.Unauthenticated("unauthorized request")
	}
	userID, err := s.access.Parse(token)
	if err != nil {
		s.logger.Debugw("access token rejected", "err", err)
		return nil, apperr.InvalidCredential("invalid access token")
	}
	u, err := s.store.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.InvalidCredential("invalid access token")
		}
		return nil, apperr.Persistence("failed to load user", err)
	}
	return u, nil
}

// Rotate exchanges a live refresh token for a new pair. A token that was already
// rotated or revoked no longer matches the stored value and is rejected even
// before it expires. Concurrent rotations are last-writer-wins.
func (s *Service) Rotate(ctx context.Context, token string) (*TokenPair, error) {
	if token == "" {
		return nil, apperr.Unauthenticated("unauthorized request")
	}
	userID, err := s.refresh.Parse(token)
	if err != nil {
		s.logger.Debugw("refresh token rejected", "err", err)
		return nil, apperr.InvalidCredential("invalid refresh token")
	}
	stored, err := s.store.StoredRefreshToken(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.InvalidCredential("invalid refresh token")
		}
		return nil, apperr.Persistence("failed to load user", err)
	}
	if stored == nil || !constantTimeEqual(*stored, token) {
		return nil, apperr.InvalidCredential("refresh token is expired or used")
	}
	return s.Issue(ctx, userID)
}

// Revoke clears the stored refresh token. Calling it twice is harmless.
func (s *Service) Revoke(ctx context.Context, userID snowflake.ID) error {
	if err := s.store.SetRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return apperr.Persistence("failed to clear refresh token", err)
	}
	return nil
}

func constantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
