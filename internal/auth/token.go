package auth

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ovaphlow/pitchfork/service-vidtube-go/pkg/utilities"
)

var (
	errEmptyKey       = errors.New("signing key is empty")
	errInvalidToken   = errors.New("invalid token")
	errInvalidSubject = errors.New("invalid token subject")
)

// Claims carries the user id in the standard subject claim. Every token gets a
// unique jti so two tokens minted within the same second still differ.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenSigner signs and verifies HS256 tokens for one credential class.
type TokenSigner struct {
	Key []byte
	TTL time.Duration
	// now is overridable in tests.
	now func() time.Time
}

// NewTokenSigner returns a signer; the key must not be empty.
func NewTokenSigner(key string, ttl time.Duration) (*TokenSigner, error) {
	if key == "" {
		return nil, errEmptyKey
	}
	return &TokenSigner{Key: []byte(key), TTL: ttl, now: time.Now}, nil
}

// Issue mints a token for userID and returns it with its expiry.
func (s *TokenSigner) Issue(userID snowflake.ID) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.TTL)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        utilities.NewKSUID(),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.Key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Parse verifies signature and expiry and returns the embedded user id.
func (s *TokenSigner) Parse(token string) (snowflake.ID, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.Key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, err
	}
	if !t.Valid {
		return 0, errInvalidToken
	}
	id, err := utilities.ParseID(claims.Subject)
	if err != nil {
		return 0, errInvalidSubject
	}
	return id, nil
}
