package security

import (
	"errors"
	"fmt"
	"time"

	"calc_service/internal/common"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claim set; the user ID travels in Subject.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 bearer tokens. The signing
// key and TTL are fixed at construction, there is no rotation.
type TokenManager struct {
	key []byte
	ttl time.Duration
}

func NewTokenManager(key []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{key: key, ttl: ttl}
}

// Issue signs a token for userID expiring after the configured TTL.
func (m *TokenManager) Issue(userID string) (string, error) {
	return m.IssueWithTTL(userID, m.ttl)
}

func (m *TokenManager) IssueWithTTL(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	tokenString, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("security.TokenManager.Issue: %w", err)
	}
	return tokenString, nil
}

// Validate checks signature and expiry and returns the embedded user ID.
func (m *TokenManager) Validate(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.key, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", common.ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", common.ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenMalformed):
			return "", common.ErrMalformedToken
		default:
			return "", fmt.Errorf("%v: %w", err, common.ErrMalformedToken)
		}
	}
	if !token.Valid || claims.Subject == "" {
		return "", common.ErrMalformedToken
	}
	return claims.Subject, nil
}
