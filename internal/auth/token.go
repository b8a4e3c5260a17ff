package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ErlanBelekov/shiptrack/internal/domain"
)

const defaultTokenTTL = 24 * time.Hour

// Claims is the JWT payload: sub carries the user ID.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 bearer tokens.
type TokenManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenManager(key []byte, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenManager{key: key, ttl: ttl, now: time.Now}
}

// Issue signs a token for id. Each token gets a unique jti, so two tokens
// minted in the same second for the same user still differ.
func (m *TokenManager) Issue(id domain.Identity) (string, error) {
	now := m.now()
	claims := Claims{
		Role: id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, algorithm and expiry. Every failure is reported
// as domain.ErrUnauthenticated.
func (m *TokenManager) Parse(raw string) (domain.Identity, error) {
	if raw == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	if claims.Subject == "" {
		return domain.Identity{}, domain.ErrUnauthenticated
	}

	return domain.Identity{UserID: claims.Subject, Role: claims.Role}, nil
}
