package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pharma-elog-backend/internal/apperr"
	"pharma-elog-backend/internal/model"
)

// TokenConfig holds the signing parameters for session tokens.
type TokenConfig struct {
	Issuer     string
	TTL        time.Duration
	SigningKey []byte // HS256 secret
}

// SessionClaims are the JWT claims carried by a session token. Role is a
// convenience for request logging; core operations always re-load the user
// so deactivation takes effect immediately.
type SessionClaims struct {
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and parses HS256 session tokens.
type TokenManager struct {
	cfg TokenConfig
	now func() time.Time
}

// NewTokenManager creates a TokenManager using the wall clock.
func NewTokenManager(cfg TokenConfig) *TokenManager {
	return &TokenManager{cfg: cfg, now: time.Now}
}

// Issue signs a session token for the user.
func (t *TokenManager) Issue(user *model.User) (string, error) {
	now := t.now().UTC()
	claims := SessionClaims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    t.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.TTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.cfg.SigningKey)
}

// Parse validates a session token and returns its claims.
func (t *TokenManager) Parse(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.cfg.SigningKey, nil
	}, jwt.WithIssuer(t.cfg.Issuer), jwt.WithTimeFunc(func() time.Time { return t.now() }))
	if err != nil || !token.Valid {
		return nil, &apperr.AuthenticationError{Message: "invalid or expired session"}
	}
	return claims, nil
}
