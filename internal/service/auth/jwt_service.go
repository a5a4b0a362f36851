package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenIssuer mints access tokens. Accounts live with an external identity
// provider, so the API itself only issues tokens for development and tests.
type TokenIssuer interface {
	// GenerateToken signs a token for userID with the configured lifetime.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)
	GenerateTokenWithExpiry(ctx context.Context, userID uuid.UUID, expiresAt time.Time) (string, error)
}

// TokenValidator checks bearer tokens presented to the API.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

// JWTService is both halves, backed by HMAC-signed JWTs.
type JWTService interface {
	TokenIssuer
	TokenValidator
}

// Claims identify the learner behind a validated token.
type Claims struct {
	UserID    uuid.UUID `json:"uid,omitempty"`
	TokenType string    `json:"type,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}

// Remaining reports how long the token stays valid after now.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if c == nil || c.ExpiresAt.IsZero() {
		return 0
	}
	return max(c.ExpiresAt.Sub(now), 0)
}
