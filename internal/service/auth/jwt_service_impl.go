package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/config"
	"github.com/phrazzld/studyrooms-api/internal/platform/logger"
)

const (
	// MinSecretLength is the shortest accepted HMAC signing secret.
	MinSecretLength = 32

	// Issuer is stamped into every token and required on validation, so
	// tokens signed with a shared secret by another service are refused.
	Issuer = "studyrooms-api"

	accessTokenType = "access"
	clockSkew       = 2 * time.Minute
)

var signingMethod = jwt.SigningMethodHS256

// tokenClaims is the wire form of an access token.
type tokenClaims struct {
	UserID    uuid.UUID `json:"uid"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

// hmacJWTService signs and verifies HS256 access tokens.
type hmacJWTService struct {
	key      []byte
	lifetime time.Duration
	now      func() time.Time
	parser   *jwt.Parser
}

var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService creates the token service from the auth settings.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	return newJWTService(cfg.JWTSecret, cfg.TokenLifetime(), time.Now)
}

func newJWTService(secret string, lifetime time.Duration, now func() time.Time) (*hmacJWTService, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	s := &hmacJWTService{key: []byte(secret), lifetime: lifetime, now: now}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Name}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return s, nil
}

func (s *hmacJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.GenerateTokenWithExpiry(ctx, userID, s.now().Add(s.lifetime))
}

func (s *hmacJWTService) GenerateTokenWithExpiry(
	ctx context.Context,
	userID uuid.UUID,
	expiresAt time.Time,
) (string, error) {
	claims := tokenClaims{
		UserID:    userID,
		TokenType: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.key)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign access token", "error", err, "user_id", userID)
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, issuer and expiry, then requires an
// access token naming a user.
func (s *hmacJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}
	log := logger.FromContext(ctx)

	var claims tokenClaims
	if _, err := s.parser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	}); err != nil {
		mapped := mapParseError(err)
		log.Debug("access token rejected", "reason", mapped, "error", err)
		return nil, mapped
	}

	switch {
	case claims.TokenType != accessTokenType:
		log.Debug("access token rejected", "reason", ErrWrongTokenType, "token_type", claims.TokenType)
		return nil, ErrWrongTokenType
	case claims.UserID == uuid.Nil:
		log.Debug("access token rejected", "reason", "missing user id")
		return nil, ErrInvalidToken
	}

	return &Claims{
		UserID:    claims.UserID,
		TokenType: claims.TokenType,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrTokenNotYetValid
	default:
		return ErrInvalidToken
	}
}
