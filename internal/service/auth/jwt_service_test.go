package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

func newTestJWTService(t *testing.T, secret string, lifetime time.Duration, now func() time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newJWTService(secret, lifetime, now)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 30})
	require.NoError(t, err)
	assert.NotNil(t, svc)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 30})
	assert.ErrorIs(t, err, ErrWeakSecret)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokenLifetime := 60 * time.Minute
	userID := uuid.New()

	svc := newTestJWTService(t, testSecret, tokenLifetime, func() time.Time { return fixedTime })

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, Issuer, mustIssuer(t, token))
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(tokenLifetime).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestGenerateTokenWithExpiry(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestJWTService(t, testSecret, time.Hour, func() time.Time { return fixedTime })
	userID := uuid.New()

	token, err := svc.GenerateTokenWithExpiry(context.Background(), userID, fixedTime.Add(24*time.Hour))
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, fixedTime.Add(24*time.Hour).Unix(), claims.ExpiresAt.Unix())

	expired, err := svc.GenerateTokenWithExpiry(context.Background(), userID, fixedTime.Add(-time.Hour))
	require.NoError(t, err)
	_, err = svc.ValidateToken(context.Background(), expired)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

type validateCase struct {
	name      string
	setupFunc func(t *testing.T) (JWTService, string)
	wantErr   error
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	tokenLifetime := 60 * time.Minute
	userID := uuid.New()

	tests := []validateCase{
		{
			name: "valid token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, testSecret, tokenLifetime, func() time.Time { return fixedTime })
				token, _ := svc.GenerateToken(context.Background(), userID)
				return svc, token
			},
		},
		{
			name: "expired token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				genSvc := newTestJWTService(t, testSecret, tokenLifetime, func() time.Time { return fixedTime })
				token, _ := genSvc.GenerateToken(context.Background(), userID)

				valSvc := newTestJWTService(t, testSecret, tokenLifetime, func() time.Time {
					return fixedTime.Add(tokenLifetime + time.Hour)
				})
				return valSvc, token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "within clock skew",
			setupFunc: func(t *testing.T) (JWTService, string) {
				genSvc := newTestJWTService(t, testSecret, tokenLifetime, func() time.Time { return fixedTime })
				token, _ := genSvc.GenerateToken(context.Background(), userID)

				valSvc := newTestJWTService(t, testSecret, tokenLifetime, func() time.Time {
					return fixedTime.Add(tokenLifetime + time.Minute)
				})
				return valSvc, token
			},
		},
		{
			name: "invalid signature",
			setupFunc: func(t *testing.T) (JWTService, string) {
				genSvc := newTestJWTService(t, testSecret, tokenLifetime, func() time.Time { return fixedTime })
				token, _ := genSvc.GenerateToken(context.Background(), userID)

				valSvc := newTestJWTService(t, wrongSecret, tokenLifetime, func() time.Time { return fixedTime })
				return valSvc, token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, testSecret, tokenLifetime, func() time.Time { return fixedTime })
				return svc, "this.is.not.a.valid.jwt.token"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "empty token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return newTestJWTService(t, testSecret, tokenLifetime, time.Now), ""
			},
			wantErr: ErrMissingToken,
		},
		{
			name: "refresh token type",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, testSecret, tokenLifetime, func() time.Time { return fixedTime })
				claims := tokenClaims{
					UserID:    userID,
					TokenType: "refresh",
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    Issuer,
						Subject:   userID.String(),
						IssuedAt:  jwt.NewNumericDate(fixedTime),
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return svc, token
			},
			wantErr: ErrWrongTokenType,
		},
		{
			name: "none algorithm",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := newTestJWTService(t, testSecret, tokenLifetime, func() time.Time { return fixedTime })
				claims := tokenClaims{
					UserID:    userID,
					TokenType: "access",
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    Issuer,
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).
					SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return svc, token
			},
			wantErr: ErrInvalidToken,
		},
	}

	foreign := func(mutate func(*tokenClaims)) func(t *testing.T) (JWTService, string) {
		return func(t *testing.T) (JWTService, string) {
			svc := newTestJWTService(t, testSecret, tokenLifetime, func() time.Time { return fixedTime })
			claims := tokenClaims{
				UserID:    userID,
				TokenType: "access",
				RegisteredClaims: jwt.RegisteredClaims{
					Issuer:    Issuer,
					ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
				},
			}
			mutate(&claims)
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
			require.NoError(t, err)
			return svc, token
		}
	}
	tests = append(tests,
		validateCase{"foreign issuer", foreign(func(c *tokenClaims) { c.Issuer = "another-service" }), ErrInvalidToken},
		validateCase{"missing expiry", foreign(func(c *tokenClaims) { c.ExpiresAt = nil }), ErrInvalidToken},
		validateCase{"missing user", foreign(func(c *tokenClaims) { c.UserID = uuid.Nil }), ErrInvalidToken},
		validateCase{"not yet valid", foreign(func(c *tokenClaims) {
			c.NotBefore = jwt.NewNumericDate(fixedTime.Add(10 * time.Minute))
		}), ErrTokenNotYetValid},
	)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tt.setupFunc(t)
			claims, err := svc.ValidateToken(context.Background(), token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}

func mustIssuer(t *testing.T, token string) string {
	t.Helper()
	var claims tokenClaims
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	return claims.Issuer
}

func TestClaimsRemaining(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 90*time.Second, (&Claims{ExpiresAt: now.Add(90 * time.Second)}).Remaining(now))
	assert.Zero(t, (&Claims{ExpiresAt: now.Add(-time.Minute)}).Remaining(now))
	assert.Zero(t, (&Claims{}).Remaining(now))

	var nilClaims *Claims
	assert.Zero(t, nilClaims.Remaining(now))
}
