package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/api/shared"
	"github.com/phrazzld/studyrooms-api/internal/platform/logger"
	"github.com/phrazzld/studyrooms-api/internal/redact"
	"github.com/phrazzld/studyrooms-api/internal/service/auth"
)

// UserIDKey is the context key under which the authenticated user ID is stored.
const UserIDKey = shared.UserIDContextKey

// AuthMiddleware authenticates requests with bearer access tokens.
type AuthMiddleware struct {
	tokens auth.TokenValidator
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(tokens auth.TokenValidator) *AuthMiddleware {
	if tokens == nil {
		panic("token validator cannot be nil")
	}
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate validates the Authorization header and stores the token's
// user ID in the request context. Requests without a valid access token are
// answered with 401 and never reach next.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			msg := "Invalid authorization format"
			if r.Header.Get("Authorization") == "" {
				msg = "Authorization header required"
			}
			shared.RespondWithError(w, r, http.StatusUnauthorized, msg)
			return
		}

		claims, err := m.tokens.ValidateToken(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Token expired", err)
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrWrongTokenType),
				errors.Is(err, auth.ErrMissingToken):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid token", err,
					shared.WithElevatedLogLevel())
			default:
				logger.FromContext(r.Context()).Error("failed to validate token",
					slog.String("error", redact.Error(err)))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		reqLog := logger.FromContext(ctx).With(slog.String("user_id", claims.UserID.String()))
		reqLog.DebugContext(ctx, "request authenticated",
			slog.Duration("token_expires_in", claims.Remaining(time.Now())))
		ctx = logger.WithLogger(ctx, reqLog)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUserID extracts the authenticated user ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	return userID, ok
}
