package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/service/auth"
)

// MockJWTService is an in-memory auth.JWTService. Tokens it issues, and
// tokens registered with Accept, validate to their user. Any other token
// yields Claims and ValidateErr, which default to ErrInvalidToken when both
// are unset and tokens are known.
type MockJWTService struct {
	Claims      *auth.Claims
	ValidateErr error
	IssueErr    error

	mu     sync.Mutex
	tokens map[string]uuid.UUID
}

var _ auth.JWTService = (*MockJWTService)(nil)

// NewMockJWTService returns a mock that accepts token for userID only.
func NewMockJWTService(token string, userID uuid.UUID) *MockJWTService {
	m := &MockJWTService{}
	m.Accept(token, userID)
	return m
}

// Accept registers token as valid for userID.
func (m *MockJWTService) Accept(token string, userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = make(map[string]uuid.UUID)
	}
	m.tokens[token] = userID
}

func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return m.GenerateTokenWithExpiry(ctx, userID, time.Time{})
}

// GenerateTokenWithExpiry issues an opaque token; the expiry is ignored.
func (m *MockJWTService) GenerateTokenWithExpiry(_ context.Context, userID uuid.UUID, _ time.Time) (string, error) {
	if m.IssueErr != nil {
		return "", m.IssueErr
	}
	token := "mock-" + uuid.NewString()
	m.Accept(token, userID)
	return token, nil
}

func (m *MockJWTService) ValidateToken(_ context.Context, token string) (*auth.Claims, error) {
	m.mu.Lock()
	userID, ok := m.tokens[token]
	known := len(m.tokens) > 0
	m.mu.Unlock()

	switch {
	case ok:
		return &auth.Claims{UserID: userID, TokenType: "access", Subject: userID.String()}, nil
	case m.Claims != nil || m.ValidateErr != nil:
		return m.Claims, m.ValidateErr
	case known:
		return nil, auth.ErrInvalidToken
	default:
		return nil, auth.ErrMissingToken
	}
}
