package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/config"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "roomctl-test-secret-at-least-32-characters"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("STUDYROOMS_AUTH_JWT_SECRET", testSecret)
	userID := uuid.New()

	out, _, err := execute(t, "token", "--user", userID.String(), "--ttl", "5m", "-q")
	require.NoError(t, err)

	svc, err := auth.NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	claims, err := svc.ValidateToken(context.Background(), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), claims.ExpiresAt, 10*time.Second)
}

func TestTokenCommandErrors(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("STUDYROOMS_AUTH_JWT_SECRET", "")
		_, _, err := execute(t, "token")
		assert.Error(t, err)
	})

	t.Run("bad user id", func(t *testing.T) {
		t.Setenv("STUDYROOMS_AUTH_JWT_SECRET", testSecret)
		_, _, err := execute(t, "token", "--user", "not-a-uuid")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid --user")
	})
}

func TestClassifyCommand(t *testing.T) {
	out, _, err := execute(t, "classify", "Fundamental", "Rights", "for", "SSC", "CGL")
	require.NoError(t, err)

	assert.Contains(t, out, "category:   constitution")
	assert.Contains(t, out, "exam_focus: ssc")
	assert.Contains(t, out, "source:     topic")
}

func TestGenerateCommandDemo(t *testing.T) {
	tests := []struct {
		room  string
		check func(t *testing.T, c domain.RoomContent)
	}{
		{"clarity", func(t *testing.T, c domain.RoomContent) {
			require.NotNil(t, c.Overview)
			assert.NotEmpty(t, c.Overview.Summary)
		}},
		{"quiz", func(t *testing.T, c domain.RoomContent) { assert.NotEmpty(t, c.Questions) }},
		{"flashcards", func(t *testing.T, c domain.RoomContent) { assert.NotEmpty(t, c.Flashcards) }},
		{"test", func(t *testing.T, c domain.RoomContent) { assert.NotEmpty(t, c.Test) }},
	}

	for _, tt := range tests {
		t.Run(tt.room, func(t *testing.T) {
			out, _, err := execute(t, "generate", "--mode", "demo", "--room", tt.room, "Mughal Empire")
			require.NoError(t, err)

			var content domain.RoomContent
			require.NoError(t, json.Unmarshal([]byte(out), &content))
			tt.check(t, content)
		})
	}
}

func TestGenerateCommandShowPrompt(t *testing.T) {
	_, stderr, err := execute(t, "generate", "--mode", "demo", "--show-prompt", "Photosynthesis")
	require.NoError(t, err)
	assert.Contains(t, stderr, "--- system ---")
	assert.Contains(t, stderr, "Photosynthesis")
}

func TestGenerateCommandRejectsUnknownRoom(t *testing.T) {
	_, _, err := execute(t, "generate", "--mode", "demo", "--room", "lounge", "Mughal Empire")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRoomType)
}
