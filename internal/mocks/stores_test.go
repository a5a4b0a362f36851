package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/generation"
	"github.com/phrazzld/studyrooms-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactStoreMirrorsPostgresSemantics(t *testing.T) {
	ctx := context.Background()
	s := NewArtifactStore()
	lessonID := uuid.New()

	_, err := s.GetRoom(ctx, lessonID, domain.RoomMemory)
	assert.ErrorIs(t, err, store.ErrArtifactNotFound)

	older := &domain.RoomContent{Room: domain.RoomMemory, Flashcards: []domain.Flashcard{{Front: "a", Back: "b"}}}
	newer := &domain.RoomContent{Room: domain.RoomMemory, Flashcards: []domain.Flashcard{{Front: "c", Back: "d"}}}
	require.NoError(t, s.SaveRoom(ctx, lessonID, older))
	require.NoError(t, s.SaveRoom(ctx, lessonID, newer))

	got, err := s.GetRoom(ctx, lessonID, domain.RoomMemory)
	require.NoError(t, err)
	assert.Equal(t, "c", got.Flashcards[0].Front)
	assert.Equal(t, 2, s.BatchCount(lessonID, domain.RoomMemory))
}

func TestClaimStoreAdmitsOneOwner(t *testing.T) {
	ctx := context.Background()
	s := NewClaimStore()
	lessonID := uuid.New()

	first, ok, err := s.TryClaim(ctx, lessonID, domain.RoomQuiz, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = s.TryClaim(ctx, lessonID, domain.RoomQuiz, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	s.Backdate(lessonID, domain.RoomQuiz, 2*time.Hour)
	second, ok, err := s.TryClaim(ctx, lessonID, domain.RoomQuiz, time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "stale claims are taken over")

	require.NoError(t, s.Release(ctx, lessonID, domain.RoomQuiz, first))
	_, ok, err = s.TryClaim(ctx, lessonID, domain.RoomQuiz, time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "releasing a superseded claim keeps the current one")

	require.NoError(t, s.MarkGenerated(ctx, lessonID, domain.RoomQuiz))
	require.NoError(t, s.Release(ctx, lessonID, domain.RoomQuiz, second))
	claim, err := s.Get(ctx, lessonID, domain.RoomQuiz)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimGenerated, claim.Status)
}

func TestMockProviderServesResponsesInOrder(t *testing.T) {
	p := &MockProvider{Responses: []Response{{Err: generation.ErrTransientFailure}, {Text: "{}"}}}

	_, err := p.Invoke(context.Background(), generation.Request{})
	assert.ErrorIs(t, err, generation.ErrTransientFailure)

	for i := 0; i < 2; i++ {
		text, err := p.Invoke(context.Background(), generation.Request{})
		require.NoError(t, err)
		assert.Equal(t, "{}", text)
	}
	assert.Equal(t, 3, p.CallCount())
}
