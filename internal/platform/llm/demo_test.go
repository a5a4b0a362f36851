package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/generation"
	"github.com/phrazzld/studyrooms-api/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemo_EveryRoomAndCategoryValidates(t *testing.T) {
	t.Parallel()

	d := NewDemo()
	for _, c := range domain.Categories() {
		for _, room := range domain.RoomTypes() {
			p, err := prompt.ComposeRoom(room, prompt.Input{
				Content:   "The Mughal Empire\nFounded in 1526 by Babur.",
				Category:  c,
				ExamFocus: domain.ExamUPSC,
			}, nil)
			require.NoError(t, err)

			out, err := d.Invoke(context.Background(), generation.Request{
				System: p.System, User: p.User, JSON: true, Schema: p.Schema.Name,
			})
			require.NoError(t, err, "%s/%s", c, room)
			require.NoError(t, generation.Validate(p.Schema, []byte(out)), "%s/%s", c, room)

			if room == domain.RoomClarity {
				var overview domain.OverviewContent
				require.NoError(t, json.Unmarshal([]byte(out), &overview))
				require.NoError(t, overview.Validate())
				assert.Contains(t, overview.Summary, "The Mughal Empire")
			}
		}
	}
}

func TestDemo_Deterministic(t *testing.T) {
	t.Parallel()

	req := generation.Request{User: "Study material:\n\"\"\"\nPhotosynthesis\n\"\"\"", Schema: "room_quiz"}
	first, err := NewDemo().Invoke(context.Background(), req)
	require.NoError(t, err)
	second, err := NewDemo().Invoke(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "Photosynthesis")
}

func TestDemo_UnknownSchema(t *testing.T) {
	t.Parallel()

	_, err := NewDemo().Invoke(context.Background(), generation.Request{Schema: "room_lounge"})
	assert.ErrorIs(t, err, generation.ErrInvalidResponse)
}

func TestDemo_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDemo().Invoke(ctx, generation.Request{Schema: "room_quiz"})
	assert.ErrorIs(t, err, context.Canceled)
}
