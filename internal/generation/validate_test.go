package generation

import (
	"encoding/json"
	"testing"

	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mughalOverview = `{
  "summary": "The Mughal Empire ruled most of the subcontinent from 1526 to 1857.",
  "highlights": ["Founded by Babur in 1526", "Peak under Akbar"],
  "examTips": ["Link Akbar's policies to Din-i-Ilahi"],
  "difficulty": "intermediate",
  "estimatedTime": "15 min",
  "tabs": [
    {"id": "rulers", "title": "Key Rulers", "type": "rulers", "content": [
      {"name": "Babur", "dynasty": "Mughal", "period": "1526-1530", "capital": "Agra", "achievements": ["First Battle of Panipat"]}
    ]},
    {"id": "timeline", "title": "Timeline", "type": "timeline", "content": [
      {"year": "1526", "event": "First Battle of Panipat", "significance": "Founded the empire"}
    ]},
    {"id": "key_events", "title": "Key Events", "type": "list", "content": [
      {"title": "Battle of Haldighati", "description": "Akbar against Maharana Pratap, 1576"}
    ]},
    {"id": "exam_points", "title": "Exam Points", "type": "points", "content": [
      "Mansabdari system introduced by Akbar"
    ]}
  ]
}`

func TestValidate_Overview(t *testing.T) {
	t.Parallel()

	s := schema.ForCategory(domain.CategoryHistoricalPeriod)
	require.NoError(t, Validate(s, []byte(mughalOverview)))

	var overview domain.OverviewContent
	require.NoError(t, json.Unmarshal([]byte(mughalOverview), &overview))
	require.NoError(t, overview.Validate())
}

func TestValidate_OverviewRejects(t *testing.T) {
	t.Parallel()

	s := schema.ForCategory(domain.CategoryHistoricalPeriod)

	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing summary", doc: `{"tabs":[{"id":"exam_points","title":"Exam Points","type":"points","content":["x"]}]}`},
		{name: "unknown tab id", doc: `{"summary":"s","tabs":[{"id":"gossip","title":"G","type":"points","content":["x"]}]}`},
		{name: "wrong item shape", doc: `{"summary":"s","tabs":[{"id":"timeline","title":"T","type":"timeline","content":["1526"]}]}`},
		{name: "type mismatch", doc: `{"summary":"s","tabs":[{"id":"rulers","title":"R","type":"list","content":[{"name":"Babur"}]}]}`},
		{name: "empty content", doc: `{"summary":"s","tabs":[{"id":"exam_points","title":"E","type":"points","content":[]}]}`},
		{name: "bad difficulty", doc: `{"summary":"s","difficulty":"legendary","tabs":[{"id":"exam_points","title":"E","type":"points","content":["x"]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.ErrorIs(t, Validate(s, []byte(tt.doc)), ErrInvalidResponse)
		})
	}
}

func TestValidate_RoomSchemas(t *testing.T) {
	t.Parallel()

	memory := schema.ForRoom(domain.RoomMemory, domain.CategoryGeneral)
	assert.NoError(t, Validate(memory, []byte(`{"flashcards":[{"front":"1526","back":"Panipat"}]}`)))
	assert.ErrorIs(t, Validate(memory, []byte(`{"flashcards":[{"front":"1526"}]}`)), ErrInvalidResponse)

	test := schema.ForRoom(domain.RoomTest, domain.CategoryGeneral)
	assert.NoError(t, Validate(test, []byte(
		`{"questions":[{"question":"Explain the Mansabdari system.","type":"long","modelAnswer":"A ranking system.","points":20}]}`)))
	assert.ErrorIs(t, Validate(test, []byte(`{"questions":[{"question":"Q","type":"essay"}]}`)), ErrInvalidResponse)
}

func TestValidate_NotJSON(t *testing.T) {
	t.Parallel()

	err := Validate(schema.Schema{Name: "anything"}, []byte("{oops"))
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
