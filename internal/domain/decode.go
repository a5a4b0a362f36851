package domain

import (
	"encoding/json"
	"fmt"
)

// Default points awarded per question when the generated payload omits them.
const (
	DefaultQuizPoints  = 10
	DefaultMCQPoints   = 10
	DefaultShortPoints = 15
	DefaultLongPoints  = 25
)

// DecodeRoomContent decodes a generated JSON payload for room, fills in
// identifiers, points and difficulty the model left out, and validates the
// result.
func DecodeRoomContent(room RoomType, raw []byte) (*RoomContent, error) {
	content := &RoomContent{Room: room}

	switch room {
	case RoomClarity:
		var overview OverviewContent
		if err := json.Unmarshal(raw, &overview); err != nil {
			return nil, fmt.Errorf("%w: overview: %v", ErrInvalidFormat, err)
		}
		if !overview.Difficulty.IsValid() {
			overview.Difficulty = DifficultyIntermediate
		}
		content.Overview = &overview

	case RoomQuiz:
		var envelope struct {
			Questions []QuizQuestion `json:"questions"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("%w: quiz: %v", ErrInvalidFormat, err)
		}
		for i := range envelope.Questions {
			q := &envelope.Questions[i]
			if q.ID == "" {
				q.ID = fmt.Sprintf("quiz-%d", i+1)
			}
			if q.Points <= 0 {
				q.Points = DefaultQuizPoints
			}
			if !q.Difficulty.IsValid() {
				q.Difficulty = DifficultyIntermediate
			}
		}
		content.Questions = envelope.Questions

	case RoomMemory:
		var envelope struct {
			Flashcards []Flashcard `json:"flashcards"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("%w: flashcards: %v", ErrInvalidFormat, err)
		}
		for i := range envelope.Flashcards {
			f := &envelope.Flashcards[i]
			if f.ID == "" {
				f.ID = fmt.Sprintf("card-%d", i+1)
			}
			if !f.Difficulty.IsValid() {
				f.Difficulty = DifficultyIntermediate
			}
		}
		content.Flashcards = envelope.Flashcards

	case RoomTest:
		var envelope struct {
			Questions []TestQuestion `json:"questions"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("%w: test: %v", ErrInvalidFormat, err)
		}
		for i := range envelope.Questions {
			q := &envelope.Questions[i]
			if q.ID == "" {
				q.ID = fmt.Sprintf("test-%d", i+1)
			}
			if q.Points <= 0 {
				q.Points = defaultTestPoints(q.Kind)
			}
			if !q.Difficulty.IsValid() {
				q.Difficulty = DifficultyIntermediate
			}
		}
		content.Test = envelope.Questions

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRoomType, room)
	}

	if err := content.Validate(); err != nil {
		return nil, err
	}
	return content, nil
}

func defaultTestPoints(kind TestQuestionKind) int {
	switch kind {
	case TestKindShort:
		return DefaultShortPoints
	case TestKindLong:
		return DefaultLongPoints
	default:
		return DefaultMCQPoints
	}
}
