// Package placeholder holds the fixed content shown for a room whose
// generated artifact is not available yet. Placeholders are deterministic,
// schema-conformant and never persisted.
package placeholder

import (
	"encoding/json"
	"fmt"

	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/schema"
)

// Quiz is the placeholder quiz.
func Quiz() []domain.QuizQuestion {
	return []domain.QuizQuestion{
		{
			ID:            "placeholder-quiz-1",
			Question:      "What is the capital of India?",
			Options:       []string{"Mumbai", "New Delhi", "Kolkata", "Chennai"},
			CorrectAnswer: 1,
			Points:        10,
			Difficulty:    domain.DifficultyBeginner,
			Explanation:   "New Delhi has been the capital of India since 1931.",
		},
		{
			ID:            "placeholder-quiz-2",
			Question:      "Which Article of the Indian Constitution abolishes untouchability?",
			Options:       []string{"Article 14", "Article 15", "Article 17", "Article 21"},
			CorrectAnswer: 2,
			Points:        10,
			Difficulty:    domain.DifficultyIntermediate,
			Explanation:   "Article 17 abolishes untouchability and forbids its practice in any form.",
		},
		{
			ID:            "placeholder-quiz-3",
			Question:      "Who was the first Prime Minister of India?",
			Options:       []string{"Sardar Vallabhbhai Patel", "Dr. Rajendra Prasad", "Jawaharlal Nehru", "Lal Bahadur Shastri"},
			CorrectAnswer: 2,
			Points:        10,
			Difficulty:    domain.DifficultyBeginner,
			Explanation:   "Jawaharlal Nehru served as Prime Minister from 1947 to 1964.",
		},
	}
}

// Flashcards is the placeholder memory room.
func Flashcards() []domain.Flashcard {
	return []domain.Flashcard{
		{
			ID:         "placeholder-card-1",
			Front:      "Capital of India",
			Back:       "New Delhi",
			Category:   "geography",
			Difficulty: domain.DifficultyBeginner,
		},
		{
			ID:         "placeholder-card-2",
			Front:      "Article 17",
			Back:       "Abolition of untouchability",
			Category:   "constitution",
			Difficulty: domain.DifficultyIntermediate,
			Hint:       "Part III, Right to Equality",
		},
		{
			ID:         "placeholder-card-3",
			Front:      "First Prime Minister of India",
			Back:       "Jawaharlal Nehru (1947-1964)",
			Category:   "history",
			Difficulty: domain.DifficultyBeginner,
		},
	}
}

// Test is the placeholder test room.
func Test() []domain.TestQuestion {
	second := 1
	return []domain.TestQuestion{
		{
			ID:            "placeholder-test-1",
			Question:      "Which Article of the Indian Constitution abolishes untouchability?",
			Kind:          domain.TestKindMCQ,
			Options:       []string{"Article 15", "Article 17", "Article 19", "Article 21"},
			CorrectAnswer: &second,
			Points:        10,
			Difficulty:    domain.DifficultyIntermediate,
		},
		{
			ID:          "placeholder-test-2",
			Question:    "Name the first Prime Minister of India and state his term.",
			Kind:        domain.TestKindShort,
			ModelAnswer: "Jawaharlal Nehru, from 1947 to 1964.",
			Points:      15,
			Difficulty:  domain.DifficultyBeginner,
		},
		{
			ID:          "placeholder-test-3",
			Question:    "Explain why New Delhi was chosen as the capital of India.",
			Kind:        domain.TestKindLong,
			ModelAnswer: "The capital moved from Calcutta in 1911 for its central location and historical significance; New Delhi was inaugurated in 1931.",
			Points:      25,
			Difficulty:  domain.DifficultyIntermediate,
		},
	}
}

var pendingItems = map[domain.TabType]any{
	domain.TabPoints:   []string{"Content for this section is being prepared."},
	domain.TabFacts:    []string{"Content for this section is being prepared."},
	domain.TabTimeline: []domain.TimelineEntry{{Year: "-", Event: "Timeline is being prepared."}},
	domain.TabConcepts: []domain.ConceptEntry{{Term: "Preparing", Definition: "Key concepts are being prepared."}},
	domain.TabArticles: []domain.ArticleEntry{{Number: "-", Title: "Articles are being prepared."}},
	domain.TabRulers:   []domain.RulerEntry{{Name: "Rulers are being prepared."}},
	domain.TabFormulas: []domain.FormulaEntry{{Name: "Preparing", Expression: "-"}},
	domain.TabList:     []domain.ListEntry{{Description: "Content for this section is being prepared."}},
}

// Overview is the placeholder overview for a lesson in category. It carries
// the category's tabs so clients render the same layout they will get once
// the real overview exists.
func Overview(title string, category domain.Category) *domain.OverviewContent {
	s := schema.ForCategory(category)
	tabs := make([]domain.Tab, 0, len(s.Tabs))
	for _, spec := range s.Tabs {
		raw, err := json.Marshal(pendingItems[spec.Type])
		if err != nil {
			panic(fmt.Sprintf("placeholder: encode %s items: %v", spec.Type, err))
		}
		tabs = append(tabs, domain.Tab{ID: spec.ID, Title: spec.Title, Type: spec.Type, Content: raw})
	}
	return &domain.OverviewContent{
		Summary:       fmt.Sprintf("Your overview of %q is being prepared.", title),
		Highlights:    []string{},
		ExamTips:      []string{},
		Difficulty:    domain.DifficultyIntermediate,
		EstimatedTime: "",
		Tabs:          tabs,
	}
}

// For returns the placeholder content of room for lesson.
func For(room domain.RoomType, lesson *domain.Lesson) domain.RoomContent {
	switch room {
	case domain.RoomQuiz:
		return domain.RoomContent{Room: room, Questions: Quiz()}
	case domain.RoomMemory:
		return domain.RoomContent{Room: room, Flashcards: Flashcards()}
	case domain.RoomTest:
		return domain.RoomContent{Room: room, Test: Test()}
	default:
		return domain.RoomContent{Room: domain.RoomClarity, Overview: Overview(lesson.Title, lesson.Category)}
	}
}
