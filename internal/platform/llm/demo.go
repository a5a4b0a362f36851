package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/generation"
	"github.com/phrazzld/studyrooms-api/internal/schema"
)

// Demo is a deterministic provider that answers from fixed templates. The
// answer depends only on the requested schema and the study material.
type Demo struct{}

// NewDemo creates the demo provider.
func NewDemo() *Demo { return &Demo{} }

// Name implements generation.Provider.
func (Demo) Name() string { return "demo" }

// Invoke implements generation.Provider.
func (d Demo) Invoke(ctx context.Context, req generation.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	topic := demoTopic(req.User)

	var doc any
	switch req.Schema {
	case "room_quiz":
		doc = demoQuiz(topic)
	case "room_memory":
		doc = demoFlashcards(topic)
	case "room_test":
		doc = demoTest(topic)
	default:
		s, ok := overviewByName(req.Schema)
		if !ok {
			return "", fmt.Errorf("%w: demo provider has no template for schema %q",
				generation.ErrInvalidResponse, req.Schema)
		}
		doc = demoOverview(s, topic)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode demo content: %w", err)
	}
	return string(raw), nil
}

func overviewByName(name string) (schema.Schema, bool) {
	for _, c := range domain.Categories() {
		if s := schema.ForCategory(c); s.Name == name {
			return s, true
		}
	}
	return schema.Schema{}, false
}

// demoTopic returns the first line of the quoted study material in a user
// prompt, or a generic label.
func demoTopic(user string) string {
	const fence = `"""`
	start := strings.Index(user, fence)
	if start >= 0 {
		rest := strings.TrimLeft(user[start+len(fence):], "\n")
		if end := strings.Index(rest, fence); end >= 0 {
			rest = rest[:end]
		}
		if title := domain.TitleFromContent(rest); title != "" {
			return title
		}
	}
	return "this topic"
}

var demoItems = map[domain.TabType]func(topic string) any{
	domain.TabPoints: func(topic string) any {
		return []string{
			"Revise the core definitions of " + topic,
			"Memorise the key dates and figures",
			"Practise previous year questions on " + topic,
		}
	},
	domain.TabFacts: func(topic string) any {
		return []string{
			topic + " appears regularly in objective papers",
			"Most questions test names, dates and places",
			"Statement based questions need precise recall",
		}
	},
	domain.TabTimeline: func(topic string) any {
		return []domain.TimelineEntry{
			{Year: "Early phase", Event: "Origins of " + topic, Significance: "Sets the context"},
			{Year: "Middle phase", Event: "Consolidation", Significance: "Most examined period"},
			{Year: "Late phase", Event: "Decline or reform", Significance: "Links to later developments"},
		}
	},
	domain.TabConcepts: func(topic string) any {
		return []domain.ConceptEntry{
			{Term: "Core idea", Definition: "The central principle of " + topic, Examples: []string{"Textbook example"}},
			{Term: "Related idea", Definition: "A concept often confused with the core idea", Examples: []string{"Contrast case"}},
			{Term: "Application", Definition: "Where " + topic + " is used in practice", Examples: []string{"Current affairs link"}},
		}
	},
	domain.TabArticles: func(topic string) any {
		return []domain.ArticleEntry{
			{Number: "Article 14", Title: "Equality before law", Description: "Guarantees equal protection", KeyPoints: []string{"Applies to all persons"}, ExamRelevance: "High"},
			{Number: "Article 21", Title: "Protection of life and personal liberty", Description: "Most expanded right", KeyPoints: []string{"Judicial interpretation"}, ExamRelevance: "High"},
			{Number: "Article 32", Title: "Right to constitutional remedies", Description: "Heart and soul of the Constitution", KeyPoints: []string{"Writ jurisdiction"}, ExamRelevance: "High"},
		}
	},
	domain.TabRulers: func(topic string) any {
		return []domain.RulerEntry{
			{Name: "Founder", Dynasty: topic, Period: "Founding years", Capital: "First capital", Achievements: []string{"Established the state"}},
			{Name: "Consolidator", Dynasty: topic, Period: "Peak years", Capital: "Main capital", Achievements: []string{"Expanded territory", "Administrative reforms"}},
			{Name: "Last major ruler", Dynasty: topic, Period: "Later years", Capital: "Main capital", Achievements: []string{"Held the state together"}},
		}
	},
	domain.TabFormulas: func(topic string) any {
		return []domain.FormulaEntry{
			{Name: "Defining relation", Expression: "y = k x", Variables: "k is the constant of proportionality", Applications: []string{"Direct proportion problems"}},
			{Name: "Rate relation", Expression: "r = d / t", Variables: "d is the change, t is time", Applications: []string{"Rates of change"}},
			{Name: "Conservation", Expression: "input = output", Variables: "totals before and after", Applications: []string{"Balance problems"}},
		}
	},
	domain.TabList: func(topic string) any {
		return []domain.ListEntry{
			{Title: "Background", Description: "What led to " + topic},
			{Title: "Main features", Description: "The defining features of " + topic},
			{Title: "Significance", Description: "Why " + topic + " matters for the exam"},
		}
	},
}

func demoOverview(s schema.Schema, topic string) domain.OverviewContent {
	tabs := make([]domain.Tab, 0, len(s.Tabs))
	for _, spec := range s.Tabs {
		raw, _ := json.Marshal(demoItems[spec.Type](topic))
		tabs = append(tabs, domain.Tab{ID: spec.ID, Title: spec.Title, Type: spec.Type, Content: raw})
	}
	return domain.OverviewContent{
		Summary:       "An exam oriented overview of " + topic + ".",
		Highlights:    []string{"Key ideas of " + topic, "Important names and dates", "Likely exam angles"},
		ExamTips:      []string{"Revise the timeline twice", "Attempt statement based questions"},
		Difficulty:    domain.DifficultyIntermediate,
		EstimatedTime: "15 min",
		Tabs:          tabs,
	}
}

func demoQuiz(topic string) map[string]any {
	questions := make([]domain.QuizQuestion, 0, 3)
	for _, q := range []string{
		"Which statement best describes " + topic + "?",
		"Which of these is most closely associated with " + topic + "?",
		"Why is " + topic + " important for the exam?",
	} {
		questions = append(questions, domain.QuizQuestion{
			Question:      q,
			Options:       []string{"The accurate statement", "A common misconception", "An unrelated fact", "None of the above"},
			CorrectAnswer: 0,
			Points:        10,
			Difficulty:    domain.DifficultyBeginner,
			Explanation:   "The first option states the standard textbook position.",
		})
	}
	return map[string]any{"questions": questions}
}

func demoFlashcards(topic string) map[string]any {
	return map[string]any{"flashcards": []domain.Flashcard{
		{Front: "Define " + topic, Back: "The central idea covered in this lesson", Category: "definition", Difficulty: domain.DifficultyBeginner, Hint: "Start from the summary"},
		{Front: "Key figure in " + topic, Back: "The person most associated with it", Category: "people", Difficulty: domain.DifficultyIntermediate},
		{Front: "Why " + topic + " matters", Back: "Its lasting significance", Category: "analysis", Difficulty: domain.DifficultyAdvanced},
	}}
}

func demoTest(topic string) map[string]any {
	zero := 0
	return map[string]any{"questions": []domain.TestQuestion{
		{Question: "Identify the correct statement about " + topic + ".", Kind: domain.TestKindMCQ,
			Options: []string{"The accurate statement", "A common misconception", "An unrelated fact", "None of the above"},
			CorrectAnswer: &zero, Points: 10, Difficulty: domain.DifficultyIntermediate},
		{Question: "Briefly explain " + topic + ".", Kind: domain.TestKindShort,
			ModelAnswer: "A concise explanation naming the key facts.", Points: 15, Difficulty: domain.DifficultyIntermediate},
		{Question: "Critically evaluate the significance of " + topic + ".", Kind: domain.TestKindLong,
			ModelAnswer: "An answer covering background, main features and significance.", Points: 25, Difficulty: domain.DifficultyAdvanced},
	}}
}
