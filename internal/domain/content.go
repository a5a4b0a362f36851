package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TabType fixes the shape of a tab's content payload.
type TabType string

// Tab types.
const (
	TabTimeline TabType = "timeline"
	TabList     TabType = "list"
	TabConcepts TabType = "concepts"
	TabArticles TabType = "articles"
	TabRulers   TabType = "rulers"
	TabFacts    TabType = "facts"
	TabFormulas TabType = "formulas"
	TabPoints   TabType = "points"
)

// TabTypes returns the complete tab vocabulary.
func TabTypes() []TabType {
	return []TabType{
		TabTimeline, TabList, TabConcepts, TabArticles,
		TabRulers, TabFacts, TabFormulas, TabPoints,
	}
}

// IsValid reports whether t belongs to the tab vocabulary.
func (t TabType) IsValid() bool {
	for _, known := range TabTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// TimelineEntry is one row of a timeline tab.
type TimelineEntry struct {
	Year         string `json:"year"`
	Event        string `json:"event"`
	Significance string `json:"significance"`
}

// ConceptEntry is one row of a concepts tab.
type ConceptEntry struct {
	Term        string   `json:"term"`
	Definition  string   `json:"definition"`
	Explanation string   `json:"explanation,omitempty"`
	Examples    []string `json:"examples"`
}

// ArticleEntry is one row of an articles tab.
type ArticleEntry struct {
	Number        string   `json:"number"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	KeyPoints     []string `json:"keyPoints"`
	ExamRelevance string   `json:"examRelevance"`
}

// RulerEntry is one row of a rulers tab.
type RulerEntry struct {
	Name         string   `json:"name"`
	Dynasty      string   `json:"dynasty"`
	Period       string   `json:"period"`
	Capital      string   `json:"capital"`
	Achievements []string `json:"achievements"`
}

// FormulaEntry is one row of a formulas tab.
type FormulaEntry struct {
	Name         string   `json:"name"`
	Expression   string   `json:"expression"`
	Variables    string   `json:"variables"`
	Applications []string `json:"applications"`
}

// ListEntry is one row of a list tab. Extra fields are allowed and kept in
// the tab's raw content; only description is required.
type ListEntry struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
}

// Tab is one titled section of a lesson overview.
type Tab struct {
	ID      string          `json:"id"`
	Title   string          `json:"title"`
	Type    TabType         `json:"type"`
	Content json.RawMessage `json:"content"`
}

// NewTab builds a tab by encoding content.
func NewTab(id, title string, tabType TabType, content any) (Tab, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return Tab{}, fmt.Errorf("encode %s tab content: %w", tabType, err)
	}
	return Tab{ID: id, Title: title, Type: tabType, Content: raw}, nil
}

// Validate decodes the tab content according to its type and checks that
// every item carries its required fields.
func (t Tab) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return NewValidationError("tab.id", "is required", ErrInvalidTabContent)
	}
	if !t.Type.IsValid() {
		return NewValidationError("tab."+t.ID+".type", fmt.Sprintf("%q is not a tab type", t.Type), ErrInvalidTabContent)
	}

	n, err := t.itemCount()
	if err != nil {
		return NewValidationError("tab."+t.ID+".content", err.Error(), ErrInvalidTabContent)
	}
	if n == 0 {
		return NewValidationError("tab."+t.ID+".content", "has no items", ErrInvalidTabContent)
	}
	return nil
}

func (t Tab) itemCount() (int, error) {
	switch t.Type {
	case TabPoints, TabFacts:
		var items []string
		if err := decodeStrict(t.Content, &items); err != nil {
			return 0, err
		}
		for i, s := range items {
			if strings.TrimSpace(s) == "" {
				return 0, fmt.Errorf("item %d is empty", i)
			}
		}
		return len(items), nil
	case TabTimeline:
		var items []TimelineEntry
		if err := decodeStrict(t.Content, &items); err != nil {
			return 0, err
		}
		for i, e := range items {
			if e.Year == "" || e.Event == "" {
				return 0, fmt.Errorf("item %d needs year and event", i)
			}
		}
		return len(items), nil
	case TabConcepts:
		var items []ConceptEntry
		if err := decodeStrict(t.Content, &items); err != nil {
			return 0, err
		}
		for i, e := range items {
			if e.Term == "" || e.Definition == "" {
				return 0, fmt.Errorf("item %d needs term and definition", i)
			}
		}
		return len(items), nil
	case TabArticles:
		var items []ArticleEntry
		if err := decodeStrict(t.Content, &items); err != nil {
			return 0, err
		}
		for i, e := range items {
			if e.Number == "" || e.Title == "" {
				return 0, fmt.Errorf("item %d needs number and title", i)
			}
		}
		return len(items), nil
	case TabRulers:
		var items []RulerEntry
		if err := decodeStrict(t.Content, &items); err != nil {
			return 0, err
		}
		for i, e := range items {
			if e.Name == "" {
				return 0, fmt.Errorf("item %d needs a name", i)
			}
		}
		return len(items), nil
	case TabFormulas:
		var items []FormulaEntry
		if err := decodeStrict(t.Content, &items); err != nil {
			return 0, err
		}
		for i, e := range items {
			if e.Name == "" || e.Expression == "" {
				return 0, fmt.Errorf("item %d needs name and expression", i)
			}
		}
		return len(items), nil
	case TabList:
		var items []map[string]any
		if err := json.Unmarshal(t.Content, &items); err != nil {
			return 0, err
		}
		for i, e := range items {
			if d, _ := e["description"].(string); strings.TrimSpace(d) == "" {
				return 0, fmt.Errorf("item %d needs a description", i)
			}
		}
		return len(items), nil
	default:
		return 0, fmt.Errorf("unknown tab type %q", t.Type)
	}
}

// decodeStrict rejects a JSON null or scalar where a sequence is expected.
func decodeStrict(raw json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return fmt.Errorf("content must be a JSON array")
	}
	return json.Unmarshal(trimmed, v)
}

// OverviewContent is the clarity room: a summary of the lesson broken into
// category-specific tabs.
type OverviewContent struct {
	Summary       string     `json:"summary"`
	Highlights    []string   `json:"highlights"`
	ExamTips      []string   `json:"examTips"`
	Difficulty    Difficulty `json:"difficulty"`
	EstimatedTime string     `json:"estimatedTime"`
	Tabs          []Tab      `json:"tabs"`
}

// Validate checks the overview and every tab it carries.
func (o *OverviewContent) Validate() error {
	if strings.TrimSpace(o.Summary) == "" {
		return NewValidationError("summary", "is required", ErrEmptyContent)
	}
	if len(o.Tabs) == 0 {
		return NewValidationError("tabs", "must not be empty", ErrInvalidTabContent)
	}
	seen := make(map[string]bool, len(o.Tabs))
	for _, tab := range o.Tabs {
		if err := tab.Validate(); err != nil {
			return err
		}
		if seen[tab.ID] {
			return NewValidationError("tab."+tab.ID, "is duplicated", ErrInvalidTabContent)
		}
		seen[tab.ID] = true
	}
	return nil
}

// QuizQuestion is a four-option multiple choice question.
type QuizQuestion struct {
	ID            string     `json:"id"`
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	CorrectAnswer int        `json:"correctAnswer"`
	Points        int        `json:"points"`
	Difficulty    Difficulty `json:"difficulty"`
	Explanation   string     `json:"explanation,omitempty"`
}

// QuizOptionCount is the number of options every quiz question carries.
const QuizOptionCount = 4

// Validate checks the question text, the option count and the answer index.
func (q *QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return NewValidationError("question", "is required", ErrInvalidQuestion)
	}
	if len(q.Options) != QuizOptionCount {
		return NewValidationError("options", fmt.Sprintf("must have %d entries", QuizOptionCount), ErrInvalidQuestion)
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return NewValidationError("correctAnswer", "is out of range", ErrInvalidQuestion)
	}
	return nil
}

// TestQuestionKind distinguishes the answer format of a test question.
type TestQuestionKind string

// Test question kinds.
const (
	TestKindMCQ   TestQuestionKind = "mcq"
	TestKindShort TestQuestionKind = "short"
	TestKindLong  TestQuestionKind = "long"
)

// TestQuestion is one question of the final test room. MCQ questions carry
// options and a correct index; short and long questions carry a model answer.
type TestQuestion struct {
	ID            string           `json:"id"`
	Question      string           `json:"question"`
	Kind          TestQuestionKind `json:"type"`
	Options       []string         `json:"options,omitempty"`
	CorrectAnswer *int             `json:"correctAnswer,omitempty"`
	ModelAnswer   string           `json:"modelAnswer,omitempty"`
	Points        int              `json:"points"`
	Difficulty    Difficulty       `json:"difficulty"`
	Explanation   string           `json:"explanation,omitempty"`
}

// Validate checks that the question's answer fields agree with its kind.
func (q *TestQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return NewValidationError("question", "is required", ErrInvalidQuestion)
	}
	switch q.Kind {
	case TestKindMCQ:
		if len(q.Options) < 2 {
			return NewValidationError("options", "mcq needs at least two options", ErrInvalidQuestion)
		}
		if q.CorrectAnswer == nil || *q.CorrectAnswer < 0 || *q.CorrectAnswer >= len(q.Options) {
			return NewValidationError("correctAnswer", "is missing or out of range", ErrInvalidQuestion)
		}
	case TestKindShort, TestKindLong:
		if strings.TrimSpace(q.ModelAnswer) == "" {
			return NewValidationError("modelAnswer", "is required for written answers", ErrInvalidQuestion)
		}
	default:
		return NewValidationError("type", fmt.Sprintf("%q is not a question type", q.Kind), ErrInvalidQuestion)
	}
	return nil
}

// Flashcard is one card of the memory room.
type Flashcard struct {
	ID         string     `json:"id"`
	Front      string     `json:"front"`
	Back       string     `json:"back"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Hint       string     `json:"hint,omitempty"`
}

// Validate checks that both sides of the card are present.
func (f *Flashcard) Validate() error {
	if strings.TrimSpace(f.Front) == "" || strings.TrimSpace(f.Back) == "" {
		return NewValidationError("flashcard", "needs front and back", ErrEmptyContent)
	}
	return nil
}

// RoomContent is the content of a single room. Exactly one field is set,
// matching Room.
type RoomContent struct {
	Room       RoomType         `json:"room"`
	Overview   *OverviewContent `json:"overview,omitempty"`
	Questions  []QuizQuestion   `json:"questions,omitempty"`
	Flashcards []Flashcard      `json:"flashcards,omitempty"`
	Test       []TestQuestion   `json:"test,omitempty"`
}

// Validate checks the payload matching Room.
func (c *RoomContent) Validate() error {
	switch c.Room {
	case RoomClarity:
		if c.Overview == nil {
			return NewValidationError("overview", "is required", ErrEmptyContent)
		}
		return c.Overview.Validate()
	case RoomQuiz:
		if len(c.Questions) == 0 {
			return NewValidationError("questions", "must not be empty", ErrEmptyContent)
		}
		for i := range c.Questions {
			if err := c.Questions[i].Validate(); err != nil {
				return err
			}
		}
	case RoomMemory:
		if len(c.Flashcards) == 0 {
			return NewValidationError("flashcards", "must not be empty", ErrEmptyContent)
		}
		for i := range c.Flashcards {
			if err := c.Flashcards[i].Validate(); err != nil {
				return err
			}
		}
	case RoomTest:
		if len(c.Test) == 0 {
			return NewValidationError("test", "must not be empty", ErrEmptyContent)
		}
		for i := range c.Test {
			if err := c.Test[i].Validate(); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRoomType, c.Room)
	}
	return nil
}

// MaxScore is the number of points available in the room.
func (c *RoomContent) MaxScore() int {
	total := 0
	for _, q := range c.Questions {
		total += q.Points
	}
	for _, q := range c.Test {
		total += q.Points
	}
	return total
}

// ItemCount is the number of questions, cards or tabs in the room.
func (c *RoomContent) ItemCount() int {
	switch c.Room {
	case RoomClarity:
		if c.Overview == nil {
			return 0
		}
		return len(c.Overview.Tabs)
	case RoomQuiz:
		return len(c.Questions)
	case RoomMemory:
		return len(c.Flashcards)
	case RoomTest:
		return len(c.Test)
	default:
		return 0
	}
}
