package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/phrazzld/studyrooms-api/internal/domain"
	"github.com/phrazzld/studyrooms-api/internal/schema"
)

// Item bounds applied to every tab and room.
const (
	MinItems = 3
	MaxItems = 8
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// Input is the material a prompt is composed from.
type Input struct {
	Content   string
	Category  domain.Category
	ExamFocus domain.ExamFocus
	Subject   string
}

// Prompt is a composed (system, user) instruction pair plus the schema the
// answer must satisfy.
type Prompt struct {
	System string
	User   string
	Schema schema.Schema
}

type examGuide struct {
	name     string
	guidance string
}

var examGuides = map[domain.ExamFocus]examGuide{
	domain.ExamUPSC: {
		name: "UPSC Civil Services",
		guidance: "UPSC tests analytical depth. Link facts to causes, consequences and " +
			"present-day relevance, and flag points useful for both Prelims and Mains answers.",
	},
	domain.ExamSSC: {
		name: "SSC",
		guidance: "SSC tests quick factual recall. Favour one-line facts, exact dates, " +
			"firsts and superlatives.",
	},
	domain.ExamBanking: {
		name: "Banking (IBPS/SBI)",
		guidance: "Banking exams reward static general awareness. Stress institutions, " +
			"headquarters, heads, schemes and the figures attached to them.",
	},
	domain.ExamNEET: {
		name: "NEET",
		guidance: "NEET follows the NCERT syllabus closely. Use NCERT terminology, precise " +
			"definitions and the diagrams or processes students must recall.",
	},
	domain.ExamJEE: {
		name: "JEE",
		guidance: "JEE tests problem solving. State each principle with its formula, units " +
			"and the typical trap in applying it.",
	},
	domain.ExamStatePCS: {
		name: "State PCS",
		guidance: "State PCS papers mirror UPSC with added regional weight. Call out the " +
			"state-level angle wherever the material has one.",
	},
}

func guideFor(e domain.ExamFocus) examGuide {
	if g, ok := examGuides[e]; ok {
		return g
	}
	return examGuides[domain.DefaultExamFocus]
}

var roomTasks = map[domain.RoomType]string{
	domain.RoomClarity: "Write the overview for this material.",
	domain.RoomQuiz:    "Write the quiz questions for this material.",
	domain.RoomMemory:  "Write the flashcards for this material.",
	domain.RoomTest:    "Write the final test for this material.",
}

// ComposeOverview builds the prompt for the overview of in.
func ComposeOverview(in Input) (Prompt, error) {
	return compose(domain.RoomClarity, in, nil)
}

// ComposeRoom builds the prompt for a lazily generated room. The overview is
// passed as extra context when it is non-nil.
func ComposeRoom(room domain.RoomType, in Input, overview *domain.OverviewContent) (Prompt, error) {
	if _, ok := roomTasks[room]; !ok {
		return Prompt{}, fmt.Errorf("%w: %q", domain.ErrInvalidRoomType, room)
	}
	return compose(room, in, overview)
}

func compose(room domain.RoomType, in Input, overview *domain.OverviewContent) (Prompt, error) {
	if strings.TrimSpace(in.Content) == "" {
		return Prompt{}, domain.NewValidationError("content", "cannot be empty", domain.ErrEmptyContent)
	}

	s := schema.ForRoom(room, in.Category)
	guide := guideFor(in.ExamFocus)

	var system bytes.Buffer
	err := templates.ExecuteTemplate(&system, "system.tmpl", map[string]any{
		"Fragment": s.Fragment,
		"ExamName": guide.name,
		"Guidance": guide.guidance,
		"Shape":    s.Shape,
		"Tabs":     s.Tabs,
		"MinItems": MinItems,
		"MaxItems": MaxItems,
	})
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to render system prompt: %w", err)
	}

	var overviewText string
	if overview != nil {
		raw, err := json.MarshalIndent(overview, "", "  ")
		if err != nil {
			return Prompt{}, fmt.Errorf("failed to encode overview context: %w", err)
		}
		overviewText = string(raw)
	}

	category := in.Category
	if category == "" {
		category = domain.CategoryGeneral
	}

	var user bytes.Buffer
	err = templates.ExecuteTemplate(&user, "user.tmpl", map[string]any{
		"Subject":  strings.TrimSpace(in.Subject),
		"Category": category,
		"Content":  strings.TrimSpace(in.Content),
		"Overview": overviewText,
		"Task":     roomTasks[room],
	})
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to render user prompt: %w", err)
	}

	return Prompt{
		System: strings.TrimSpace(system.String()),
		User:   strings.TrimSpace(user.String()),
		Schema: s,
	}, nil
}
