package schema

import (
	"github.com/phrazzld/studyrooms-api/internal/domain"
)

// TabSpec describes one tab an overview must contain.
type TabSpec struct {
	ID    string
	Title string
	Type  domain.TabType
}

// Schema is the complete description of one generated artifact.
type Schema struct {
	// Name is stable and unique; it keys compiled validators.
	Name string

	// Fragment is the category- or room-specific part of the system prompt.
	Fragment string

	// Tabs is empty for room schemas.
	Tabs []TabSpec

	// Shape is the JSON shape the model must return, rendered for prompts.
	Shape string

	// Definition is the JSON Schema the model output is validated against.
	Definition map[string]any
}

// TabTypes returns the distinct tab types used by the schema, in tab order.
func (s Schema) TabTypes() []domain.TabType {
	seen := make(map[domain.TabType]bool)
	var out []domain.TabType
	for _, t := range s.Tabs {
		if !seen[t.Type] {
			seen[t.Type] = true
			out = append(out, t.Type)
		}
	}
	return out
}

var examPoints = TabSpec{ID: "exam_points", Title: "Exam Points", Type: domain.TabPoints}

var (
	historicalPeriod = newOverviewSchema(domain.CategoryHistoricalPeriod,
		"The material covers a historical period. Organise it around the rulers, "+
			"the chronology of events, and the causes and consequences examiners ask about.",
		[]TabSpec{
			{ID: "rulers", Title: "Key Rulers", Type: domain.TabRulers},
			{ID: "timeline", Title: "Timeline", Type: domain.TabTimeline},
			{ID: "key_events", Title: "Key Events", Type: domain.TabList},
			examPoints,
		})

	constitution = newOverviewSchema(domain.CategoryConstitution,
		"The material covers the Indian Constitution or polity. Cite article numbers, "+
			"amendment numbers and years exactly, and explain the underlying concepts.",
		[]TabSpec{
			{ID: "articles", Title: "Articles", Type: domain.TabArticles},
			{ID: "key_concepts", Title: "Key Concepts", Type: domain.TabConcepts},
			{ID: "amendments", Title: "Amendments", Type: domain.TabTimeline},
			examPoints,
		})

	geography = newOverviewSchema(domain.CategoryGeography,
		"The material covers geography. Name physical features precisely with their "+
			"location, and include the figures (lengths, heights, areas) that exams test.",
		[]TabSpec{
			{ID: "physical_features", Title: "Physical Features", Type: domain.TabList},
			{ID: "key_facts", Title: "Key Facts", Type: domain.TabFacts},
			{ID: "concepts", Title: "Concepts", Type: domain.TabConcepts},
			examPoints,
		})

	science = newOverviewSchema(domain.CategoryScience,
		"The material covers science. Define each concept, state formulas with their "+
			"variables and units, and connect them to real applications.",
		[]TabSpec{
			{ID: "concepts", Title: "Concepts", Type: domain.TabConcepts},
			{ID: "formulas", Title: "Formulas", Type: domain.TabFormulas},
			{ID: "applications", Title: "Applications", Type: domain.TabList},
			examPoints,
		})

	general = newOverviewSchema(domain.CategoryGeneral,
		"The material is general study content. Extract the core concepts, the hard "+
			"facts and the points most likely to appear in objective questions.",
		[]TabSpec{
			{ID: "key_concepts", Title: "Key Concepts", Type: domain.TabConcepts},
			{ID: "key_facts", Title: "Key Facts", Type: domain.TabFacts},
			{ID: "important_points", Title: "Important Points", Type: domain.TabList},
			examPoints,
		})
)

// ForCategory returns the overview schema for c. Unknown categories resolve
// to the general schema.
func ForCategory(c domain.Category) Schema {
	switch c {
	case domain.CategoryHistoricalPeriod:
		return historicalPeriod
	case domain.CategoryConstitution:
		return constitution
	case domain.CategoryGeography:
		return geography
	case domain.CategoryScience:
		return science
	case domain.CategoryGeneral:
		return general
	default:
		return general
	}
}

var (
	quizSchema = Schema{
		Name: "room_quiz",
		Fragment: "Write multiple choice questions. Every question has exactly four options, " +
			"one correct answer given as a zero-based index, and a one-line explanation.",
		Shape:      quizShape,
		Definition: quizDefinition(),
	}

	memorySchema = Schema{
		Name: "room_memory",
		Fragment: "Write flashcards for spaced revision. The front is a short cue, the back " +
			"a precise answer, and the hint a memory aid.",
		Shape:      memoryShape,
		Definition: memoryDefinition(),
	}

	testSchema = Schema{
		Name: "room_test",
		Fragment: "Write a final test mixing question types: mostly mcq, plus short and long " +
			"answer questions with model answers.",
		Shape:      testShape,
		Definition: testDefinition(),
	}
)

// ForRoom returns the schema for room. The clarity room uses the overview
// schema of category; the other rooms are category independent.
func ForRoom(room domain.RoomType, category domain.Category) Schema {
	switch room {
	case domain.RoomClarity:
		return ForCategory(category)
	case domain.RoomQuiz:
		return quizSchema
	case domain.RoomMemory:
		return memorySchema
	case domain.RoomTest:
		return testSchema
	default:
		return ForCategory(category)
	}
}

// All returns every registered schema.
func All() []Schema {
	out := make([]Schema, 0, len(domain.Categories())+3)
	for _, c := range domain.Categories() {
		out = append(out, ForCategory(c))
	}
	return append(out, quizSchema, memorySchema, testSchema)
}
