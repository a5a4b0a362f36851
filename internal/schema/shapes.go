package schema

import (
	"fmt"
	"strings"

	"github.com/phrazzld/studyrooms-api/internal/domain"
)

// itemShapes is the per-item JSON shape of each tab type as shown to the model.
var itemShapes = map[domain.TabType]string{
	domain.TabPoints:   `"string"`,
	domain.TabFacts:    `"string"`,
	domain.TabTimeline: `{"year": "string", "event": "string", "significance": "string"}`,
	domain.TabConcepts: `{"term": "string", "definition": "string", "explanation": "string", "examples": ["string"]}`,
	domain.TabArticles: `{"number": "string", "title": "string", "description": "string", "keyPoints": ["string"], "examRelevance": "string"}`,
	domain.TabRulers:   `{"name": "string", "dynasty": "string", "period": "string", "capital": "string", "achievements": ["string"]}`,
	domain.TabFormulas: `{"name": "string", "expression": "string", "variables": "string", "applications": ["string"]}`,
	domain.TabList:     `{"title": "string", "description": "string"}`,
}

const difficultyShape = `"beginner" | "intermediate" | "advanced"`

func newOverviewSchema(c domain.Category, fragment string, tabs []TabSpec) Schema {
	return Schema{
		Name:       "overview_" + string(c),
		Fragment:   fragment,
		Tabs:       tabs,
		Shape:      overviewShape(tabs),
		Definition: overviewDefinition(tabs),
	}
}

func overviewShape(tabs []TabSpec) string {
	var b strings.Builder
	b.WriteString("{\n")
	b.WriteString(`  "summary": "string",` + "\n")
	b.WriteString(`  "highlights": ["string"],` + "\n")
	b.WriteString(`  "examTips": ["string"],` + "\n")
	b.WriteString(`  "difficulty": ` + difficultyShape + ",\n")
	b.WriteString(`  "estimatedTime": "string",` + "\n")
	b.WriteString(`  "tabs": [` + "\n")
	for i, t := range tabs {
		fmt.Fprintf(&b, `    {"id": %q, "title": %q, "type": %q, "content": [%s]}`,
			t.ID, t.Title, t.Type, itemShapes[t.Type])
		if i < len(tabs)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("  ]\n}")
	return b.String()
}

const quizShape = `{
  "questions": [
    {"question": "string", "options": ["string", "string", "string", "string"], "correctAnswer": 0, "points": 10, "difficulty": ` + difficultyShape + `, "explanation": "string"}
  ]
}`

const memoryShape = `{
  "flashcards": [
    {"front": "string", "back": "string", "category": "string", "difficulty": ` + difficultyShape + `, "hint": "string"}
  ]
}`

const testShape = `{
  "questions": [
    {"question": "string", "type": "mcq" | "short" | "long", "options": ["string"], "correctAnswer": 0, "modelAnswer": "string", "points": 10, "difficulty": ` + difficultyShape + `, "explanation": "string"}
  ]
}`

func stringType() map[string]any { return map[string]any{"type": "string"} }

func stringArray() map[string]any {
	return map[string]any{"type": "array", "items": stringType()}
}

func difficultyType() map[string]any {
	return map[string]any{"type": "string", "enum": []any{
		string(domain.DifficultyBeginner),
		string(domain.DifficultyIntermediate),
		string(domain.DifficultyAdvanced),
	}}
}

func object(required []string, props map[string]any) map[string]any {
	req := make([]any, len(required))
	for i, r := range required {
		req[i] = r
	}
	return map[string]any{"type": "object", "required": req, "properties": props}
}

func itemDefinition(t domain.TabType) map[string]any {
	switch t {
	case domain.TabPoints, domain.TabFacts:
		return map[string]any{"type": "string", "minLength": 1}
	case domain.TabTimeline:
		return object([]string{"year", "event"}, map[string]any{
			"year": stringType(), "event": stringType(), "significance": stringType(),
		})
	case domain.TabConcepts:
		return object([]string{"term", "definition"}, map[string]any{
			"term": stringType(), "definition": stringType(),
			"explanation": stringType(), "examples": stringArray(),
		})
	case domain.TabArticles:
		return object([]string{"number", "title"}, map[string]any{
			"number": stringType(), "title": stringType(), "description": stringType(),
			"keyPoints": stringArray(), "examRelevance": stringType(),
		})
	case domain.TabRulers:
		return object([]string{"name"}, map[string]any{
			"name": stringType(), "dynasty": stringType(), "period": stringType(),
			"capital": stringType(), "achievements": stringArray(),
		})
	case domain.TabFormulas:
		return object([]string{"name", "expression"}, map[string]any{
			"name": stringType(), "expression": stringType(),
			"variables": stringType(), "applications": stringArray(),
		})
	case domain.TabList:
		return object([]string{"description"}, map[string]any{
			"title": stringType(), "description": stringType(),
		})
	default:
		return map[string]any{}
	}
}

func overviewDefinition(tabs []TabSpec) map[string]any {
	ids := make([]any, len(tabs))
	variants := make([]any, len(tabs))
	for i, t := range tabs {
		ids[i] = t.ID
		variants[i] = map[string]any{
			"properties": map[string]any{
				"id":   map[string]any{"const": t.ID},
				"type": map[string]any{"const": string(t.Type)},
				"content": map[string]any{
					"type":     "array",
					"minItems": 1,
					"items":    itemDefinition(t.Type),
				},
			},
		}
	}

	tab := object([]string{"id", "title", "type", "content"}, map[string]any{
		"id":      map[string]any{"type": "string", "enum": ids},
		"title":   stringType(),
		"type":    stringType(),
		"content": map[string]any{"type": "array"},
	})
	tab["oneOf"] = variants

	return object([]string{"summary", "tabs"}, map[string]any{
		"summary":       map[string]any{"type": "string", "minLength": 1},
		"highlights":    stringArray(),
		"examTips":      stringArray(),
		"difficulty":    difficultyType(),
		"estimatedTime": stringType(),
		"tabs": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items":    tab,
		},
	})
}

func quizDefinition() map[string]any {
	question := object([]string{"question", "options", "correctAnswer"}, map[string]any{
		"question": map[string]any{"type": "string", "minLength": 1},
		"options": map[string]any{
			"type": "array", "items": stringType(),
			"minItems": domain.QuizOptionCount, "maxItems": domain.QuizOptionCount,
		},
		"correctAnswer": map[string]any{"type": "integer", "minimum": 0, "maximum": domain.QuizOptionCount - 1},
		"points":        map[string]any{"type": "integer", "minimum": 0},
		"difficulty":    difficultyType(),
		"explanation":   stringType(),
	})
	return object([]string{"questions"}, map[string]any{
		"questions": map[string]any{"type": "array", "minItems": 1, "items": question},
	})
}

func memoryDefinition() map[string]any {
	card := object([]string{"front", "back"}, map[string]any{
		"front":      map[string]any{"type": "string", "minLength": 1},
		"back":       map[string]any{"type": "string", "minLength": 1},
		"category":   stringType(),
		"difficulty": difficultyType(),
		"hint":       stringType(),
	})
	return object([]string{"flashcards"}, map[string]any{
		"flashcards": map[string]any{"type": "array", "minItems": 1, "items": card},
	})
}

func testDefinition() map[string]any {
	question := object([]string{"question", "type"}, map[string]any{
		"question": map[string]any{"type": "string", "minLength": 1},
		"type": map[string]any{"type": "string", "enum": []any{
			string(domain.TestKindMCQ), string(domain.TestKindShort), string(domain.TestKindLong),
		}},
		"options":       stringArray(),
		"correctAnswer": map[string]any{"type": "integer", "minimum": 0},
		"modelAnswer":   stringType(),
		"points":        map[string]any{"type": "integer", "minimum": 0},
		"difficulty":    difficultyType(),
		"explanation":   stringType(),
	})
	return object([]string{"questions"}, map[string]any{
		"questions": map[string]any{"type": "array", "minItems": 1, "items": question},
	})
}
