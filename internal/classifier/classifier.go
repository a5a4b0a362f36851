package classifier

import (
	"strings"
	"unicode"

	"github.com/phrazzld/studyrooms-api/internal/domain"
)

// rule ties a category or exam to the keywords that select it. A keyword
// matches at the start of a word, so "reign" finds "reigned" but not
// "foreign". A trailing space makes it match whole words only.
type rule[T any] struct {
	value    T
	keywords []string
}

// categoryRules are evaluated top to bottom. General is the fallback and
// has no keywords of its own.
var categoryRules = []rule[domain.Category]{
	{domain.CategoryHistoricalPeriod, []string{
		"empire", "dynasty", "sultanate", "mughal", "maurya", "gupta", "chola",
		"maratha", "vijayanagara", "harappa", "indus valley", "vedic",
		"battle of", "revolt of", "freedom struggle", "national movement",
		"ancient india", "medieval", "colonial", "british raj", "emperor",
		"reign", "civilization", "kingdom",
	}},
	{domain.CategoryConstitution, []string{
		"constitution", "article ", "amendment", "fundamental rights",
		"fundamental duties", "directive principles", "preamble", "parliament",
		"lok sabha", "rajya sabha", "judiciary", "supreme court", "high court",
		"federalism", "president of india", "governor", "election commission",
		"panchayati raj", "schedule",
	}},
	{domain.CategoryGeography, []string{
		"geography", "river", "mountain", "himalaya", "plateau", "monsoon",
		"climate", "soil", "ocean", "latitude", "longitude", "desert",
		"earthquake", "volcano", "ecosystem", "biosphere", "national park",
		"drainage", "landform",
	}},
	{domain.CategoryScience, []string{
		"science", "physics", "chemistry", "biology", "atom", "molecule",
		"photosynthesis", "newton", "velocity", "acceleration", "electric",
		"magnet", "dna", "gene ", "genes ", "genetic", "enzyme", "acid", "chemical reaction",
		"formula", "equation", "thermodynamics",
	}},
}

// examRules are evaluated top to bottom; the default applies when none match.
var examRules = []rule[domain.ExamFocus]{
	{domain.ExamUPSC, []string{"upsc", "civil services", "ias ", "prelims", "mains "}},
	{domain.ExamSSC, []string{"ssc", "staff selection", "cgl", "chsl"}},
	{domain.ExamBanking, []string{"banking", "ibps", "sbi po", "rbi grade", "bank po"}},
	{domain.ExamNEET, []string{"neet", "medical entrance"}},
	{domain.ExamJEE, []string{"jee ", "iit entrance", "engineering entrance"}},
	{domain.ExamStatePCS, []string{"state pcs", "pcs", "psc", "state public service"}},
}

// Result is the outcome of classifying a piece of lesson material.
type Result struct {
	Category  domain.Category
	ExamFocus domain.ExamFocus
}

// Overrides lets a caller pin either field. A pinned field skips
// classification entirely.
type Overrides struct {
	Category  *domain.Category
	ExamFocus *domain.ExamFocus
}

// Classify returns the category and exam focus for text. It never fails.
func Classify(text string) Result {
	return ClassifyWithOverrides(text, Overrides{})
}

// ClassifyWithOverrides classifies text, honoring explicit caller choices.
func ClassifyWithOverrides(text string, o Overrides) Result {
	lower := normalize(text)

	var res Result
	if o.Category != nil {
		res.Category = *o.Category
	} else {
		res.Category = firstMatch(lower, categoryRules, domain.CategoryGeneral)
	}
	if o.ExamFocus != nil {
		res.ExamFocus = *o.ExamFocus
	} else {
		res.ExamFocus = firstMatch(lower, examRules, domain.DefaultExamFocus)
	}
	return res
}

// Category returns only the category of text.
func Category(text string) domain.Category {
	return firstMatch(normalize(text), categoryRules, domain.CategoryGeneral)
}

// ExamFocus returns only the exam focus of text.
func ExamFocus(text string) domain.ExamFocus {
	return firstMatch(normalize(text), examRules, domain.DefaultExamFocus)
}

// normalize lowercases text and reduces it to its words separated by
// single spaces, with a space on each end.
func normalize(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return " "
	}
	return " " + strings.Join(words, " ") + " "
}

func firstMatch[T any](normalized string, rules []rule[T], fallback T) T {
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(normalized, " "+kw) {
				return r.value
			}
		}
	}
	return fallback
}
