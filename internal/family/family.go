// Package family defines the per-family configuration records that
// parameterize the shared generation pipeline. Each generator family
// (learning objectives, discussion questions, lesson starters) is the same
// prompt/validate/repair machinery driven by one of these records.
package family

import "fmt"

// Family describes one generator family: its output grammar literals, item
// count band, attempt budget, and which per-item rules apply. Instances are
// static and read-only; they are safe to share across concurrent requests.
type Family struct {
	// Name is the stable slug used in routes, metrics and persistence.
	Name string

	// Title is the exact first line of a valid output block.
	Title string

	// LeadIn is the literal sentence that precedes the enumerated items.
	LeadIn string

	// ItemNoun names a single enumerated entry ("objective", "question", "idea").
	ItemNoun string

	// MinItems and MaxItems bound the accepted item count. A fixed-count
	// family has MinItems == MaxItems.
	MinItems int
	MaxItems int

	// DefaultCount is the item count requested from the model when the
	// caller does not supply one.
	DefaultCount int

	// CountIsFixed reports whether the family ignores the caller-supplied
	// target and always demands exactly DefaultCount items.
	CountIsFixed bool

	// AttemptBound is the maximum generate+validate cycles per request.
	AttemptBound int

	// RequireQuestionMark demands each item end with "?" instead of the
	// usual terminal punctuation rule.
	RequireQuestionMark bool

	// RequireInterrogativeStart demands each item open with an
	// interrogative word (How/Why/What/When/Which) and not read as a
	// yes/no question.
	RequireInterrogativeStart bool

	// RequireDiscussionCue demands each item contain at least one
	// discussion cue keyword (evidence, tradeoff, justify, ...).
	RequireDiscussionCue bool

	// RequireFoodContext demands each item contain at least one
	// food/kitchen-context keyword.
	RequireFoodContext bool

	// SentenceBand, when non-zero, switches per-item checking from the
	// one-sentence rules to a sentences-per-item band. Items outside
	// [HardMin, HardMax] are critical; inside the hard band but outside
	// [SoftMin, SoftMax] is advisory.
	SentenceBand *SentenceBand
}

// SentenceBand bounds sentences per enumerated entry for multi-sentence
// families.
type SentenceBand struct {
	SoftMin int
	SoftMax int
	HardMin int
	HardMax int
}

// The three generator families. These are the only instances; all other code
// receives a *Family and stays family-agnostic.
var (
	LearningObjectives = &Family{
		Name:         "learning_objectives",
		Title:        "Learning Objectives",
		LeadIn:       "By the end of this lesson, students will be able to:",
		ItemNoun:     "objective",
		MinItems:     4,
		MaxItems:     10,
		DefaultCount: 5,
		AttemptBound: 2,
	}

	DiscussionQuestions = &Family{
		Name:                      "discussion_questions",
		Title:                     "Discussion Questions",
		LeadIn:                    "Use the following questions to guide class discussion:",
		ItemNoun:                  "question",
		MinItems:                  5,
		MaxItems:                  5,
		DefaultCount:              5,
		CountIsFixed:              true,
		AttemptBound:              3,
		RequireQuestionMark:       true,
		RequireInterrogativeStart: true,
		RequireDiscussionCue:      true,
		RequireFoodContext:        true,
	}

	LessonStarters = &Family{
		Name:         "lesson_starters",
		Title:        "Lesson Starter Ideas",
		LeadIn:       "Here are engaging ways to open this lesson:",
		ItemNoun:     "idea",
		MinItems:     7,
		MaxItems:     7,
		DefaultCount: 7,
		CountIsFixed: true,
		AttemptBound: 3,
		SentenceBand: &SentenceBand{SoftMin: 3, SoftMax: 5, HardMin: 2, HardMax: 7},
	}
)

// All lists every family in a stable order.
func All() []*Family {
	return []*Family{LearningObjectives, DiscussionQuestions, LessonStarters}
}

// ByName resolves a family slug. Unknown names are an error; unlike grade
// tiers there is no safe default family.
func ByName(name string) (*Family, error) {
	for _, f := range All() {
		if f.Name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("unknown generator family: %q", name)
}

// ClampCount resolves the item count to request from the model. Fixed-count
// families always demand DefaultCount; banded families clamp the caller's
// target into [MinItems, MaxItems] and fall back to DefaultCount when the
// caller supplied nothing.
func (f *Family) ClampCount(requested int) int {
	if f.CountIsFixed {
		return f.DefaultCount
	}
	if requested <= 0 {
		return f.DefaultCount
	}
	if requested < f.MinItems {
		return f.MinItems
	}
	if requested > f.MaxItems {
		return f.MaxItems
	}
	return requested
}
