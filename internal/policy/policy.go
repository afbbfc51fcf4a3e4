// Package policy holds the grade-level policy table: for each audience tier,
// the measurable verbs we expect generated items to lead with, the verbs that
// are off-limits for that tier, and the complexity framing handed to the
// prompt builder. The table is built once at init and never mutated, so it is
// safe to share across concurrent requests without locking.
package policy

import (
	"sort"
	"strings"
)

// Tier is the audience complexity level.
type Tier string

const (
	Elementary Tier = "elementary"
	Middle     Tier = "middle"
	High       Tier = "high"
	College    Tier = "college"
)

// Tiers lists all known tiers in ascending complexity order.
func Tiers() []Tier {
	return []Tier{Elementary, Middle, High, College}
}

// ParseTier normalizes a caller-supplied tier string. The boolean reports
// whether the input named a known tier; on false the High tier is returned as
// the safe default, mirroring Lookup.
func ParseTier(s string) (Tier, bool) {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case Elementary:
		return Elementary, true
	case Middle:
		return Middle, true
	case High:
		return High, true
	case College:
		return College, true
	}
	return High, false
}

// Label renders the tier for output blocks ("Grade Level: Middle").
func (t Tier) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(t.String()[:1]) + t.String()[1:]
}

func (t Tier) String() string { return string(t) }

// GradeProfile parameterizes vocabulary, verb choice and complexity for one
// tier. Expected and forbidden verb sets are intentionally near-disjoint
// across adjacent tiers; that separation is what drives grade differentiation
// in the generated content.
type GradeProfile struct {
	Tier           Tier
	ExpectedVerbs  map[string]bool
	ForbiddenVerbs map[string]bool

	// ComplexityNarrative is the prose handed to the prompt builder
	// describing the cognitive level to write at.
	ComplexityNarrative string

	// ProductExpectations describes the kind of work products appropriate
	// for the tier.
	ProductExpectations string
}

// ExpectsVerb reports whether verb (any case) is in the tier's expected set.
func (p GradeProfile) ExpectsVerb(verb string) bool {
	return p.ExpectedVerbs[strings.ToLower(verb)]
}

// ForbidsVerb reports whether verb (any case) is in the tier's forbidden set.
func (p GradeProfile) ForbidsVerb(verb string) bool {
	return p.ForbiddenVerbs[strings.ToLower(verb)]
}

// ExpectedList returns the expected verbs sorted for deterministic prompts.
func (p GradeProfile) ExpectedList() []string { return sortedKeys(p.ExpectedVerbs) }

// ForbiddenList returns the forbidden verbs sorted for deterministic prompts.
func (p GradeProfile) ForbiddenList() []string { return sortedKeys(p.ForbiddenVerbs) }

// NonMeasurableVerbs are banned as leading verbs across every tier and every
// generator family. They describe internal states that cannot be observed or
// assessed.
var NonMeasurableVerbs = []string{
	"understand", "know", "learn", "appreciate",
	"comprehend", "grasp", "realize", "be aware of", "become familiar with",
}

// IsNonMeasurable reports whether verb is on the universal banned list.
func IsNonMeasurable(verb string) bool {
	v := strings.ToLower(verb)
	for _, banned := range NonMeasurableVerbs {
		if v == banned || strings.HasPrefix(banned, v+" ") {
			return true
		}
	}
	return false
}

var profiles = map[Tier]GradeProfile{
	Elementary: {
		Tier: Elementary,
		ExpectedVerbs: verbSet(
			"identify", "name", "list", "label", "describe", "sort",
			"match", "recognize", "count", "draw", "group", "observe",
		),
		ForbiddenVerbs: verbSet(
			"analyze", "evaluate", "synthesize", "critique",
			"hypothesize", "derive", "formulate", "model",
		),
		ComplexityNarrative: "Use short sentences and everyday vocabulary. Keep every idea " +
			"concrete and tied to things students can see, touch, or do in class. " +
			"One simple action per item.",
		ProductExpectations: "Appropriate products: labeled drawings, sorting charts, " +
			"picture matches, short oral answers, and simple hands-on observations.",
	},
	Middle: {
		Tier: Middle,
		ExpectedVerbs: verbSet(
			"explain", "compare", "classify", "predict", "demonstrate",
			"summarize", "illustrate", "measure", "organize", "interpret",
			"contrast", "record",
		),
		ForbiddenVerbs: verbSet(
			"synthesize", "critique", "derive", "formulate",
			"theorize", "deconstruct",
		),
		ComplexityNarrative: "Use clear, direct language with a few subject-specific terms " +
			"defined in context. Items should ask students to connect causes to effects " +
			"and to organize or compare observable results.",
		ProductExpectations: "Appropriate products: data tables, comparison charts, short " +
			"written explanations, labeled diagrams, and simple measured investigations.",
	},
	High: {
		Tier: High,
		ExpectedVerbs: verbSet(
			"analyze", "evaluate", "design", "investigate", "justify",
			"calculate", "assess", "construct", "differentiate", "test",
			"argue", "develop",
		),
		ForbiddenVerbs: verbSet(
			"name", "list", "match", "sort", "count", "color",
		),
		ComplexityNarrative: "Use precise academic and technical vocabulary. Items should " +
			"demand multi-step reasoning: analyzing data, weighing evidence, and " +
			"defending conclusions with justification.",
		ProductExpectations: "Appropriate products: lab reports, designed experiments, " +
			"evidence-based arguments, quantitative analyses, and evaluated tradeoffs.",
	},
	College: {
		Tier: College,
		ExpectedVerbs: verbSet(
			"synthesize", "critique", "formulate", "derive", "appraise",
			"integrate", "theorize", "validate", "reconstruct", "defend",
			"propose", "model",
		),
		ForbiddenVerbs: verbSet(
			"identify", "name", "list", "label", "match", "recognize", "describe",
		),
		ComplexityNarrative: "Write at the level of an undergraduate course: discipline " +
			"vocabulary without definition, items that integrate multiple concepts, " +
			"engage primary literature, and require original synthesis or critique.",
		ProductExpectations: "Appropriate products: literature reviews, formal models, " +
			"research proposals, methodological critiques, and defended positions.",
	},
}

// Lookup returns the profile for a tier. Unknown tiers fall back to the High
// profile; the lookup never fails. The returned profile shares the static
// table's maps and must not be mutated.
func Lookup(tier Tier) GradeProfile {
	if p, ok := profiles[tier]; ok {
		return p
	}
	return profiles[High]
}

func verbSet(verbs ...string) map[string]bool {
	set := make(map[string]bool, len(verbs))
	for _, v := range verbs {
		set[v] = true
	}
	return set
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
