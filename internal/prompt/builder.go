// Package prompt composes generation and repair prompts for the curriculum
// generator. Prompts are assembled from fixed sections in a deterministic
// order; the repair prompt is a strict wrapper that restates the original
// prompt, the invalid output, and only the critical violations.
package prompt

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"lessonforge/internal/family"
	"lessonforge/internal/policy"
	"lessonforge/internal/routing"
)

// GenerationInput collects everything a generation prompt depends on.
type GenerationInput struct {
	Family        *family.Family
	Profile       policy.GradeProfile
	Routing       routing.Result
	Topic         string
	ItemCount     int
	Customization string
}

// Builder assembles prompts. Stateless apart from its logger; safe for
// concurrent use.
type Builder struct {
	log *zap.Logger
}

// NewBuilder returns a prompt builder.
func NewBuilder(log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{log: log}
}

// BuildGeneration assembles the full generation prompt. Section order is
// fixed: persona, primary directive, request echo, subject focus (plus
// overlay), audience, output template, formatting rules, verb guidance,
// closing imperative.
func (b *Builder) BuildGeneration(in GenerationInput) string {
	fam := in.Family
	var sb strings.Builder

	// Persona.
	sb.WriteString("You are an experienced curriculum designer who writes ")
	sb.WriteString("classroom-ready material for K-12 and college science instructors.\n\n")

	// Primary directive.
	sb.WriteString("## Primary Directive\n")
	sb.WriteString("Accuracy comes first. Stay factually anchored in the subject below ")
	sb.WriteString("and never force an unrelated domain's content into the answer.\n\n")

	// Request echo.
	sb.WriteString("## Request\n")
	fmt.Fprintf(&sb, "Topic: %s\n", in.Topic)
	fmt.Fprintf(&sb, "Grade level: %s\n", in.Profile.Tier.Label())
	fmt.Fprintf(&sb, "Number of %ss: %d\n", fam.ItemNoun, in.ItemCount)
	if custom := strings.TrimSpace(in.Customization); custom != "" {
		fmt.Fprintf(&sb, "Additional instructions: %s\n", custom)
	}
	sb.WriteString("\n")

	// Subject focus, with the overlay paragraph only when routing applied it.
	sb.WriteString("## Subject Focus\n")
	fmt.Fprintf(&sb, "Subject: %s\n", in.Routing.DomainLabel)
	sb.WriteString(focusFor(in.Routing.Domain))
	sb.WriteString("\n")
	if in.Routing.ApplyOverlay {
		sb.WriteString("\n")
		sb.WriteString(overlayFocus)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	// Audience complexity.
	sb.WriteString("## Audience\n")
	sb.WriteString(in.Profile.ComplexityNarrative)
	sb.WriteString("\n")
	sb.WriteString(in.Profile.ProductExpectations)
	sb.WriteString("\n\n")

	// Exact output template.
	sb.WriteString("## Output Format\n")
	sb.WriteString("Return your answer in EXACTLY this structure, with nothing before or after it:\n\n")
	sb.WriteString(OutputTemplate(fam, in.Profile.Tier, in.ItemCount))
	sb.WriteString("\n")

	// Hard formatting rules.
	sb.WriteString("## Formatting Rules\n")
	for i, rule := range formattingRules(fam, in.ItemCount) {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, rule)
	}
	sb.WriteString("\n")

	// Verb guidance: tier lists, then the universal ban list.
	sb.WriteString("## Verb Guidance\n")
	fmt.Fprintf(&sb, "Preferred verbs for this grade level: %s.\n",
		strings.Join(in.Profile.ExpectedList(), ", "))
	fmt.Fprintf(&sb, "Do not use these verbs at this grade level: %s.\n",
		strings.Join(in.Profile.ForbiddenList(), ", "))
	fmt.Fprintf(&sb, "Never use these non-measurable verbs anywhere: %s.\n",
		strings.Join(policy.NonMeasurableVerbs, ", "))
	sb.WriteString("\n")

	// Closing imperative restating the exact count.
	fmt.Fprintf(&sb, "Respond now with exactly %d %ss in the format above.\n",
		in.ItemCount, fam.ItemNoun)

	prompt := sb.String()
	b.log.Debug("generation prompt built",
		zap.String("family", fam.Name),
		zap.String("domain", string(in.Routing.Domain)),
		zap.Int("bytes", len(prompt)))
	return prompt
}

// BuildRepair wraps the original prompt with the invalid output and the
// critical violations. Warnings never appear here: advisory wording about
// "errors" makes models over-correct. No new constraints are introduced.
func (b *Builder) BuildRepair(originalPrompt, invalidOutput string, criticalErrors []string) string {
	var sb strings.Builder
	sb.WriteString(originalPrompt)
	sb.WriteString("\n---\n")
	sb.WriteString("Your previous response was not valid. This is what you returned:\n\n")
	sb.WriteString(invalidOutput)
	sb.WriteString("\n\nThe response violated these requirements:\n")
	for _, errText := range criticalErrors {
		fmt.Fprintf(&sb, "- %s\n", errText)
	}
	sb.WriteString("\nReturn only the corrected output in the required format, with no commentary.\n")

	b.log.Debug("repair prompt built", zap.Int("critical_errors", len(criticalErrors)))
	return sb.String()
}

// OutputTemplate renders the literal output grammar with placeholders for a
// family. The validator accepts exactly this structure; tests round-trip it.
func OutputTemplate(fam *family.Family, tier policy.Tier, count int) string {
	var sb strings.Builder
	sb.WriteString(fam.Title)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Grade Level: %s\n", tier.Label())
	sb.WriteString("Topic: <topic restated here>\n\n")
	sb.WriteString(fam.LeadIn)
	sb.WriteString("\n")
	for i := 1; i <= count; i++ {
		fmt.Fprintf(&sb, "%d. <%s %d>\n", i, fam.ItemNoun, i)
	}
	return sb.String()
}

// formattingRules enumerates the hard rules for a family. These are the same
// rules the validator enforces, phrased as instructions.
func formattingRules(fam *family.Family, count int) []string {
	rules := []string{
		fmt.Sprintf("Produce exactly %d %ss, numbered 1 through %d.", count, fam.ItemNoun, count),
	}

	switch {
	case fam.RequireQuestionMark:
		rules = append(rules,
			"Each question must be a single sentence ending with a question mark.",
			"Each question must begin with How, Why, What, When, or Which.",
			"Never ask a question answerable with yes or no.",
			"Each question must invite discussion: reference evidence, tradeoffs, risks, or ask students to justify a position.",
			"Each question must be set in a concrete food or kitchen context.")
	case fam.SentenceBand != nil:
		rules = append(rules,
			fmt.Sprintf("Each %s must be %d to %d complete sentences describing a classroom opening activity.",
				fam.ItemNoun, fam.SentenceBand.SoftMin, fam.SentenceBand.SoftMax),
			fmt.Sprintf("Begin each %s with a strong action verb.", fam.ItemNoun))
	default:
		rules = append(rules,
			fmt.Sprintf("Each %s must be a single sentence ending with a period.", fam.ItemNoun),
			fmt.Sprintf("Begin each %s with a strong, measurable action verb.", fam.ItemNoun))
	}

	rules = append(rules,
		`Never open an item with banner phrases such as "Students will" or "Learners will".`,
		"Plain text only: no markdown, bullets, bold, or commentary.")
	return rules
}
