// Package validation parses model output against the expected structural
// grammar and classifies violations. Critical violations block acceptance and
// drive the repair loop; warnings are advisory and never block. Violations
// are data, not errors: the validator itself cannot fail.
package validation

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"lessonforge/internal/family"
	"lessonforge/internal/policy"
)

// Fields is the structured breakdown extracted from a valid output block.
type Fields struct {
	GradeLevel string
	Topic      string
	Items      []string

	// Rendered is the full literal text block as accepted.
	Rendered string
}

// Options carries the per-request context the advisory checks need.
type Options struct {
	// TargetCount is the item count the caller asked for. Zero means the
	// family default; only banded families use it.
	TargetCount int

	// IntentText is the original free-text learning intent, used by the
	// topical-relevance advisory.
	IntentText string

	// DomainKeywords is the routed domain's keyword list, used by the
	// topical-relevance advisory.
	DomainKeywords []string
}

// Report is the validation outcome for one attempt. Fields is nil whenever
// Critical is non-empty; no consumer may treat such an attempt as usable.
type Report struct {
	Fields   *Fields
	Critical []string
	Warnings []string
}

// Validator runs the validation pipeline. Stateless apart from its logger.
type Validator struct {
	log *zap.Logger
}

// NewValidator returns a validator.
func NewValidator(log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{log: log}
}

// Validate runs the fixed pipeline: structural literals, extraction, count
// band, per-item rules, grade appropriateness, verb diversity, topical
// relevance. It short-circuits after a structural or count failure because
// nothing further is safe to parse.
func (v *Validator) Validate(output string, fam *family.Family, tier policy.Tier, opts Options) Report {
	// 1. Structural literals. Missing any means there is nothing safe to
	// extract; return immediately.
	if critical := v.checkStructure(output, fam); len(critical) > 0 {
		return Report{Critical: critical}
	}

	// 2. Extraction.
	grade := extractGrade(output)
	topic := extractTopic(output)
	items := extractItems(output, fam)

	// 3. Count band.
	critical, warnings := v.checkCount(len(items), fam, opts.TargetCount)
	if len(critical) > 0 {
		return Report{Critical: critical, Warnings: warnings}
	}

	profile := policy.Lookup(tier)

	// 4. Per-item hard rules.
	itemCritical, itemWarnings := v.checkItems(items, fam)
	critical = append(critical, itemCritical...)
	warnings = append(warnings, itemWarnings...)

	// 5–6. Leading-verb advisories. Skipped for interrogative families,
	// where the leading word is How/Why/What rather than a verb.
	if !fam.RequireInterrogativeStart {
		moreCritical, moreWarnings := v.checkVerbs(items, fam, profile)
		critical = append(critical, moreCritical...)
		warnings = append(warnings, moreWarnings...)
	}

	// 7. Topical relevance (advisory only).
	if w := v.checkRelevance(items, opts); w != "" {
		warnings = append(warnings, w)
	}

	if len(critical) > 0 {
		v.log.Debug("validation failed",
			zap.String("family", fam.Name),
			zap.Int("critical", len(critical)),
			zap.Int("warnings", len(warnings)))
		return Report{Critical: critical, Warnings: warnings}
	}

	return Report{
		Fields: &Fields{
			GradeLevel: grade,
			Topic:      topic,
			Items:      items,
			Rendered:   strings.TrimSpace(output),
		},
		Warnings: warnings,
	}
}

// checkStructure confirms the literal header lines and the family lead-in.
func (v *Validator) checkStructure(output string, fam *family.Family) []string {
	var critical []string
	if !strings.Contains(output, fam.Title) {
		critical = append(critical, fmt.Sprintf("Missing required title line %q", fam.Title))
	}
	if !strings.Contains(output, "Grade Level:") {
		critical = append(critical, `Missing required "Grade Level:" line`)
	}
	if !strings.Contains(output, "Topic:") {
		critical = append(critical, `Missing required "Topic:" line`)
	}
	if !strings.Contains(output, fam.LeadIn) {
		critical = append(critical, fmt.Sprintf("Missing required lead-in sentence %q", fam.LeadIn))
	}
	return critical
}

// checkCount enforces the family's count band. Inside the band, a count at
// the low edge or away from the caller's target is advisory only.
func (v *Validator) checkCount(n int, fam *family.Family, target int) (critical, warnings []string) {
	if fam.CountIsFixed {
		if n != fam.DefaultCount {
			critical = append(critical, fmt.Sprintf(
				"expected exactly %d %ss, found %d", fam.DefaultCount, fam.ItemNoun, n))
		}
		return critical, warnings
	}

	if n < fam.MinItems || n > fam.MaxItems {
		critical = append(critical, fmt.Sprintf(
			"expected between %d and %d %ss, found %d",
			fam.MinItems, fam.MaxItems, fam.ItemNoun, n))
		return critical, warnings
	}

	want := fam.ClampCount(target)
	if n == fam.MinItems && want > fam.MinItems {
		warnings = append(warnings, fmt.Sprintf(
			"%s count %d is at the minimum of the accepted band", fam.ItemNoun, n))
	}
	if n != want {
		warnings = append(warnings, fmt.Sprintf(
			"requested %d %ss but model produced %d (within accepted band)",
			want, fam.ItemNoun, n))
	}
	return critical, warnings
}

// checkItems applies the per-item hard rules for the family. The only
// advisories it can emit come from the sentence-band soft range.
func (v *Validator) checkItems(items []string, fam *family.Family) (critical, warnings []string) {
	for i, item := range items {
		idx := i + 1
		lower := strings.ToLower(item)

		for _, phrase := range bannedLeadPhrases {
			if strings.HasPrefix(lower, phrase) {
				critical = append(critical, fmt.Sprintf(
					"%s %d: begins with banned phrase %q", fam.ItemNoun, idx, phrase))
				break
			}
		}

		token := firstToken(item)
		if token == "" || token[0] < 'A' || token[0] > 'Z' {
			critical = append(critical, fmt.Sprintf(
				"%s %d: must begin with a capitalized word", fam.ItemNoun, idx))
		}
		lowerToken := strings.ToLower(token)

		if policy.IsNonMeasurable(lowerToken) {
			critical = append(critical, fmt.Sprintf(
				"%s %d: begins with non-measurable verb %q", fam.ItemNoun, idx, lowerToken))
		}

		switch {
		case fam.RequireQuestionMark:
			if !strings.HasSuffix(item, "?") {
				critical = append(critical, fmt.Sprintf(
					"%s %d: must end with a question mark", fam.ItemNoun, idx))
			}
		case fam.SentenceBand != nil:
			band := fam.SentenceBand
			n := countSentences(item)
			if n < band.HardMin || n > band.HardMax {
				critical = append(critical, fmt.Sprintf(
					"%s %d: has %d sentences, outside the accepted %d-%d range",
					fam.ItemNoun, idx, n, band.HardMin, band.HardMax))
			} else if n < band.SoftMin || n > band.SoftMax {
				warnings = append(warnings, fmt.Sprintf(
					"%s %d: has %d sentences; %d-%d is preferred",
					fam.ItemNoun, idx, n, band.SoftMin, band.SoftMax))
			}
		default:
			if !strings.HasSuffix(item, ".") && !strings.HasSuffix(item, "!") && !strings.HasSuffix(item, "?") {
				critical = append(critical, fmt.Sprintf(
					"%s %d: must end with terminal punctuation", fam.ItemNoun, idx))
			}
		}

		if fam.RequireInterrogativeStart {
			switch {
			case interrogatives[lowerToken]:
				// Accepted opener.
			case yesNoAuxiliaries[lowerToken]:
				critical = append(critical, fmt.Sprintf(
					"%s %d: reads as a yes/no question", fam.ItemNoun, idx))
			default:
				critical = append(critical, fmt.Sprintf(
					"%s %d: must begin with How, Why, What, When, or Which", fam.ItemNoun, idx))
			}
		} else if !policy.IsNonMeasurable(lowerToken) && !looksLikeVerb(lowerToken) {
			critical = append(critical, fmt.Sprintf(
				"%s %d: first word %q is not a recognized action verb", fam.ItemNoun, idx, token))
		}

		if fam.RequireDiscussionCue && !containsAny(lower, discussionCues) {
			critical = append(critical, fmt.Sprintf(
				"%s %d: missing a discussion cue (evidence, tradeoffs, risk, justification, ...)",
				fam.ItemNoun, idx))
		}
		if fam.RequireFoodContext && !containsAny(lower, foodContextKeywords) {
			critical = append(critical, fmt.Sprintf(
				"%s %d: missing a food or kitchen context", fam.ItemNoun, idx))
		}
	}
	return critical, warnings
}

// checkVerbs runs the leading-verb checks: a tier-forbidden leading verb is
// critical; a low share of tier-expected verbs and verb repetition are
// advisory.
func (v *Validator) checkVerbs(items []string, fam *family.Family, profile policy.GradeProfile) (critical, warnings []string) {
	expectedHits := 0
	counts := make(map[string]int, len(items))

	for i, item := range items {
		verb := strings.ToLower(firstToken(item))
		if verb == "" {
			continue
		}
		counts[verb]++
		if profile.ForbidsVerb(verb) {
			critical = append(critical, fmt.Sprintf(
				"%s %d: verb %q is not allowed for the %s grade level",
				fam.ItemNoun, i+1, verb, profile.Tier))
			continue
		}
		if profile.ExpectsVerb(verb) {
			expectedHits++
		}
	}

	if len(items) > 0 && expectedHits*2 < len(items) {
		warnings = append(warnings, fmt.Sprintf(
			"only %d of %d %ss lead with a verb expected for the %s tier",
			expectedHits, len(items), fam.ItemNoun, profile.Tier))
	}

	for verb, n := range counts {
		if n > 2 {
			warnings = append(warnings, fmt.Sprintf(
				"leading verb %q repeats %d times; vary verb choice", verb, n))
		}
	}
	return critical, warnings
}

// checkRelevance is a keyword-overlap heuristic between the generated items
// and either the routed domain's keywords or the stated intent. Weak overlap
// is advisory only.
func (v *Validator) checkRelevance(items []string, opts Options) string {
	if len(items) == 0 {
		return ""
	}
	joined := strings.ToLower(strings.Join(items, " "))

	for _, kw := range opts.DomainKeywords {
		if strings.Contains(joined, kw) {
			return ""
		}
	}
	for _, token := range intentTokens(opts.IntentText) {
		if strings.Contains(joined, token) {
			return ""
		}
	}
	if len(opts.DomainKeywords) == 0 && opts.IntentText == "" {
		return ""
	}
	return "generated items share no keywords with the routed domain or the stated intent"
}

var intentStopwords = map[string]bool{
	"the": true, "and": true, "how": true, "what": true, "why": true,
	"with": true, "from": true, "that": true, "this": true, "their": true,
	"about": true, "into": true, "have": true, "does": true, "when": true,
	"which": true, "different": true, "between": true, "students": true,
}

// intentTokens reduces free-text intent to its content-bearing words.
func intentTokens(intent string) []string {
	var tokens []string
	for _, f := range strings.FieldsFunc(strings.ToLower(intent), func(r rune) bool {
		return !isLetter(r)
	}) {
		if len(f) > 3 && !intentStopwords[f] {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
