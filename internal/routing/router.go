// Package routing classifies free-text learning intent into a subject domain
// and decides whether the food-science overlay applies. Detection is
// authoritative: a caller-supplied category hint can boost confidence or
// produce an advisory mismatch warning, but it never overrides the detected
// domain ("accuracy first").
package routing

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"lessonforge/internal/policy"
)

// Fallback confidence when the intent carries no domain signal at all.
const fallbackConfidence = 0.3

// Normalized keyword scores are always small, so the winner is scaled up
// before capping at 1.0.
const confidenceScale = 10.0

// hintBoost is applied when the caller's category hint agrees with detection.
const hintBoost = 1.2

// Result is the routing outcome for one request. Computed once per request
// and consumed by the prompt builder; never persisted.
type Result struct {
	Domain       Domain
	DomainLabel  string
	Confidence   float64
	ApplyOverlay bool

	// OverlayReason is a human-readable explanation of why the overlay was
	// or was not applied, for observability.
	OverlayReason string

	// Warnings carries non-fatal advisories (e.g. a category hint that
	// disagrees with detection). Routing itself cannot fail.
	Warnings []string
}

// Router scores intent text against per-domain keyword tables. The tables are
// read-mostly: many concurrent Route calls, rare override reloads.
type Router struct {
	mu       sync.RWMutex
	keywords map[Domain][]string
	overlay  []string
	log      *zap.Logger
}

// NewRouter builds a router over the built-in keyword tables.
func NewRouter(log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		keywords: defaultKeywords,
		overlay:  overlayKeywordDefaults,
		log:      log,
	}
}

// Route classifies intent text. It cannot fail: absence of signal degrades to
// the general-science default. The grade tier does not influence detection
// but is kept on the contract for tracing.
func (r *Router) Route(intentText string, tier policy.Tier, categoryHint string) Result {
	r.mu.RLock()
	keywords := r.keywords
	overlay := r.overlay
	r.mu.RUnlock()

	text := strings.ToLower(intentText)

	best, bestScore := GeneralScience, 0.0
	for _, domain := range sortedDomains(keywords) {
		list := keywords[domain]
		if len(list) == 0 {
			continue
		}
		hits := 0
		for _, kw := range list {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		score := float64(hits) / float64(len(list))
		if score > bestScore {
			best, bestScore = domain, score
		}
	}

	if bestScore == 0 {
		r.log.Debug("no domain signal in intent, defaulting",
			zap.String("tier", tier.String()))
		return Result{
			Domain:        GeneralScience,
			DomainLabel:   GeneralScience.Label(),
			Confidence:    fallbackConfidence,
			ApplyOverlay:  false,
			OverlayReason: "no subject-domain signal detected in intent",
		}
	}

	confidence := bestScore * confidenceScale
	if confidence > 1.0 {
		confidence = 1.0
	}

	var warnings []string
	if hint := normalizeHint(categoryHint); hint != "" {
		if hintMatches(hint, best) {
			confidence *= hintBoost
			if confidence > 1.0 {
				confidence = 1.0
			}
		} else if hint != "science" {
			warnings = append(warnings, fmt.Sprintf(
				"category hint %q does not match detected domain %q; routing follows detection",
				categoryHint, best))
		}
	}

	applied, reason := r.overlayDecision(best, text, overlay)

	r.log.Debug("routed intent",
		zap.String("domain", string(best)),
		zap.Float64("confidence", confidence),
		zap.Bool("overlay", applied),
		zap.String("tier", tier.String()))

	return Result{
		Domain:        best,
		DomainLabel:   best.Label(),
		Confidence:    confidence,
		ApplyOverlay:  applied,
		OverlayReason: reason,
		Warnings:      warnings,
	}
}

// overlayDecision applies the four overlay branches in order. Each branch
// carries its own reason string so callers can see which one fired.
func (r *Router) overlayDecision(domain Domain, text string, overlay []string) (bool, string) {
	if domain == FoodScience {
		return true, "detected domain is food science"
	}

	hits := 0
	for _, kw := range overlay {
		if strings.Contains(text, kw) {
			hits++
		}
	}
	if hits >= 2 {
		return true, fmt.Sprintf("intent references multiple food-science topics (%d keywords)", hits)
	}
	if overlayCompatible[domain] && hits >= 1 {
		return true, fmt.Sprintf("domain %q pairs naturally with a food-science lens", domain)
	}
	for _, phrase := range overlayPhrases {
		if strings.Contains(text, phrase) {
			return true, "intent explicitly asks for a food-science context"
		}
	}
	return false, "no food-science signal in intent"
}

// DomainKeywords returns the current keyword list for a domain. The validator
// uses it for the topical-relevance advisory.
func (r *Router) DomainKeywords(domain Domain) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keywords[domain]
}

// OverlayKeywords returns the current overlay keyword list.
func (r *Router) OverlayKeywords() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.overlay
}

func normalizeHint(hint string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(hint)), " ", "_")
}

// hintMatches is a deliberately loose substring match in either direction, so
// "micro" matches microbiology and "earth science" matches earth_science.
func hintMatches(hint string, domain Domain) bool {
	name := string(domain)
	return strings.Contains(name, hint) || strings.Contains(hint, name)
}

func sortedDomains(keywords map[Domain][]string) []Domain {
	domains := make([]Domain, 0, len(keywords))
	for d := range keywords {
		domains = append(domains, d)
	}
	sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })
	return domains
}
