package validation

import (
	"strings"

	"lessonforge/internal/policy"
)

// bannedLeadPhrases may never open an item. The output grammar already puts
// "students will be able to" in the lead-in sentence; repeating it per item is
// the most common model failure.
var bannedLeadPhrases = []string{
	"students will",
	"learners will",
	"the student",
	"the learner",
	"students should",
}

// interrogatives are the accepted openers for discussion questions.
var interrogatives = map[string]bool{
	"how": true, "why": true, "what": true, "when": true, "which": true,
}

// yesNoAuxiliaries open questions answerable with yes or no, which kill
// discussion. Mutually exclusive with the interrogative set, so each bad
// opener produces exactly one violation.
var yesNoAuxiliaries = map[string]bool{
	"do": true, "does": true, "did": true,
	"is": true, "are": true, "was": true, "were": true,
	"can": true, "could": true, "will": true, "would": true,
	"should": true, "shall": true, "may": true, "might": true,
	"has": true, "have": true, "had": true,
}

// discussionCues mark a question as actually discussable rather than
// factual recall. Substring-matched, so "justification" hits "justify" via
// the "justif" stem.
var discussionCues = []string{
	"evidence", "tradeoff", "trade-off", "risk", "justif", "argue",
	"defend", "weigh", "support", "reason", "decide", "persuade",
	"debate", "compare", "consequence", "agree", "disagree",
}

// foodContextKeywords anchor a question in a concrete food or kitchen
// setting. Substring-matched stems.
var foodContextKeywords = []string{
	"food", "kitchen", "cook", "recipe", "ingredient", "bak",
	"ferment", "spoil", "refrigerat", "meal", "restaurant", "chef",
	"dough", "cheese", "milk", "meat", "vegetable", "fruit",
	"leftover", "pasteuriz", "grocery", "dish", "eat",
}

// verbLexicon unions every tier's expected verbs with common instructional
// verbs that are legitimate at some tier even if no profile lists them.
var verbLexicon = buildVerbLexicon()

func buildVerbLexicon() map[string]bool {
	lex := make(map[string]bool, 128)
	for _, tier := range policy.Tiers() {
		for verb := range policy.Lookup(tier).ExpectedVerbs {
			lex[verb] = true
		}
	}
	for _, verb := range []string{
		"create", "write", "build", "use", "explore", "discuss",
		"examine", "research", "present", "plan", "solve", "apply",
		"define", "state", "select", "choose", "arrange", "show",
		"complete", "perform", "conduct", "collect", "graph",
		"estimate", "practice", "review", "read", "outline", "report",
		"display", "trace", "map", "weigh", "sketch", "act", "invite",
		"ask", "share", "role-play", "brainstorm", "predict", "pose",
		"challenge", "distribute", "begin", "open", "start", "hold",
		"set", "give", "hand", "place", "bring", "demonstrate",
	} {
		lex[verb] = true
	}
	return lex
}

// verbSuffixes give unlisted tokens the benefit of the doubt when they carry
// a typical English verb ending ("Pasteurize", "Calibrate", "Classify").
var verbSuffixes = []string{"ate", "ize", "ise", "ify", "uct", "uce"}

// looksLikeVerb reports whether a lowercased token is a recognized or
// plausible verb form.
func looksLikeVerb(token string) bool {
	if token == "" {
		return false
	}
	if verbLexicon[token] {
		return true
	}
	for _, suffix := range verbSuffixes {
		if strings.HasSuffix(token, suffix) && len(token) > len(suffix)+1 {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
