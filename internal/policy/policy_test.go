package policy

import "testing"

func TestParseTier(t *testing.T) {
	tests := []struct {
		input string
		want  Tier
		known bool
	}{
		{"elementary", Elementary, true},
		{"Middle", Middle, true},
		{"  HIGH  ", High, true},
		{"college", College, true},
		{"", High, false},
		{"kindergarten", High, false},
	}

	for _, tt := range tests {
		got, known := ParseTier(tt.input)
		if got != tt.want || known != tt.known {
			t.Errorf("ParseTier(%q) = (%v, %v), want (%v, %v)",
				tt.input, got, known, tt.want, tt.known)
		}
	}
}

// Expected and forbidden sets must never overlap within a tier: the validator
// would otherwise both expect and reject the same leading verb.
func TestVerbSetsDisjointPerTier(t *testing.T) {
	for _, tier := range Tiers() {
		p := Lookup(tier)
		for verb := range p.ExpectedVerbs {
			if p.ForbiddenVerbs[verb] {
				t.Errorf("tier %s lists %q as both expected and forbidden", tier, verb)
			}
		}
	}
}

func TestLookupFallsBackToHigh(t *testing.T) {
	p := Lookup(Tier("graduate"))
	if p.Tier != High {
		t.Errorf("unknown tier resolved to %s, want %s", p.Tier, High)
	}
}

func TestProfilesComplete(t *testing.T) {
	for _, tier := range Tiers() {
		p := Lookup(tier)
		if len(p.ExpectedVerbs) == 0 {
			t.Errorf("tier %s has no expected verbs", tier)
		}
		if len(p.ForbiddenVerbs) == 0 {
			t.Errorf("tier %s has no forbidden verbs", tier)
		}
		if p.ComplexityNarrative == "" || p.ProductExpectations == "" {
			t.Errorf("tier %s is missing prompt narrative text", tier)
		}
	}
}

func TestIsNonMeasurable(t *testing.T) {
	for _, verb := range []string{"understand", "Know", "APPRECIATE", "grasp"} {
		if !IsNonMeasurable(verb) {
			t.Errorf("IsNonMeasurable(%q) = false, want true", verb)
		}
	}
	// Leading word of a multi-word banned phrase counts too.
	if !IsNonMeasurable("be") {
		t.Error(`IsNonMeasurable("be") = false, want true ("be aware of")`)
	}
	for _, verb := range []string{"analyze", "identify", "explain"} {
		if IsNonMeasurable(verb) {
			t.Errorf("IsNonMeasurable(%q) = true, want false", verb)
		}
	}
}

// Non-measurable verbs must not appear in any tier's expected set.
func TestNonMeasurableNeverExpected(t *testing.T) {
	for _, tier := range Tiers() {
		p := Lookup(tier)
		for _, banned := range NonMeasurableVerbs {
			if p.ExpectedVerbs[banned] {
				t.Errorf("tier %s expects universally banned verb %q", tier, banned)
			}
		}
	}
}

func TestTierLabel(t *testing.T) {
	if got := Middle.Label(); got != "Middle" {
		t.Errorf("Middle.Label() = %q, want %q", got, "Middle")
	}
	if got := Elementary.Label(); got != "Elementary" {
		t.Errorf("Elementary.Label() = %q, want %q", got, "Elementary")
	}
}
