// Package generation runs the generate-validate-repair loop that turns a
// teacher's request into validated curriculum content.
package generation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"lessonforge/internal/family"
	"lessonforge/internal/policy"
	"lessonforge/internal/routing"
	"lessonforge/internal/validation"
)

// ErrCancelled is returned when the caller's context ends before the loop
// produces a terminal outcome.
var ErrCancelled = errors.New("generation cancelled")

// Request is a fully validated generation request. Build one with NewRequest;
// a zero Request is not usable.
type Request struct {
	ID            string
	Family        *family.Family
	Tier          policy.Tier
	Intent        string
	ItemCount     int
	CategoryHint  string
	Customization string
	RequestedBy   string
	CreatedAt     time.Time
}

// NewRequest validates the raw inputs and returns a request, or every
// validation failure joined into one error so the caller can report all
// problems at once.
func NewRequest(familyName, gradeLevel, intent string, itemCount int) (*Request, error) {
	var errs []error

	fam, err := family.ByName(familyName)
	if err != nil {
		errs = append(errs, err)
	}

	// Unknown grade levels fall back to the high-school tier rather than
	// failing the request; that mirrors the policy table's contract.
	tier, _ := policy.ParseTier(gradeLevel)

	intent = strings.TrimSpace(intent)
	if intent == "" {
		errs = append(errs, errors.New("learning intent must not be empty"))
	}

	if fam != nil && itemCount != 0 {
		if fam.CountIsFixed && itemCount != fam.DefaultCount {
			errs = append(errs, fmt.Errorf(
				"%s requests always produce %d %ss; item count cannot be customized",
				fam.Name, fam.DefaultCount, fam.ItemNoun))
		}
		if !fam.CountIsFixed && (itemCount < fam.MinItems || itemCount > fam.MaxItems) {
			errs = append(errs, fmt.Errorf(
				"item count %d is outside the accepted %d-%d range for %s",
				itemCount, fam.MinItems, fam.MaxItems, fam.Name))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if itemCount == 0 {
		itemCount = fam.DefaultCount
	}

	return &Request{
		ID:        uuid.NewString(),
		Family:    fam,
		Tier:      tier,
		Intent:    intent,
		ItemCount: itemCount,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Profile resolves the grade policy for the request's tier.
func (r *Request) Profile() policy.GradeProfile {
	return policy.Lookup(r.Tier)
}

// WithHint sets the optional subject-category hint.
func (r *Request) WithHint(hint string) *Request {
	r.CategoryHint = strings.TrimSpace(hint)
	return r
}

// WithCustomization sets free-text instructions appended to the prompt.
func (r *Request) WithCustomization(text string) *Request {
	r.Customization = strings.TrimSpace(text)
	return r
}

// State is the terminal outcome of a generation run.
type State string

const (
	// StateSucceeded means an attempt passed validation.
	StateSucceeded State = "succeeded"

	// StateExhausted means every attempt in the family's budget failed
	// validation. The final attempt's violations are preserved.
	StateExhausted State = "exhausted"
)

// Attempt records one completion round for auditing.
type Attempt struct {
	Number   int
	Output   string
	Critical []string
	Err      string
	Duration time.Duration
}

// Result is the terminal outcome of one generation run. On success Fields is
// populated; on exhaustion Critical carries the last attempt's violations.
// Warnings aggregate across every attempt, including the successful one.
type Result struct {
	Request  *Request
	State    State
	Routing  routing.Result
	Fields   *validation.Fields
	Content  string
	Critical []string
	Warnings []string
	Attempts []Attempt
	Duration time.Duration
}

// Succeeded reports whether the run produced accepted content.
func (r *Result) Succeeded() bool { return r.State == StateSucceeded }
