package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"lessonforge/internal/llm"
	"lessonforge/internal/prompt"
	"lessonforge/internal/routing"
	"lessonforge/internal/validation"
)

func TestMain(m *testing.M) {
	// opencensus (pulled in transitively by the genai client) starts a
	// worker goroutine in package init that can never be stopped.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

const goodObjectives = `Learning Objectives
Grade Level: Middle
Topic: Bacteria growth at different temperatures

By the end of this lesson, students will be able to:
1. Explain how bacteria multiply at different temperatures.
2. Compare bacterial growth rates in warm and cold environments.
3. Predict which storage temperature slows bacterial growth.
4. Measure colony growth across three temperature settings.
5. Summarize the relationship between temperature and microbial activity.
`

// badObjectives is structurally valid but leads with a non-measurable verb.
const badObjectives = `Learning Objectives
Grade Level: Middle
Topic: Bacteria growth at different temperatures

By the end of this lesson, students will be able to:
1. Understand how bacteria multiply at different temperatures.
2. Compare bacterial growth rates in warm and cold environments.
3. Predict which storage temperature slows bacterial growth.
4. Measure colony growth across three temperature settings.
5. Summarize the relationship between temperature and microbial activity.
`

// scriptedClient returns canned responses (or errors) in order, recording
// every prompt it receives.
type scriptedClient struct {
	responses []string
	errs      []error
	prompts   []string
}

func (c *scriptedClient) Provider() string { return "scripted" }

func (c *scriptedClient) Complete(ctx context.Context, p string) (string, error) {
	return c.CompleteWithSystem(ctx, "", p)
}

func (c *scriptedClient) CompleteWithSystem(ctx context.Context, system, user string) (string, error) {
	call := len(c.prompts)
	c.prompts = append(c.prompts, user)
	if call < len(c.errs) && c.errs[call] != nil {
		return "", c.errs[call]
	}
	if call < len(c.responses) {
		return c.responses[call], nil
	}
	return "", fmt.Errorf("unscripted call %d", call)
}

type captureRecorder struct {
	results []*Result
}

func (r *captureRecorder) Record(ctx context.Context, res *Result) error {
	r.results = append(r.results, res)
	return nil
}

func newTestOrchestrator(client llm.Client, rec Recorder) *Orchestrator {
	return NewOrchestrator(
		routing.NewRouter(nil),
		prompt.NewBuilder(nil),
		validation.NewValidator(nil),
		client,
		rec,
		nil,
	)
}

func mustRequest(t *testing.T) *Request {
	t.Helper()
	req, err := NewRequest("learning_objectives", "middle",
		"how bacteria multiply at different temperatures", 5)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestGenerateFirstAttemptSuccess(t *testing.T) {
	client := &scriptedClient{responses: []string{goodObjectives}}
	rec := &captureRecorder{}
	o := newTestOrchestrator(client, rec)

	res, err := o.Generate(context.Background(), mustRequest(t))
	if err != nil {
		t.Fatal(err)
	}

	if !res.Succeeded() {
		t.Fatalf("state = %s, criticals = %v", res.State, res.Critical)
	}
	if len(res.Attempts) != 1 {
		t.Errorf("attempts = %d, want 1", len(res.Attempts))
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", res.Warnings)
	}
	if res.Fields == nil || len(res.Fields.Items) != 5 {
		t.Error("fields not populated from accepted output")
	}
	if res.Routing.Domain != routing.Biology {
		t.Errorf("routed domain = %q", res.Routing.Domain)
	}
	if len(rec.results) != 1 {
		t.Errorf("recorder calls = %d, want 1", len(rec.results))
	}
}

func TestGenerateRepairSucceeds(t *testing.T) {
	client := &scriptedClient{responses: []string{badObjectives, goodObjectives}}
	o := newTestOrchestrator(client, nil)

	res, err := o.Generate(context.Background(), mustRequest(t))
	if err != nil {
		t.Fatal(err)
	}

	if !res.Succeeded() {
		t.Fatalf("state = %s, criticals = %v", res.State, res.Critical)
	}
	if len(res.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(res.Attempts))
	}

	repairPrompt := client.prompts[1]
	if !strings.HasPrefix(repairPrompt, client.prompts[0]) {
		t.Error("repair prompt must start with the original prompt")
	}
	if !strings.Contains(repairPrompt, badObjectives) {
		t.Error("repair prompt must include the invalid output verbatim")
	}
	if !strings.Contains(repairPrompt, "non-measurable") {
		t.Error("repair prompt must list the critical violations")
	}
}

func TestGenerateExhaustsBudget(t *testing.T) {
	client := &scriptedClient{responses: []string{badObjectives, badObjectives, badObjectives}}
	rec := &captureRecorder{}
	o := newTestOrchestrator(client, rec)

	res, err := o.Generate(context.Background(), mustRequest(t))
	if err != nil {
		t.Fatalf("exhaustion is a structured outcome, not an error: %v", err)
	}

	if res.State != StateExhausted {
		t.Fatalf("state = %s, want %s", res.State, StateExhausted)
	}
	// Learning objectives budget two attempts.
	if len(res.Attempts) != 2 {
		t.Errorf("attempts = %d, want 2", len(res.Attempts))
	}
	if len(res.Critical) == 0 {
		t.Error("exhausted result must carry the last attempt's violations")
	}
	if res.Fields != nil {
		t.Error("exhausted result must not expose fields")
	}
	if len(rec.results) != 1 {
		t.Errorf("recorder calls = %d, want 1", len(rec.results))
	}
}

func TestGenerateNonRetryableBypassesBudget(t *testing.T) {
	authErr := fmt.Errorf("%w: %w: bad key", llm.ErrNonRetryable, llm.ErrAuth)
	client := &scriptedClient{errs: []error{authErr}}
	o := newTestOrchestrator(client, nil)

	res, err := o.Generate(context.Background(), mustRequest(t))
	if err == nil {
		t.Fatal("auth rejection must surface as an error")
	}
	if res != nil {
		t.Error("no result on non-retryable failure")
	}
	if !llm.IsNonRetryable(err) {
		t.Errorf("error lost its classification: %v", err)
	}
	if !errors.Is(err, llm.ErrAuth) {
		t.Errorf("error lost its cause: %v", err)
	}
	if len(client.prompts) != 1 {
		t.Errorf("provider called %d times, want 1", len(client.prompts))
	}
}

func TestGenerateTransportFailureConsumesAttempt(t *testing.T) {
	client := &scriptedClient{
		errs:      []error{errors.New("connection reset"), nil},
		responses: []string{"", goodObjectives},
	}
	o := newTestOrchestrator(client, nil)

	res, err := o.Generate(context.Background(), mustRequest(t))
	if err != nil {
		t.Fatal(err)
	}
	if !res.Succeeded() {
		t.Fatalf("state = %s", res.State)
	}
	if len(res.Attempts) != 2 {
		t.Fatalf("attempts = %d, want 2 (failure consumed one)", len(res.Attempts))
	}
	if res.Attempts[0].Err == "" {
		t.Error("first attempt should record the transport error")
	}
	// The same prompt is retried: no repair wrapping after a transport error.
	if client.prompts[0] != client.prompts[1] {
		t.Error("transport retry must reuse the identical prompt")
	}
}

func TestGenerateTransportOnlyExhaustion(t *testing.T) {
	client := &scriptedClient{
		errs: []error{errors.New("connection reset"), errors.New("connection reset")},
	}
	o := newTestOrchestrator(client, nil)

	res, err := o.Generate(context.Background(), mustRequest(t))
	if err != nil {
		t.Fatal(err)
	}

	if res.State != StateExhausted {
		t.Fatalf("state = %s, want %s", res.State, StateExhausted)
	}
	if len(res.Attempts) != 2 {
		t.Errorf("attempts = %d, want 2", len(res.Attempts))
	}
	// No attempt produced output, so no validation criticals exist. The
	// result must still explain the failure instead of arriving empty.
	if len(res.Critical) == 0 {
		t.Fatal("exhausted result must name the failure even when every attempt died in transport")
	}
	if !strings.Contains(res.Critical[0], "model call failed") ||
		!strings.Contains(res.Critical[0], "connection reset") {
		t.Errorf("critical = %q, want the transport error surfaced", res.Critical[0])
	}
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &scriptedClient{responses: []string{goodObjectives}}
	o := newTestOrchestrator(client, nil)

	_, err := o.Generate(ctx, mustRequest(t))
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("err = %v, want ErrCancelled", err)
	}
	if len(client.prompts) != 0 {
		t.Error("no provider call after cancellation")
	}
}

func TestNewRequestAggregatesErrors(t *testing.T) {
	_, err := NewRequest("quizzes", "middle", "", 0)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	if !strings.Contains(msg, "unknown generator family") {
		t.Errorf("missing family error: %v", msg)
	}
	if !strings.Contains(msg, "intent must not be empty") {
		t.Errorf("missing intent error: %v", msg)
	}
}

func TestNewRequestCountRules(t *testing.T) {
	if _, err := NewRequest("learning_objectives", "high", "cells", 12); err == nil {
		t.Error("count above band must be rejected")
	}
	if _, err := NewRequest("discussion_questions", "high", "food safety", 4); err == nil {
		t.Error("fixed-count family must reject a custom count")
	}
	req, err := NewRequest("discussion_questions", "high", "food safety", 5)
	if err != nil {
		t.Fatalf("exact fixed count must be accepted: %v", err)
	}
	if req.ItemCount != 5 {
		t.Errorf("item count = %d", req.ItemCount)
	}

	req, err = NewRequest("learning_objectives", "", "cells", 0)
	if err != nil {
		t.Fatal(err)
	}
	if req.ItemCount != 5 {
		t.Errorf("default item count = %d, want 5", req.ItemCount)
	}
}
