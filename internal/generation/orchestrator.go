package generation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"lessonforge/internal/llm"
	"lessonforge/internal/prompt"
	"lessonforge/internal/routing"
	"lessonforge/internal/validation"
)

// systemPersona frames every completion request. The per-request persona and
// directives live in the user prompt built by the prompt package.
const systemPersona = "You are an experienced curriculum designer who writes " +
	"precise, grade-appropriate instructional content and follows output " +
	"format instructions exactly."

// Recorder persists terminal generation outcomes for auditing. Implementations
// must tolerate being called with both succeeded and exhausted results.
type Recorder interface {
	Record(ctx context.Context, res *Result) error
}

// Orchestrator drives the generate-validate-repair loop. All collaborators
// are injected; the orchestrator itself is stateless and safe for concurrent
// use.
type Orchestrator struct {
	router    *routing.Router
	builder   *prompt.Builder
	validator *validation.Validator
	client    llm.Client
	recorder  Recorder
	log       *zap.Logger
}

// NewOrchestrator wires the loop. recorder may be nil when auditing is off.
func NewOrchestrator(router *routing.Router, builder *prompt.Builder, validator *validation.Validator, client llm.Client, recorder Recorder, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		router:    router,
		builder:   builder,
		validator: validator,
		client:    client,
		recorder:  recorder,
		log:       log,
	}
}

// Generate runs the loop to a terminal outcome.
//
// Validation failures are data: an exhausted budget returns a Result in
// StateExhausted with a nil error. Errors are reserved for conditions the
// loop cannot repair: provider auth or quota rejection (which propagates
// immediately without consuming the attempt budget) and context cancellation,
// reported as ErrCancelled. A plain transport failure consumes an attempt and
// the same prompt is retried.
func (o *Orchestrator) Generate(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	fam := req.Family

	// 1. Route the intent to a subject domain. Routing happens once; every
	// attempt shares the same routing decision.
	route := o.router.Route(req.Intent, req.Tier, req.CategoryHint)

	o.log.Info("generation started",
		zap.String("request_id", req.ID),
		zap.String("family", fam.Name),
		zap.String("tier", req.Tier.String()),
		zap.String("domain", string(route.Domain)),
		zap.Float64("confidence", route.Confidence),
		zap.Bool("overlay", route.ApplyOverlay))

	// 2. Build the base prompt once. Repair prompts wrap it verbatim.
	basePrompt := o.builder.BuildGeneration(prompt.GenerationInput{
		Family:        fam,
		Profile:       req.Profile(),
		Routing:       route,
		Topic:         req.Intent,
		ItemCount:     req.ItemCount,
		Customization: req.Customization,
	})

	opts := validation.Options{
		TargetCount:    req.ItemCount,
		IntentText:     req.Intent,
		DomainKeywords: o.router.DomainKeywords(route.Domain),
	}

	res := &Result{
		Request:  req,
		Routing:  route,
		Warnings: append([]string(nil), route.Warnings...),
	}

	currentPrompt := basePrompt
	for attempt := 1; attempt <= fam.AttemptBound; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		attemptStart := time.Now()
		output, err := o.client.CompleteWithSystem(ctx, systemPersona, currentPrompt)
		if err != nil {
			// Terminal provider failures bypass the attempt budget
			// entirely; retrying cannot help.
			if llm.IsNonRetryable(err) {
				o.log.Error("provider rejected request",
					zap.String("request_id", req.ID), zap.Error(err))
				recordOutcome(fam, "non_retryable")
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
			}

			// Transport failure: the attempt is spent, the prompt is
			// unchanged.
			o.log.Warn("completion attempt failed",
				zap.String("request_id", req.ID),
				zap.Int("attempt", attempt),
				zap.Error(err))
			res.Attempts = append(res.Attempts, Attempt{
				Number:   attempt,
				Err:      err.Error(),
				Duration: time.Since(attemptStart),
			})
			continue
		}

		report := o.validator.Validate(output, fam, req.Tier, opts)
		res.Warnings = append(res.Warnings, report.Warnings...)
		res.Attempts = append(res.Attempts, Attempt{
			Number:   attempt,
			Output:   output,
			Critical: report.Critical,
			Duration: time.Since(attemptStart),
		})

		if len(report.Critical) == 0 {
			res.State = StateSucceeded
			res.Fields = report.Fields
			res.Content = report.Fields.Rendered
			res.Duration = time.Since(start)
			o.log.Info("generation succeeded",
				zap.String("request_id", req.ID),
				zap.Int("attempts", attempt),
				zap.Int("warnings", len(res.Warnings)))
			recordAttempts(fam, attempt)
			recordOutcome(fam, "succeeded")
			o.record(ctx, res)
			return res, nil
		}

		res.Critical = report.Critical
		o.log.Warn("attempt failed validation",
			zap.String("request_id", req.ID),
			zap.Int("attempt", attempt),
			zap.Strings("critical", report.Critical))

		if attempt < fam.AttemptBound {
			currentPrompt = o.builder.BuildRepair(basePrompt, output, report.Critical)
		}
	}

	res.State = StateExhausted
	res.Duration = time.Since(start)
	if len(res.Critical) == 0 && len(res.Attempts) > 0 {
		// Every attempt died in transport, so no validation criticals
		// exist. The caller still gets a concrete reason.
		if last := res.Attempts[len(res.Attempts)-1]; last.Err != "" {
			res.Critical = []string{"model call failed: " + last.Err}
		}
	}
	o.log.Error("generation exhausted attempt budget",
		zap.String("request_id", req.ID),
		zap.Int("budget", fam.AttemptBound),
		zap.Strings("critical", res.Critical))
	recordAttempts(fam, fam.AttemptBound)
	recordOutcome(fam, "exhausted")
	o.record(ctx, res)
	return res, nil
}

func (o *Orchestrator) record(ctx context.Context, res *Result) {
	if o.recorder == nil {
		return
	}
	if err := o.recorder.Record(ctx, res); err != nil {
		o.log.Warn("failed to persist generation record",
			zap.String("request_id", res.Request.ID), zap.Error(err))
	}
}
