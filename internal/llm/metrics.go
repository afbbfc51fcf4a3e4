package llm

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	llmRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lessonforge_llm_requests_total",
			Help: "Completion requests by provider and outcome status.",
		},
		[]string{"provider", "status"},
	)
	llmRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lessonforge_llm_request_duration_seconds",
			Help:    "Completion request latency by provider.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
)

// instrumentedClient wraps a Client and records request counts and latency.
type instrumentedClient struct {
	inner Client
}

// InstrumentClient wraps client with Prometheus instrumentation.
func InstrumentClient(client Client) Client {
	return &instrumentedClient{inner: client}
}

func (c *instrumentedClient) Provider() string { return c.inner.Provider() }

func (c *instrumentedClient) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	out, err := c.inner.Complete(ctx, prompt)
	c.record(start, err)
	return out, err
}

func (c *instrumentedClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	out, err := c.inner.CompleteWithSystem(ctx, systemPrompt, userPrompt)
	c.record(start, err)
	return out, err
}

func (c *instrumentedClient) record(start time.Time, err error) {
	provider := c.inner.Provider()
	status := "ok"
	switch {
	case IsNonRetryable(err):
		status = "non_retryable"
	case err != nil:
		status = "error"
	}
	llmRequestsTotal.With(prometheus.Labels{"provider": provider, "status": status}).Inc()
	llmRequestDuration.With(prometheus.Labels{"provider": provider}).Observe(time.Since(start).Seconds())
}
