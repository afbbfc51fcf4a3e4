package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lessonforge/internal/config"
	"lessonforge/internal/generation"
	"lessonforge/internal/routing"
	"lessonforge/internal/usage"
	"lessonforge/internal/validation"
)

// stubGenerator returns a fixed result or error for every request.
type stubGenerator struct {
	result *generation.Result
	err    error
	last   *generation.Request
}

func (g *stubGenerator) Generate(ctx context.Context, req *generation.Request) (*generation.Result, error) {
	g.last = req
	if g.err != nil {
		return nil, g.err
	}
	res := *g.result
	res.Request = req
	return &res, nil
}

type deniedQuota struct{}

func (deniedQuota) Allow(context.Context, string) error  { return usage.ErrQuotaExceeded }
func (deniedQuota) Record(context.Context, string) error { return nil }

// countingQuota records how often each side of the quota service is hit.
type countingQuota struct {
	allows  int
	records int
}

func (q *countingQuota) Allow(context.Context, string) error  { q.allows++; return nil }
func (q *countingQuota) Record(context.Context, string) error { q.records++; return nil }

func newTestServer(gen Generator, quota usage.Service) *Server {
	if quota == nil {
		quota = usage.NoopService{}
	}
	return New(config.ServerConfig{Addr: ":0"}, gen, quota, nil)
}

func postJSON(t *testing.T, srv *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func successResult() *generation.Result {
	return &generation.Result{
		State: generation.StateSucceeded,
		Routing: routing.Result{
			Domain:     routing.Biology,
			Confidence: 0.8,
		},
		Content: "Learning Objectives\n...",
		Fields: &validation.Fields{
			GradeLevel: "Middle",
			Topic:      "Bacteria growth",
			Items:      []string{"Explain one thing."},
		},
		Attempts: []generation.Attempt{{Number: 1}},
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&stubGenerator{result: successResult()}, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestGenerateEndpointSuccess(t *testing.T) {
	gen := &stubGenerator{result: successResult()}
	srv := newTestServer(gen, nil)

	w := postJSON(t, srv, "/api/v1/generate/learning_objectives",
		`{"grade_level": "middle", "intent": "bacteria growth", "item_count": 5}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "succeeded", resp["state"])
	assert.Equal(t, "biology", resp["domain"])
	assert.NotEmpty(t, resp["request_id"])

	require.NotNil(t, gen.last)
	assert.Equal(t, "learning_objectives", gen.last.Family.Name)
	assert.Equal(t, 5, gen.last.ItemCount)
}

func TestGenerateEndpointPerFamilyRoutes(t *testing.T) {
	gen := &stubGenerator{result: successResult()}
	srv := newTestServer(gen, nil)

	w := postJSON(t, srv, "/api/v1/generate/discussion_questions",
		`{"grade_level": "high", "intent": "food safety at home"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "discussion_questions", gen.last.Family.Name)
}

func TestGenerateEndpointBadBody(t *testing.T) {
	srv := newTestServer(&stubGenerator{result: successResult()}, nil)

	w := postJSON(t, srv, "/api/v1/generate/learning_objectives", `{"grade_level": "middle"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateEndpointInvalidCount(t *testing.T) {
	srv := newTestServer(&stubGenerator{result: successResult()}, nil)

	w := postJSON(t, srv, "/api/v1/generate/learning_objectives",
		`{"intent": "bacteria growth", "item_count": 50}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "outside the accepted")
}

func TestGenerateEndpointExhausted(t *testing.T) {
	exhausted := &generation.Result{
		State:    generation.StateExhausted,
		Routing:  routing.Result{Domain: routing.Biology},
		Critical: []string{"expected exactly 5 questions, found 4"},
		Attempts: []generation.Attempt{{Number: 1}, {Number: 2}},
	}
	srv := newTestServer(&stubGenerator{result: exhausted}, nil)

	w := postJSON(t, srv, "/api/v1/generate/learning_objectives",
		`{"intent": "bacteria growth"}`)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "exhausted")
	assert.Contains(t, w.Body.String(), "expected exactly 5 questions")
}

func TestGenerateEndpointQuotaExceeded(t *testing.T) {
	srv := newTestServer(&stubGenerator{result: successResult()}, deniedQuota{})

	w := postJSON(t, srv, "/api/v1/generate/learning_objectives",
		`{"intent": "bacteria growth", "requester": "teacher-1"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestGenerateEndpointQuotaSpentOnlyOnSuccess(t *testing.T) {
	quota := &countingQuota{}
	srv := newTestServer(&stubGenerator{result: successResult()}, quota)

	w := postJSON(t, srv, "/api/v1/generate/learning_objectives",
		`{"intent": "bacteria growth"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, quota.allows)
	assert.Equal(t, 1, quota.records)

	exhausted := &generation.Result{
		State:    generation.StateExhausted,
		Routing:  routing.Result{Domain: routing.Biology},
		Critical: []string{"expected exactly 5 questions, found 4"},
	}
	quota = &countingQuota{}
	srv = newTestServer(&stubGenerator{result: exhausted}, quota)

	w = postJSON(t, srv, "/api/v1/generate/learning_objectives",
		`{"intent": "bacteria growth"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 1, quota.allows)
	assert.Equal(t, 0, quota.records, "a failed generation must not spend quota")
}

func TestGenerateEndpointCancelled(t *testing.T) {
	srv := newTestServer(&stubGenerator{err: generation.ErrCancelled}, nil)

	w := postJSON(t, srv, "/api/v1/generate/learning_objectives",
		`{"intent": "bacteria growth"}`)
	assert.Equal(t, http.StatusRequestTimeout, w.Code)
}
