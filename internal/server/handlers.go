package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lessonforge/internal/generation"
	"lessonforge/internal/llm"
	"lessonforge/internal/usage"
	"lessonforge/internal/validation"
)

// generateRequest is the wire shape of a generation call.
type generateRequest struct {
	GradeLevel    string `json:"grade_level"`
	Intent        string `json:"intent" binding:"required"`
	ItemCount     int    `json:"item_count"`
	CategoryHint  string `json:"category_hint"`
	Customization string `json:"customization"`
	Requester     string `json:"requester"`
}

// generateResponse is the wire shape of a terminal outcome.
type generateResponse struct {
	RequestID  string             `json:"request_id"`
	State      string             `json:"state"`
	Domain     string             `json:"domain"`
	Confidence float64            `json:"confidence"`
	Content    string             `json:"content,omitempty"`
	Fields     *validation.Fields `json:"fields,omitempty"`
	Critical   []string           `json:"critical,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
	Attempts   int                `json:"attempts"`
}

type generateHandler struct {
	gen   Generator
	quota usage.Service
	log   *zap.Logger
}

// handle returns the route handler bound to one content family.
func (h *generateHandler) handle(familyName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body generateRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}

		req, err := generation.NewRequest(familyName, body.GradeLevel, body.Intent, body.ItemCount)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.WithHint(body.CategoryHint).WithCustomization(body.Customization)
		req.RequestedBy = body.Requester

		quotaKey := strings.TrimSpace(body.Requester)
		if quotaKey == "" {
			quotaKey = c.ClientIP()
		}
		if err := h.quota.Allow(c.Request.Context(), quotaKey); err != nil {
			if errors.Is(err, usage.ErrQuotaExceeded) {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
				return
			}
			// Quota backend trouble must not block teaching; log and go on.
			h.log.Warn("quota check failed", zap.String("key", quotaKey), zap.Error(err))
		}

		res, err := h.gen.Generate(c.Request.Context(), req)
		if err != nil {
			switch {
			case errors.Is(err, generation.ErrCancelled):
				c.JSON(http.StatusRequestTimeout, gin.H{"error": "generation cancelled"})
			case llm.IsNonRetryable(err):
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}

		resp := generateResponse{
			RequestID:  req.ID,
			State:      string(res.State),
			Domain:     string(res.Routing.Domain),
			Confidence: res.Routing.Confidence,
			Content:    res.Content,
			Fields:     res.Fields,
			Critical:   res.Critical,
			Warnings:   res.Warnings,
			Attempts:   len(res.Attempts),
		}
		if res.Succeeded() {
			// Only delivered content counts against the quota.
			if err := h.quota.Record(c.Request.Context(), quotaKey); err != nil {
				h.log.Warn("failed to record quota usage", zap.String("key", quotaKey), zap.Error(err))
			}
			c.JSON(http.StatusOK, resp)
			return
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
	}
}
