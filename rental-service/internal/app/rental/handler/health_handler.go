package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"rentaldesk/pkg/logger"
	"rentaldesk/rental-service/internal/app/rental/entity"

	"github.com/gin-gonic/gin"
)

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, entity.HealthResponse{
		Status:  "OK",
		Message: "Server is running",
	})
}

// Check проверяет доступность одной зависимости
type Check func(ctx context.Context) error

// ReadinessHandler опрашивает зависимости; обязательные влияют на статус ответа
type ReadinessHandler struct {
	required map[string]Check
	optional map[string]Check
	timeout  time.Duration
}

func NewReadinessHandler() *ReadinessHandler {
	return &ReadinessHandler{
		required: make(map[string]Check),
		optional: make(map[string]Check),
		timeout:  5 * time.Second,
	}
}

func (h *ReadinessHandler) Require(name string, check Check) *ReadinessHandler {
	h.required[name] = check
	return h
}

// Optional: сбой даёт warning, но сервис остаётся ready
func (h *ReadinessHandler) Optional(name string, check Check) *ReadinessHandler {
	h.optional[name] = check
	return h
}

func (h *ReadinessHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	checks := make(map[string]string, len(h.required)+len(h.optional))
	status := "ready"

	for _, name := range sortedNames(h.required) {
		if err := h.required[name](ctx); err != nil {
			checks[name] = "unhealthy"
			status = "not ready"
			logger.Warn().Err(err).Str("dependency", name).Msg("Readiness check failed")
			continue
		}
		checks[name] = "healthy"
	}

	for _, name := range sortedNames(h.optional) {
		if err := h.optional[name](ctx); err != nil {
			checks[name] = "warning"
			logger.Warn().Err(err).Str("dependency", name).Msg("Optional dependency check failed")
			continue
		}
		checks[name] = "healthy"
	}

	code := http.StatusOK
	if status != "ready" {
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, entity.ReadinessResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now().UTC(),
	})
}

func sortedNames(checks map[string]Check) []string {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
