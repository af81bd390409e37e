package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck pings one backing dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

var healthHandler *HealthHandler

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	if checks == nil {
		checks = map[string]HealthCheck{}
	}
	return &HealthHandler{
		checks: checks,
	}
}

func SetupHealthHandler(checks map[string]HealthCheck) {
	healthHandler = NewHealthHandler(checks)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

// CheckHealth answers 200 when every dependency responds, 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	dependencies := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			dependencies[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		dependencies[name] = "ok"
	}

	body := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	if len(dependencies) > 0 {
		body["dependencies"] = dependencies
	}
	return c.JSON(status, body)
}
