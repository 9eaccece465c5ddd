package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// healthPingTimeout bounds each dependency ping so one slow backend
// cannot stall the whole health check.
const healthPingTimeout = 2 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the health-check endpoint, pinging every registered
// dependency on each request.
type HealthHandler struct {
	deps   map[string]Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a HealthHandler checking the named dependencies.
func NewHealthHandler(deps map[string]Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		deps:   deps,
		logger: logger.With(slog.String("handler", "health")),
	}
}

// HealthCheck reports overall and per-dependency status. Any unreachable
// dependency degrades the response to 503.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	deps := make(map[string]string, len(h.deps))
	for name, p := range h.deps {
		pingCtx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		err := p.Ping(pingCtx)
		cancel()
		if err != nil {
			h.logger.Warn("dependency ping failed",
				slog.String("dependency", name),
				slog.String("error", err.Error()),
			)
			deps[name] = "unreachable"
			status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":       status,
		"dependencies": deps,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}
