package controllers

import (
	"log/slog"
	"net/http"

	h "listsync/internal/delivery/http/helpers"
	"listsync/internal/domain"
)

type HealthController struct {
	Logger *slog.Logger
	Outbox domain.OutboxService
}

func NewHealthController(logger *slog.Logger, outbox domain.OutboxService) *HealthController {
	return &HealthController{
		Logger: logger,
		Outbox: outbox,
	}
}

// Live godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains {status: ok}"
// @Router /health [get]
func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	h.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// OutboxHealth godoc
// @Summary Outbox backlog health
// @Description Reports the relay backlog: pending event count and the age of the oldest pending event, degraded to warning or error past the configured thresholds. A growing backlog means the relay is stalled while writes keep succeeding.
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains the outbox health"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /health/outbox [get]
func (c *HealthController) OutboxHealth(w http.ResponseWriter, r *http.Request) {
	health, err := c.Outbox.HealthCheck(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, health)
}

// ResetOutbox godoc
// @Summary Re-queue failed outbox events
// @Description Zeroes the attempt counters of events that exhausted their retries so the relay picks them up again. Operator escape hatch for a backlog stuck behind a transient fault.
// @Tags health
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains {reset: count}"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /health/outbox/reset [post]
func (c *HealthController) ResetOutbox(w http.ResponseWriter, r *http.Request) {
	count, err := c.Outbox.ResetFailed(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]int64{"reset": count})
}
