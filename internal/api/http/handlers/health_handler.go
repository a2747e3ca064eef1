package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hotelmend/ticket-service/internal/persistence"
)

// HealthHandler answers liveness and readiness checks.
type HealthHandler struct {
	serviceName    string
	version        string
	checks         []persistence.Check
	configProblems func() []string
}

// NewHealthHandler returns a new handler instance. configProblems may be nil.
func NewHealthHandler(serviceName, version string, checks []persistence.Check, configProblems func() []string) *HealthHandler {
	return &HealthHandler{
		serviceName:    serviceName,
		version:        version,
		checks:         checks,
		configProblems: configProblems,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready pings every backend and reports missing secrets. A missing secret
// does not fail readiness; logins stay closed until it is set.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			depStatus[check.Name] = err.Error()
			ready = false
		} else {
			depStatus[check.Name] = "ok"
		}
	}

	var problems []string
	if h.configProblems != nil {
		problems = h.configProblems()
	}

	if ready {
		body := fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		}
		if len(problems) > 0 {
			body["config"] = problems
		}
		return c.JSON(body)
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
