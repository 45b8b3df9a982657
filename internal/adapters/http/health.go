package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/geogrids/internal/pkg/gdgg"
)

// HealthHandler reports liveness along with the build and grid defaults.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":            "healthy",
			"uptime":            time.Since(startedAt).String(),
			"version":           version,
			"default_precision": deps.defaultPrecision(),
			"max_precision":     gdgg.MaxPrecision,
		})
	}
}

// readinessCheck probes one backend. A failing required check takes the
// instance out of rotation; an optional one only degrades it.
type readinessCheck struct {
	name     string
	required bool
	run      func(ctx context.Context) error // nil when not configured
}

// gridSelfCheck hashes a fixed coordinate and compares it with its known cell.
func gridSelfCheck(context.Context) error {
	if got := gdgg.LatLonToReadableHash(45, 45, 5); got != "20" {
		return fmt.Errorf("grid returned %q for the reference point", got)
	}
	return nil
}

func readinessChecks(deps *Dependencies) []readinessCheck {
	checks := []readinessCheck{
		{name: "grid", required: true, run: gridSelfCheck},
		// word lists live in Postgres
		{name: "database", required: true},
		// NATS only carries events and async batches
		{name: "nats"},
		// the cache only fronts word-list reads
		{name: "cache"},
	}
	if deps.DB != nil {
		checks[1].run = deps.DB.Ping
	}
	if deps.NATS != nil {
		checks[2].run = func(context.Context) error {
			if !deps.NATS.IsConnected() {
				return fmt.Errorf("%s", deps.NATS.Status())
			}
			return nil
		}
	}
	if deps.Cache != nil {
		checks[3].run = deps.Cache.Ping
	}
	return checks
}

// ReadyHandler runs every readiness check. It answers 503 when a required
// check fails and "degraded" when only optional backends are down.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		results := make(map[string]string)
		status := "ready"
		code := fiber.StatusOK

		for _, chk := range readinessChecks(deps) {
			switch {
			case chk.run == nil:
				results[chk.name] = "not configured"
				if !chk.required {
					continue
				}
			default:
				err := chk.run(ctx)
				if err == nil {
					results[chk.name] = "ok"
					continue
				}
				results[chk.name] = "error: " + err.Error()
			}

			if chk.required {
				status = "not ready"
				code = fiber.StatusServiceUnavailable
			} else if status == "ready" {
				status = "degraded"
			}
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": results,
		})
	}
}
