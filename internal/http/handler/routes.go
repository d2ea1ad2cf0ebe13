package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"despesas/internal/classifier"
	"despesas/internal/service"
)

// RegisterRoutes attaches the ops routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, ops service.Operations, gatherer prometheus.Gatherer) {
	app.Get("/healthz", LivenessProbe())
	app.Get("/health", HealthCheck(ops))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	app.Get("/categories", ListCategories())
	app.Get("/periods/:year/:month", GetPeriod(ops))
	app.Post("/periods/:year/:month/reconcile", ReconcilePeriod(ops))
}

// LivenessProbe answers 200 while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// HealthCheck checks store connectivity only.
func HealthCheck(ops service.Operations) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := ops.Ping(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// ListCategories returns the closed category set in rule order.
func ListCategories() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": classifier.Categories()})
	}
}

type periodResponse struct {
	Year   int `json:"year"`
	Month  int `json:"month"`
	Stored int `json:"stored"`
}

// GetPeriod returns the stored row count of a period.
func GetPeriod(ops service.Operations) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, month, ok := periodParams(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PERIOD", "invalid year or month")
		}
		n, err := ops.StoredCount(c.UserContext(), year, month)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(periodResponse{Year: year, Month: month, Stored: n})
	}
}

type backfillResponse struct {
	State   string `json:"state"`
	Written int    `json:"written"`
	Skipped int    `json:"skipped"`
}

type reconcileResponse struct {
	Year        int               `json:"year"`
	Month       int               `json:"month"`
	Upstream    int               `json:"upstream"`
	Stored      int               `json:"stored"`
	StoredAfter int               `json:"stored_after"`
	Flags       []string          `json:"flags"`
	Converged   bool              `json:"converged"`
	Backfill    *backfillResponse `json:"backfill,omitempty"`
}

// ReconcilePeriod reconciles one period. A concurrent job yields 409.
func ReconcilePeriod(ops service.Operations) fiber.Handler {
	return func(c *fiber.Ctx) error {
		year, month, ok := periodParams(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PERIOD", "invalid year or month")
		}

		res, err := ops.Reconcile(c.UserContext(), year, month)
		if err != nil {
			if errors.Is(err, service.ErrBusy) {
				return writeError(c, fiber.StatusConflict, "JOB_RUNNING", "a pipeline job is already running")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		if errors.Is(res.Err, service.ErrStoreUnavailable) {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}

		out := reconcileResponse{
			Year:        year,
			Month:       month,
			Upstream:    res.Upstream,
			Stored:      res.Stored,
			StoredAfter: res.StoredAfter,
			Flags:       res.Flags,
			Converged:   res.Converged(),
		}
		if out.Flags == nil {
			out.Flags = []string{}
		}
		if res.Backfill != nil {
			out.Backfill = &backfillResponse{
				State:   string(res.Backfill.State),
				Written: res.Backfill.Written,
				Skipped: res.Backfill.Skipped,
			}
		}
		return c.JSON(out)
	}
}

func periodParams(c *fiber.Ctx) (int, int, bool) {
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil || year < 2000 || year > 9999 {
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Params("month"))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}
