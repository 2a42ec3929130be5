package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/repository"
)

// MetricsStore computes dashboard aggregates.
type MetricsStore interface {
	RequestCounts(ctx context.Context) (repository.RequestMetrics, error)
	SubmissionsTrend(ctx context.Context, hours int) ([]repository.TrendPoint, error)
}

// MetricsHandler serves the dashboard aggregate endpoints.  No caching here;
// the Redis response-cache middleware sits in front of these routes.
type MetricsHandler struct {
	Metrics MetricsStore
}

func NewMetricsHandler(m MetricsStore) *MetricsHandler {
	if m == nil {
		panic("nil store passed to NewMetricsHandler")
	}
	return &MetricsHandler{Metrics: m}
}

// Overview returns request counts by status and fixed time buckets.
func (h *MetricsHandler) Overview(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	m, err := h.Metrics.RequestCounts(ctx)
	if err != nil {
		c.Logger().Errorf("request counts: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"metrics": m})
}

// SubmissionsTrend returns the hourly submission histogram.  The window is
// clamped to the 24..48 hour range.
func (h *MetricsHandler) SubmissionsTrend(c echo.Context) error {
	hours := queryInt(c, "hours", 24)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	points, err := h.Metrics.SubmissionsTrend(ctx, hours)
	if err != nil {
		c.Logger().Errorf("submissions trend: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if points == nil {
		points = []repository.TrendPoint{}
	}
	return c.JSON(http.StatusOK, echo.Map{"trend": points})
}
