package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bigdrops/admin-portal/internal/repository"
)

type mockMetricsStore struct {
	countsFunc func(ctx context.Context) (repository.RequestMetrics, error)
	trendFunc  func(ctx context.Context, hours int) ([]repository.TrendPoint, error)
}

func (m *mockMetricsStore) RequestCounts(ctx context.Context) (repository.RequestMetrics, error) {
	if m.countsFunc != nil {
		return m.countsFunc(ctx)
	}
	return repository.RequestMetrics{}, errors.New("not implemented")
}

func (m *mockMetricsStore) SubmissionsTrend(ctx context.Context, hours int) ([]repository.TrendPoint, error) {
	if m.trendFunc != nil {
		return m.trendFunc(ctx, hours)
	}
	return nil, errors.New("not implemented")
}

func TestMetricsOverview(t *testing.T) {
	store := &mockMetricsStore{
		countsFunc: func(ctx context.Context) (repository.RequestMetrics, error) {
			return repository.RequestMetrics{Total: 10, Pending: 4, Approved: 5, Rejected: 1, Today: 2}, nil
		},
	}
	h := NewMetricsHandler(store)
	e := echo.New()
	c, rec := newContext(e, http.MethodGet, "/api/dashboard/metrics", "")
	if err := h.Overview(c); err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Metrics repository.RequestMetrics `json:"metrics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Metrics.Total != 10 || body.Metrics.Pending != 4 {
		t.Errorf("metrics = %+v", body.Metrics)
	}
}

func TestSubmissionsTrendPassesHours(t *testing.T) {
	var gotHours int
	store := &mockMetricsStore{
		trendFunc: func(ctx context.Context, hours int) ([]repository.TrendPoint, error) {
			gotHours = hours
			return nil, nil
		},
	}
	h := NewMetricsHandler(store)
	e := echo.New()
	c, rec := newContext(e, http.MethodGet, "/api/dashboard/submissions-trend?hours=36", "")
	if err := h.SubmissionsTrend(c); err != nil {
		t.Fatalf("SubmissionsTrend: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotHours != 36 {
		t.Errorf("hours = %d, want 36", gotHours)
	}
	// nil trend serializes as an empty array, not null
	var body struct {
		Trend []repository.TrendPoint `json:"trend"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Trend == nil {
		t.Error("trend is null, want []")
	}
}
