package repository

import (
	"context"
	"database/sql"
	"time"
)

// MetricsRepo computes dashboard aggregates.  Everything here is a plain
// grouped query recomputed per request; the response cache middleware is the
// only caching layer.
type MetricsRepo struct{ DB *sql.DB }

func NewMetricsRepo(db *sql.DB) *MetricsRepo { return &MetricsRepo{DB: db} }

// RequestMetrics holds counts of requests by status and by fixed time
// buckets.
type RequestMetrics struct {
	Total        int64 `json:"total"`
	Pending      int64 `json:"pending"`
	Approved     int64 `json:"approved"`
	Rejected     int64 `json:"rejected"`
	Today        int64 `json:"today"`
	Yesterday    int64 `json:"yesterday"`
	CurrentMonth int64 `json:"current_month"`
	LastMonth    int64 `json:"last_month"`
}

// TrendPoint is one hourly bucket of the submissions histogram.
type TrendPoint struct {
	Hour  time.Time `json:"hour"`
	Count int64     `json:"count"`
}

// RequestCounts returns status and time-bucket counts in one round trip.
func (r *MetricsRepo) RequestCounts(ctx context.Context) (RequestMetrics, error) {
	var m RequestMetrics
	err := r.DB.QueryRowContext(ctx, `
		SELECT
		  COUNT(*),
		  COUNT(*) FILTER (WHERE status = 'pending'),
		  COUNT(*) FILTER (WHERE status = 'approved'),
		  COUNT(*) FILTER (WHERE status = 'rejected'),
		  COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now())),
		  COUNT(*) FILTER (WHERE created_at >= date_trunc('day', now()) - interval '1 day'
		                     AND created_at <  date_trunc('day', now())),
		  COUNT(*) FILTER (WHERE created_at >= date_trunc('month', now())),
		  COUNT(*) FILTER (WHERE created_at >= date_trunc('month', now()) - interval '1 month'
		                     AND created_at <  date_trunc('month', now()))
		FROM publisher_requests`).
		Scan(&m.Total, &m.Pending, &m.Approved, &m.Rejected,
			&m.Today, &m.Yesterday, &m.CurrentMonth, &m.LastMonth)
	return m, err
}

// SubmissionsTrend returns the hourly submission histogram for the trailing
// window.  Hours with no submissions are absent; the UI fills gaps.
func (r *MetricsRepo) SubmissionsTrend(ctx context.Context, hours int) ([]TrendPoint, error) {
	if hours < 24 {
		hours = 24
	}
	if hours > 48 {
		hours = 48
	}
	rows, err := r.DB.QueryContext(ctx, `
		SELECT date_trunc('hour', created_at) AS bucket, COUNT(*)
		FROM publisher_requests
		WHERE created_at >= now() - make_interval(hours => $1)
		GROUP BY bucket
		ORDER BY bucket`, hours)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Hour, &p.Count); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
