package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bigdrops/admin-portal/internal/model"
)

// RequestRepo persists publisher requests, the portal's central workflow
// entity.
type RequestRepo struct{ DB *sql.DB }

func NewRequestRepo(db *sql.DB) *RequestRepo { return &RequestRepo{DB: db} }

// RequestQuery defines filters, sorting and pagination for listing requests.
// SortBy/SortDir are checked against an allow-list; anything else falls back
// to created_at DESC.
type RequestQuery struct {
	Search   string // ILIKE across publisher_name/company_name/email/offer_id
	Status   string // canonical or legacy spelling; normalized before use
	Priority string
	From     *time.Time // created_at >= From
	To       *time.Time // created_at < To
	SortBy   string
	SortDir  string
	Limit    int
	Offset   int
}

// sortColumns is the allow-list of sortable columns.  Keys are what clients
// send, values the real column names.
var sortColumns = map[string]string{
	"created_at":     "created_at",
	"updated_at":     "updated_at",
	"publisher_name": "publisher_name",
	"company_name":   "company_name",
	"priority":       "priority",
	"status":         "status",
}

const requestColumns = `id, publisher_name, email, company_name, telegram_id,
	offer_id, creative_type, priority, status, submitted_data, admin_notes,
	client_notes, approved_by, approved_at, rejected_by, rejected_at,
	created_at, updated_at`

func scanRequest(sc interface{ Scan(...any) error }) (model.PublisherRequest, error) {
	var pr model.PublisherRequest
	var submitted []byte
	err := sc.Scan(&pr.ID, &pr.PublisherName, &pr.Email, &pr.CompanyName,
		&pr.TelegramID, &pr.OfferID, &pr.CreativeType, &pr.Priority, &pr.Status,
		&submitted, &pr.AdminNotes, &pr.ClientNotes, &pr.ApprovedBy,
		&pr.ApprovedAt, &pr.RejectedBy, &pr.RejectedAt, &pr.CreatedAt, &pr.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PublisherRequest{}, ErrNotFound
	}
	pr.SubmittedData = json.RawMessage(submitted)
	return pr, err
}

// Create inserts a new pending request, preserving the original submission
// payload verbatim in submitted_data.
func (r *RequestRepo) Create(ctx context.Context, pr model.PublisherRequest) (int64, error) {
	if len(pr.SubmittedData) == 0 {
		pr.SubmittedData = json.RawMessage(`{}`)
	}
	var id int64
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO publisher_requests
		   (publisher_name, email, company_name, telegram_id, offer_id,
		    creative_type, priority, status, submitted_data)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		pr.PublisherName, pr.Email, pr.CompanyName, pr.TelegramID, pr.OfferID,
		pr.CreativeType, pr.Priority, model.StatusPending, []byte(pr.SubmittedData)).Scan(&id)
	return id, err
}

// GetByID fetches one request.
func (r *RequestRepo) GetByID(ctx context.Context, id int64) (model.PublisherRequest, error) {
	return scanRequest(r.DB.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM publisher_requests WHERE id = $1`, id))
}

// List returns matching requests plus the total count for pagination.
func (r *RequestRepo) List(ctx context.Context, q RequestQuery) ([]model.PublisherRequest, int64, error) {
	where := []string{}
	args := []any{}

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Search != "" {
		p := arg("%" + q.Search + "%")
		where = append(where, fmt.Sprintf(
			"(publisher_name ILIKE %[1]s OR company_name ILIKE %[1]s OR email ILIKE %[1]s OR offer_id ILIKE %[1]s)", p))
	}
	if st := model.NormalizeStatus(q.Status); st != "" {
		where = append(where, "status = "+arg(st))
	}
	if q.Priority != "" {
		where = append(where, "priority = "+arg(q.Priority))
	}
	if q.From != nil {
		where = append(where, "created_at >= "+arg(*q.From))
	}
	if q.To != nil {
		where = append(where, "created_at < "+arg(*q.To))
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM publisher_requests WHERE ` + cond
	if err := r.DB.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(q.SortDir, "asc") {
		dir = "ASC"
	}

	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	dataSQL := `SELECT ` + requestColumns + `
		FROM publisher_requests
		WHERE ` + cond + `
		ORDER BY ` + col + ` ` + dir + `
		LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.PublisherRequest, 0, limit)
	for rows.Next() {
		pr, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, pr)
	}
	return out, total, rows.Err()
}

// RequestUpdate carries the editable fields of a publisher request.  Status
// and the decision stamps are not here; decisions go through Decide.
type RequestUpdate struct {
	PublisherName string
	Email         string
	CompanyName   string
	TelegramID    *string
	OfferID       string
	CreativeType  string
	Priority      string
	AdminNotes    *string
	ClientNotes   *string
}

// Update replaces the editable fields of a request and returns the new row.
func (r *RequestRepo) Update(ctx context.Context, id int64, u RequestUpdate) (model.PublisherRequest, error) {
	return scanRequest(r.DB.QueryRowContext(ctx,
		`UPDATE publisher_requests
		 SET publisher_name = $1, email = $2, company_name = $3,
		     telegram_id = $4, offer_id = $5, creative_type = $6,
		     priority = $7, admin_notes = $8, client_notes = $9,
		     updated_at = now()
		 WHERE id = $10
		 RETURNING `+requestColumns,
		u.PublisherName, u.Email, u.CompanyName, u.TelegramID, u.OfferID,
		u.CreativeType, u.Priority, u.AdminNotes, u.ClientNotes, id))
}

// Delete removes a request row.
func (r *RequestRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM publisher_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// decideStamps returns the SET fragment stamping the deciding actor and
// time for status.  The opposite pair is cleared so a re-decided row never
// carries both approval and rejection stamps ($2 is the actor id).
func decideStamps(status string) (string, error) {
	switch status {
	case model.StatusApproved:
		return `approved_by = $2, approved_at = now(),
		     rejected_by = NULL, rejected_at = NULL`, nil
	case model.StatusRejected:
		return `rejected_by = $2, rejected_at = now(),
		     approved_by = NULL, approved_at = NULL`, nil
	}
	return "", fmt.Errorf("decide: bad status %q", status)
}

// Decide transitions a request to approved or rejected, stamping the actor
// and time and appending the note to admin_notes.  The update is
// unconditional on the current status: deciding an already-decided request
// overwrites the stamp rather than erroring, and the opposite stamp pair is
// cleared.
func (r *RequestRepo) Decide(ctx context.Context, id, actorID int64, status, note string) (model.PublisherRequest, error) {
	stamps, err := decideStamps(status)
	if err != nil {
		return model.PublisherRequest{}, err
	}

	return scanRequest(r.DB.QueryRowContext(ctx,
		`UPDATE publisher_requests
		 SET status = $1,
		     `+stamps+`,
		     admin_notes = CASE
		       WHEN $3 = '' THEN admin_notes
		       WHEN coalesce(admin_notes, '') = '' THEN $3
		       ELSE admin_notes || E'\n' || $3
		     END,
		     updated_at = now()
		 WHERE id = $4
		 RETURNING `+requestColumns,
		status, actorID, note, id))
}
