package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// AuditRepo appends audit-log rows.  Writes are best effort at the call
// sites: a failed audit insert is logged but never aborts the action it
// describes.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Append records an action against an entity.  Metadata is marshalled to
// JSON; nil means an empty object.
func (r *AuditRepo) Append(ctx context.Context, actorID int64, action, entityType string, entityID int64, metadata map[string]any) error {
	meta := []byte(`{}`)
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return err
		}
		meta = b
	}
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO audit_logs (actor_id, action, entity_type, entity_id, metadata)
		 VALUES ($1, $2, $3, $4, $5)`,
		actorID, action, entityType, entityID, meta)
	return err
}

// RecentForEntity returns the latest audit rows for one entity, newest
// first.  Used by the request detail view.
func (r *AuditRepo) RecentForEntity(ctx context.Context, entityType string, entityID int64, limit int) ([]AuditRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, actor_id, action, metadata, created_at
		 FROM audit_logs
		 WHERE entity_type = $1 AND entity_id = $2
		 ORDER BY created_at DESC
		 LIMIT $3`, entityType, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditRow
	for rows.Next() {
		var a AuditRow
		var meta []byte
		if err := rows.Scan(&a.ID, &a.ActorID, &a.Action, &meta, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Metadata = json.RawMessage(meta)
		out = append(out, a)
	}
	return out, rows.Err()
}

// AuditRow is the shape returned to the detail view.
type AuditRow struct {
	ID        int64           `json:"id"`
	ActorID   *int64          `json:"actor_id"`
	Action    string          `json:"action"`
	Metadata  json.RawMessage `json:"metadata"`
	CreatedAt time.Time       `json:"created_at"`
}
