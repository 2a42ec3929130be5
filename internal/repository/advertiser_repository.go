package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bigdrops/admin-portal/internal/model"
)

type AdvertiserRepo struct{ DB *sql.DB }

func NewAdvertiserRepo(db *sql.DB) *AdvertiserRepo { return &AdvertiserRepo{DB: db} }

const advertiserColumns = `id, name, company, email, website, platform,
	external_id, created_via, status, created_by, created_at, updated_at`

func scanAdvertiser(sc interface{ Scan(...any) error }) (model.Advertiser, error) {
	var a model.Advertiser
	err := sc.Scan(&a.ID, &a.Name, &a.Company, &a.Email, &a.Website, &a.Platform,
		&a.ExternalID, &a.CreatedVia, &a.Status, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Advertiser{}, ErrNotFound
	}
	return a, err
}

// Create inserts an advertiser row.  A unique (platform, external_id)
// collision surfaces as ErrDuplicate.
func (r *AdvertiserRepo) Create(ctx context.Context, a model.Advertiser) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO advertisers
		   (name, company, email, website, platform, external_id, created_via, status, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		a.Name, a.Company, a.Email, a.Website, a.Platform, a.ExternalID,
		a.CreatedVia, a.Status, a.CreatedBy).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return id, nil
}

// GetByID fetches one advertiser.
func (r *AdvertiserRepo) GetByID(ctx context.Context, id int64) (model.Advertiser, error) {
	return scanAdvertiser(r.DB.QueryRowContext(ctx,
		`SELECT `+advertiserColumns+` FROM advertisers WHERE id = $1`, id))
}

// List returns advertisers ordered by creation time, newest first.
func (r *AdvertiserRepo) List(ctx context.Context, limit, offset int) ([]model.Advertiser, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+advertiserColumns+` FROM advertisers ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Advertiser
	for rows.Next() {
		a, err := scanAdvertiser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update replaces the mutable fields of an advertiser.
func (r *AdvertiserRepo) Update(ctx context.Context, id int64, name, company, email, website, status string) (model.Advertiser, error) {
	return scanAdvertiser(r.DB.QueryRowContext(ctx,
		`UPDATE advertisers
		 SET name=$1, company=$2, email=$3, website=$4, status=$5, updated_at=now()
		 WHERE id=$6
		 RETURNING `+advertiserColumns,
		name, company, email, website, status, id))
}

// Delete removes an advertiser row.
func (r *AdvertiserRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM advertisers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}
