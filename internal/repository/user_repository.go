package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/bigdrops/admin-portal/internal/model"
	"github.com/bigdrops/admin-portal/internal/utils"
)

// Accounts lock for this long after too many consecutive failed logins.
const (
	maxFailedLogins = 5
	lockDuration    = 15 * time.Minute
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = `id, email, password_hash, first_name, last_name, role,
	is_active, email_verified, last_login, failed_logins, locked_until,
	created_at, updated_at`

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &u.IsActive, &u.EmailVerified, &u.LastLogin, &u.FailedLogins,
		&u.LockedUntil, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// Create inserts a user and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password, firstName, lastName, role string, cost int) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	var id int64
	err = r.DB.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, first_name, last_name, role)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		email, hash, firstName, lastName, role).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	return id, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// List returns users ordered by creation time, newest first.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName,
			&u.LastName, &u.Role, &u.IsActive, &u.EmailVerified, &u.LastLogin,
			&u.FailedLogins, &u.LockedUntil, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update changes a user's name, role and active flag.
func (r *UserRepo) Update(ctx context.Context, id int64, firstName, lastName, role string, isActive bool) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET first_name=$1, last_name=$2, role=$3, is_active=$4, updated_at=now()
		 WHERE id=$5`,
		firstName, lastName, role, isActive, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// Deactivate soft-deletes a user.  Rows are never hard-deleted so audit
// references stay valid.
func (r *UserRepo) Deactivate(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET is_active=false, updated_at=now() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFound
	}
	return err
}

// RecordFailedLogin bumps the failure counter and locks the account once the
// threshold is reached.
func (r *UserRepo) RecordFailedLogin(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET failed_logins = failed_logins + 1,
		        locked_until = CASE WHEN failed_logins + 1 >= $1 THEN now() + make_interval(mins => $2) ELSE locked_until END,
		        updated_at = now()
		 WHERE id = $3`,
		maxFailedLogins, int(lockDuration.Minutes()), id)
	return err
}

// RecordLogin resets the failure counter and stamps last_login.
func (r *UserRepo) RecordLogin(ctx context.Context, id int64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE users SET failed_logins = 0, locked_until = NULL, last_login = now(), updated_at = now()
		 WHERE id = $1`, id)
	return err
}
