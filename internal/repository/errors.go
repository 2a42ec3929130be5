// Package repository implements data access over the portal's Postgres
// database.  Sentinel errors defined here let handlers map failures onto
// HTTP statuses without inspecting driver internals.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a row does not exist.  Handlers translate
// this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique constraint,
// such as importing the same (platform, external_id) advertiser twice.
// Handlers translate this into an HTTP 409 response.
var ErrDuplicate = errors.New("duplicate")

// ErrEmailExists is returned when a user insert collides on the unique
// email column.
var ErrEmailExists = errors.New("email already exists")

// isUniqueViolation reports whether err is a Postgres unique_violation
// (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
