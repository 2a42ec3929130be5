package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column.  The json tags are omitted
// because these structs are used by the repository layer; handlers define
// separate response types with appropriate JSON tags.
//
// Fields:
//
//	ID            – primary key identifier of the user.
//	Email         – unique email address.
//	PasswordHash  – bcrypt hashed password.
//	FirstName     – given name.
//	LastName      – family name.
//	Role          – one of the five role names (see permissions.go).
//	IsActive      – whether the account may log in.
//	EmailVerified – whether the address has been confirmed.
//	LastLogin     – timestamp of the most recent successful login.
//	FailedLogins  – consecutive failed login attempts since the last success.
//	LockedUntil   – account lock expiry after too many failures (nullable).
type User struct {
	ID            int64      // users.id
	Email         string     // users.email
	PasswordHash  string     // users.password_hash
	FirstName     string     // users.first_name
	LastName      string     // users.last_name
	Role          string     // users.role
	IsActive      bool       // users.is_active
	EmailVerified bool       // users.email_verified
	LastLogin     *time.Time // users.last_login (nullable)
	FailedLogins  int        // users.failed_logins
	LockedUntil   *time.Time // users.locked_until (nullable)
	CreatedAt     time.Time  // users.created_at
	UpdatedAt     time.Time  // users.updated_at
}
