package repositories

import "errors"

// Storage-level sentinel errors. The service layer maps these onto its own
// error taxonomy; handlers never see them directly.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrRoleNotFound = errors.New("role not found")

	// Returned when an insert loses the race against the unique indexes on
	// users.username / users.email.
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)
