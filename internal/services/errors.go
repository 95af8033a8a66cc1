package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for outcomes callers are expected to branch on.
var (
	// ErrNotFound is returned when a record or user id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateUsername is returned when creating a user whose
	// username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrLastAdmin is returned when an operation would remove the last
	// active admin-role user.
	ErrLastAdmin = errors.New("cannot delete the last active admin user")

	// ErrInvalidCredentials is returned on a failed login. Unknown
	// username, inactive account and wrong password are deliberately
	// indistinguishable.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError reports malformed or missing required input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// StorageError wraps an underlying store failure. The wrapped error
// carries full detail for the operational log; callers surface only a
// generic failure to the outside.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
