// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrNotFound indicates a referenced row does not exist and
// should surface as HTTP 404, while ErrEmailExists and ErrNameExists
// signal unique-column collisions that map to HTTP 409.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert collides with a unique
// email column (users or contacts).
var ErrEmailExists = errors.New("email already exists")

// ErrNameExists is returned when an account name is already in use.
var ErrNameExists = errors.New("name already exists")

// ErrBadReference is returned when a write names a foreign key that does
// not exist (MySQL errno 1452).
var ErrBadReference = errors.New("referenced row does not exist")

// isDuplicate reports whether err is a MySQL duplicate-entry violation.
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// isBadReference reports whether err is a MySQL foreign-key violation.
func isBadReference(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1452")
}
