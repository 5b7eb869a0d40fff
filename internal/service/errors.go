package service

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// Expected business outcomes. Anything else returned by a service is a
// storage failure and has already been logged.
var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrConflict means the operation would violate a uniqueness or state
	// invariant (duplicate friendship, duplicate pending request, existing
	// membership).
	ErrConflict = errors.New("conflicting state")
)

// storageErr logs an unexpected data-access failure with enough context to
// diagnose it, and wraps it for the caller.
func storageErr(op string, err error, ids ...uint) error {
	log.Printf("%s failed (ids=%v): %v", op, ids, err)
	return fmt.Errorf("%s: %w", op, err)
}

// notFoundOr maps a missing row to ErrNotFound and treats anything else as a
// storage failure.
func notFoundOr(op string, err error, ids ...uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return storageErr(op, err, ids...)
}
