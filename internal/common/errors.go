// Package common defines the sentinel errors shared by the textkeeper store,
// its backends and the callers on top of it. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// ErrStorageUnavailable means the database could not be opened or migrated.
	// No document operation is possible after it.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrTransaction marks a multi-statement operation that failed partway and
	// was rolled back. The in-memory edit buffer of the caller stays valid.
	ErrTransaction = errors.New("transaction failed")

	// ErrNotFound is returned by mutations addressed at a missing row.
	// Queries report absence with a nil result instead.
	ErrNotFound = errors.New("not found")

	// ErrReferentialViolation means a document or folder reference points at
	// a row that does not exist.
	ErrReferentialViolation = errors.New("referential violation")

	// ErrValidation wraps input rejected before it reaches storage.
	ErrValidation = errors.New("validation error")
)
