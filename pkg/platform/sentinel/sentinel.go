package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally wrapped)
// and services translate them into coded domain errors.
//
//   - ErrNotFound: the entity does not exist in the store
//   - ErrConflict: a uniqueness constraint rejected the write
//   - ErrAlreadyUsed: the slot is already taken (open auto review for client and type)
//   - ErrInvalidState: the entity is in the wrong state for the requested operation
//   - ErrUnavailable: a backing resource is temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
