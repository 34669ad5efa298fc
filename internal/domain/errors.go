package domain

import "errors"

var (
	// ErrValidation indicates a malformed URL, tag list or reorder payload.
	ErrValidation = errors.New("validation failed")

	// ErrDuplicate indicates the owner already saved this URL.
	ErrDuplicate = errors.New("bookmark already exists")

	// ErrNotFound indicates no record matched the id for this owner.
	ErrNotFound = errors.New("bookmark not found")

	// ErrUnauthorized indicates the caller has no verified owner key.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrStore indicates the document store failed.
	ErrStore = errors.New("store failure")
)
