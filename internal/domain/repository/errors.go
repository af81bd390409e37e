package repository

import "errors"

var (
	// ErrNotFound is returned by every store when the document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrStatusConflict is returned by conditional updates when the stored
	// status no longer matches the status the caller read.
	ErrStatusConflict = errors.New("document status changed concurrently")

	// ErrDuplicate is returned when a unique key (e-mail) is already taken.
	ErrDuplicate = errors.New("duplicate key")
)
