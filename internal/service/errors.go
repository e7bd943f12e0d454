package service

import (
	"errors"
	"fmt"
)

// Typed ingestion/deletion failures. Handlers map these to HTTP statuses;
// anything else is treated as an internal error.
var (
	// ErrUnauthorized is returned for a missing or wrong upload secret.
	// The message is deliberately uniform so the response does not reveal
	// which of the two it was.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrEmptyFile is returned for zero-length uploads.
	ErrEmptyFile = errors.New("no file content provided")

	// ErrInvalidFileType is returned when the supplied filename's extension
	// is outside the allow-list.
	ErrInvalidFileType = errors.New("file type not allowed")

	// ErrPayloadTooLarge is returned when the upload exceeds the configured
	// maximum size.
	ErrPayloadTooLarge = errors.New("file too large")
)

// StorageError wraps a disk or database failure during ingestion or
// deletion.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
