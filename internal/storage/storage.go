package storage

import "io"

// Storage defines the interface for stored image bytes, keyed by the
// system-generated saved filename.
type Storage interface {
	// Store writes image data and returns the number of bytes written.
	Store(savedFilename string, data io.Reader) (int64, error)

	// Retrieve returns a ReadCloser for the stored image data.
	Retrieve(savedFilename string) (io.ReadCloser, error)

	// Delete removes the stored image data. Idempotent.
	Delete(savedFilename string) error

	// Exists checks whether image data exists in storage.
	Exists(savedFilename string) (bool, error)

	// StoreThumb writes thumbnail bytes for a stored image.
	StoreThumb(savedFilename string, data io.Reader) (int64, error)

	// RetrieveThumb returns a ReadCloser for a stored thumbnail.
	RetrieveThumb(savedFilename string) (io.ReadCloser, error)

	// DeleteThumb removes a stored thumbnail. Idempotent.
	DeleteThumb(savedFilename string) error
}
