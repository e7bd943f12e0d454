package database

import (
	"errors"
	"time"

	"github.com/sylrest/keepsake/internal/model"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ListQuery describes one filtered, sorted, paginated view over the image
// records. All filter fields are optional and combine with AND. DateTo is
// expected to already be widened to end-of-day by the caller.
type ListQuery struct {
	Filename      string
	FileExtension string
	DateFrom      time.Time
	DateTo        time.Time
	// MinSize/MaxSize bound file_size in bytes; zero means unbounded.
	MinSize int64
	MaxSize int64

	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// LogQuery describes a filtered page of application log entries.
type LogQuery struct {
	Level    string
	Search   string
	DateFrom time.Time
	DateTo   time.Time
	Page     int
	PerPage  int
}

// Database defines the persistence interface for image metadata and the
// dashboard's log and error tables.
type Database interface {
	// Images
	CreateImage(img *model.Image) error
	GetImage(id int64) (*model.Image, error)
	ListImages(q ListQuery) ([]*model.Image, int, error)
	// DeleteImage reports whether a row existed; deleting an absent id is
	// not an error.
	DeleteImage(id int64) (bool, error)
	SavedFilenameExists(name string) (bool, error)

	// Stats returns aggregate statistics with per-day counts covering the
	// last `days` calendar days, zero-filled.
	Stats(days int) (*model.Stats, error)

	// Logs
	AddLog(level, message, source, details string) error
	ListLogs(q LogQuery) ([]*model.LogEntry, int, error)

	// Errors
	AddError(severity, message, details string) error
	ListErrors(page, perPage int, includeResolved bool) ([]*model.ErrorEntry, int, error)
	ResolveError(id int64) (bool, error)

	Close() error
}
