package service

import (
	"errors"
	"log/slog"

	"github.com/sylrest/keepsake/internal/database"
	"github.com/sylrest/keepsake/internal/storage"
)

// BatchFailure reports why one id in a batch could not be deleted.
type BatchFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// BatchResult accounts for every id in a batch deletion. Absent ids count
// as succeeded (delete is idempotent).
type BatchResult struct {
	Succeeded []int64        `json:"succeeded"`
	Failed    []BatchFailure `json:"failed"`
}

// DeleteService removes images: metadata record and stored file together.
type DeleteService struct {
	db     database.Database
	store  storage.Storage
	logger *slog.Logger
}

func NewDeleteService(db database.Database, store storage.Storage, logger *slog.Logger) *DeleteService {
	return &DeleteService{
		db:     db,
		store:  store,
		logger: logger.With(slog.String("component", "delete")),
	}
}

// Delete removes one image. The record goes first, then the file, so a
// reader never sees a record whose bytes are already gone. The returned
// bool distinguishes "deleted" from "was already absent"; both are success.
func (s *DeleteService) Delete(id int64) (bool, error) {
	img, err := s.db.GetImage(id)
	if errors.Is(err, database.ErrNotFound) {
		deletesTotal.WithLabelValues("absent").Inc()
		return false, nil
	}
	if err != nil {
		deletesTotal.WithLabelValues("failed").Inc()
		return false, &StorageError{Op: "record lookup", Err: err}
	}

	found, err := s.db.DeleteImage(id)
	if err != nil {
		deletesTotal.WithLabelValues("failed").Inc()
		return false, &StorageError{Op: "record delete", Err: err}
	}
	if !found {
		// Raced with a concurrent delete; the other actor removes the file.
		deletesTotal.WithLabelValues("absent").Inc()
		return false, nil
	}

	if err := s.store.Delete(img.SavedFilename); err != nil {
		deletesTotal.WithLabelValues("failed").Inc()
		return false, &StorageError{Op: "file delete", Err: err}
	}
	if err := s.store.DeleteThumb(img.SavedFilename); err != nil {
		s.logger.Warn("thumbnail delete failed", slog.String("file", img.SavedFilename), slog.String("error", err.Error()))
	}

	deletesTotal.WithLabelValues("deleted").Inc()
	s.logger.Info("image deleted", slog.Int64("id", id), slog.String("file", img.SavedFilename))
	return true, nil
}

// DeleteMany deletes each id independently. One id's failure never blocks
// the rest; the result accounts for every id exactly once.
func (s *DeleteService) DeleteMany(ids []int64) BatchResult {
	result := BatchResult{Succeeded: []int64{}, Failed: []BatchFailure{}}
	for _, id := range ids {
		if _, err := s.Delete(id); err != nil {
			result.Failed = append(result.Failed, BatchFailure{ID: id, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	return result
}
