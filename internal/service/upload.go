package service

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sylrest/keepsake/internal/database"
	"github.com/sylrest/keepsake/internal/imageproc"
	"github.com/sylrest/keepsake/internal/model"
	"github.com/sylrest/keepsake/internal/storage"
)

// allowedExtensions is the upload allow-list. Extensions are matched after
// lowercasing.
var allowedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// tokenRetries bounds the stored-filename collision retry loop. The unique
// index on saved_filename is the backstop.
const tokenRetries = 8

// UploadService validates and persists incoming uploads. It is the only
// write path that creates image records.
type UploadService struct {
	db       database.Database
	store    storage.Storage
	secret   string
	baseURL  string
	maxBytes int64
	logger   *slog.Logger
}

func NewUploadService(db database.Database, store storage.Storage, secret, baseURL string, maxBytes int64, logger *slog.Logger) *UploadService {
	return &UploadService{
		db:       db,
		store:    store,
		secret:   secret,
		baseURL:  strings.TrimRight(baseURL, "/") + "/",
		maxBytes: maxBytes,
		logger:   logger.With(slog.String("component", "upload")),
	}
}

// PublicURL derives the public URL for a saved filename. Records never
// store URLs, so this is the single place base-URL composition happens.
func (s *UploadService) PublicURL(savedFilename string) string {
	return s.baseURL + savedFilename
}

// Ingest accepts one upload. On success the file is on disk, exactly one
// record exists for it, and the public URL is returned. On failure no
// record is left behind: the file is written first and compensated away if
// the record insert fails.
func (s *UploadService) Ingest(data []byte, suppliedFilename, secret string) (*model.Image, error) {
	if s.secret == "" || secret != s.secret {
		uploadRejectionsTotal.WithLabelValues("unauthorized").Inc()
		s.logger.Warn("upload rejected: bad secret")
		return nil, ErrUnauthorized
	}

	if len(data) == 0 {
		uploadRejectionsTotal.WithLabelValues("empty").Inc()
		return nil, ErrEmptyFile
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		uploadRejectionsTotal.WithLabelValues("too_large").Inc()
		return nil, ErrPayloadTooLarge
	}

	original := sanitizeFilename(suppliedFilename)
	ext := strings.ToLower(filepath.Ext(original))
	if !allowedExtensions[ext] {
		uploadRejectionsTotal.WithLabelValues("invalid_type").Inc()
		s.logger.Warn("upload rejected: disallowed file type", slog.String("extension", ext))
		return nil, ErrInvalidFileType
	}

	saved, err := s.generateSavedFilename(ext)
	if err != nil {
		uploadRejectionsTotal.WithLabelValues("storage").Inc()
		return nil, &StorageError{Op: "name generation", Err: err}
	}

	// File first, record second. A crash between the two leaves an orphan
	// file, never a dangling record.
	if _, err := s.store.Store(saved, bytes.NewReader(data)); err != nil {
		uploadRejectionsTotal.WithLabelValues("storage").Inc()
		return nil, &StorageError{Op: "file write", Err: err}
	}

	format, width, height := imageproc.Probe(data)

	img := &model.Image{
		OriginalFilename: original,
		SavedFilename:    saved,
		FileExtension:    ext,
		FileSize:         int64(len(data)),
		Width:            width,
		Height:           height,
		UploadedAt:       time.Now().UTC(),
	}

	if err := s.db.CreateImage(img); err != nil {
		// Compensating delete keeps storage and metadata consistent.
		if derr := s.store.Delete(saved); derr != nil {
			s.logger.Error("compensating delete failed", slog.String("file", saved), slog.String("error", derr.Error()))
		}
		uploadRejectionsTotal.WithLabelValues("storage").Inc()
		return nil, &StorageError{Op: "record insert", Err: err}
	}

	s.renderThumbnail(saved, data)

	img.URL = s.PublicURL(saved)
	uploadsTotal.Inc()
	s.logger.Info("image uploaded",
		slog.Int64("id", img.ID),
		slog.String("file", saved),
		slog.String("format", format),
		slog.Int64("size", img.FileSize),
	)
	return img, nil
}

// renderThumbnail writes a listing thumbnail best-effort. A failure never
// fails the upload.
func (s *UploadService) renderThumbnail(saved string, data []byte) {
	thumb, ok, err := imageproc.Thumbnail(data, imageproc.ThumbnailMaxEdge)
	if err != nil {
		s.logger.Warn("thumbnail render failed", slog.String("file", saved), slog.String("error", err.Error()))
		return
	}
	if !ok {
		return
	}
	if _, err := s.store.StoreThumb(saved, bytes.NewReader(thumb)); err != nil {
		s.logger.Warn("thumbnail write failed", slog.String("file", saved), slog.String("error", err.Error()))
	}
}

// generateSavedFilename produces a short unique storage key, independent of
// the supplied filename. Collisions against both live records and leftover
// files are retried with a fresh token.
func (s *UploadService) generateSavedFilename(ext string) (string, error) {
	for i := 0; i < tokenRetries; i++ {
		token := strings.ReplaceAll(uuid.New().String(), "-", "")[:6]
		name := token + ext

		inDB, err := s.db.SavedFilenameExists(name)
		if err != nil {
			return "", err
		}
		onDisk, err := s.store.Exists(name)
		if err != nil {
			return "", err
		}
		if !inDB && !onDisk {
			return name, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique filename after %d attempts", tokenRetries)
}

// sanitizeFilename reduces the untrusted client filename to a safe
// display-only value. It is never used as a storage path.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "unnamed"
	}
	return out
}
