package handler

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/sylrest/keepsake/internal/api"
)

// ServeImage handles GET /{filename} -- public delivery of a stored image.
// The storage layer rejects any name that could escape the uploads
// directory, so the raw URL parameter is safe to pass through.
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	h.serveStored(w, r, false)
}

// ServeThumbnail handles GET /thumbs/{filename}.
func (h *Handler) ServeThumbnail(w http.ResponseWriter, r *http.Request) {
	h.serveStored(w, r, true)
}

func (h *Handler) serveStored(w http.ResponseWriter, r *http.Request, thumb bool) {
	name := chi.URLParam(r, "filename")

	var (
		rc  io.ReadCloser
		err error
	)
	if thumb {
		rc, err = h.Store.RetrieveThumb(name)
	} else {
		rc, err = h.Store.Retrieve(name)
	}
	if err != nil {
		api.NotFound(w, "Image not found")
		return
	}
	defer rc.Close()

	contentType := "image/jpeg"
	if !thumb {
		if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
			contentType = ct
		} else {
			contentType = "application/octet-stream"
		}
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("image delivery interrupted", slog.String("file", name), slog.String("error", err.Error()))
	}
}
