package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/sylrest/keepsake/internal/api"
	"github.com/sylrest/keepsake/internal/service"
)

// secretHeader is the header alternative to the "secret" form field for
// clients that prefer not to put credentials in the body.
const secretHeader = "X-Keepsake-Secret"

// Upload handles POST /upload and POST /api/upload -- the ShareX-style
// multipart upload endpoint. The image goes in the "image" (or "file")
// field; the upload secret in the "secret" field or the X-Keepsake-Secret
// header. The response is {"url": "..."} on success.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	// Hard cap a little above the configured limit so the service can
	// still report an over-limit file as 413 rather than a parse error.
	if h.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes+(1<<20))
	}

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			api.TooLarge(w, "file too large")
			return
		}
		api.BadRequest(w, "invalid multipart form: "+err.Error())
		return
	}

	secret := r.FormValue("secret")
	if secret == "" {
		secret = r.Header.Get(secretHeader)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		file, header, err = r.FormFile("file")
	}
	if err != nil {
		api.BadRequest(w, "no image file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		api.BadRequest(w, "failed to read file: "+err.Error())
		return
	}

	img, err := h.Uploads.Ingest(data, header.Filename, secret)
	if err != nil {
		h.writeUploadError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, map[string]string{"url": img.URL})
}

// writeUploadError maps the ingestion error taxonomy to HTTP responses.
func (h *Handler) writeUploadError(w http.ResponseWriter, err error) {
	var storageErr *service.StorageError
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		// Uniform body: never reveal whether the secret was missing or wrong.
		api.Forbidden(w, "Authentication failed")
	case errors.Is(err, service.ErrEmptyFile):
		api.BadRequest(w, "No image file provided")
	case errors.Is(err, service.ErrInvalidFileType):
		api.BadRequest(w, "File type not allowed")
	case errors.Is(err, service.ErrPayloadTooLarge):
		api.TooLarge(w, "File too large")
	case errors.As(err, &storageErr):
		h.Recorder.Record("high", "Image upload error", err.Error())
		api.Internal(w, "Failed to upload image")
	default:
		h.Recorder.Record("high", "Image upload error", err.Error())
		api.Internal(w, "Failed to upload image")
	}
}
