package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sylrest/keepsake/internal/api"
	"github.com/sylrest/keepsake/internal/database"
	"github.com/sylrest/keepsake/internal/model"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// ListImages handles GET /api/images. Malformed pagination or sort
// parameters fall back to the defaults instead of erroring.
func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	q := parseListQuery(r)

	images, total, err := h.DB.ListImages(q)
	if err != nil {
		h.Recorder.Record("medium", "Images retrieval error", err.Error())
		api.Internal(w, "Failed to retrieve images")
		return
	}

	// Ensure non-nil slice for JSON serialisation.
	if images == nil {
		images = []*model.Image{}
	}
	for _, img := range images {
		img.URL = h.Uploads.PublicURL(img.SavedFilename)
	}

	api.WriteJSON(w, http.StatusOK, api.ImageList{
		Images:     images,
		Total:      total,
		Page:       q.Page,
		PerPage:    q.PerPage,
		TotalPages: api.TotalPages(total, q.PerPage),
	})
}

// parseListQuery normalizes the listing parameters. Unknown sort fields and
// orders become the defaults; dates are date-only, with date_to widened to
// end-of-day so the range is inclusive.
func parseListQuery(r *http.Request) database.ListQuery {
	values := r.URL.Query()

	q := database.ListQuery{
		Filename:      values.Get("filename"),
		FileExtension: strings.ToLower(values.Get("file_extension")),
		SortBy:        database.SortByUploaded,
		SortOrder:     "DESC",
		Page:          1,
		PerPage:       defaultPerPage,
	}

	if v := values.Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			q.Page = p
		}
	}
	if v := values.Get("per_page"); v != "" {
		if pp, err := strconv.Atoi(v); err == nil && pp > 0 {
			if pp > maxPerPage {
				pp = maxPerPage
			}
			q.PerPage = pp
		}
	}

	switch values.Get("sort_by") {
	case database.SortBySize:
		q.SortBy = database.SortBySize
	case database.SortByFilename:
		q.SortBy = database.SortByFilename
	}
	if strings.EqualFold(values.Get("sort_order"), "asc") {
		q.SortOrder = "ASC"
	}

	if v := values.Get("min_size"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			q.MinSize = n
		}
	}
	if v := values.Get("max_size"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			q.MaxSize = n
		}
	}

	if v := values.Get("date_from"); v != "" {
		if d, err := time.ParseInLocation("2006-01-02", v, time.UTC); err == nil {
			q.DateFrom = d
		}
	}
	if v := values.Get("date_to"); v != "" {
		if d, err := time.ParseInLocation("2006-01-02", v, time.UTC); err == nil {
			// Inclusive date-only boundary: treat date_to as end-of-day.
			q.DateTo = d.Add(24*time.Hour - time.Second)
		}
	}

	return q
}

// GetImage handles GET /api/images/{id}.
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.BadRequest(w, "invalid image id")
		return
	}

	img, err := h.DB.GetImage(id)
	if errors.Is(err, database.ErrNotFound) {
		api.NotFound(w, "Image not found")
		return
	}
	if err != nil {
		h.Recorder.Record("medium", "Image retrieval error", err.Error())
		api.Internal(w, "Failed to retrieve image")
		return
	}

	img.URL = h.Uploads.PublicURL(img.SavedFilename)
	api.WriteJSON(w, http.StatusOK, img)
}

// DeleteImage handles DELETE /api/images/{id}. Deleting an absent id is
// reported as success: delete is idempotent.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.BadRequest(w, "invalid image id")
		return
	}

	if _, err := h.Deletes.Delete(id); err != nil {
		h.Recorder.Record("medium", "Image deletion error", err.Error())
		api.Internal(w, "Failed to delete image")
		return
	}

	api.Message(w, "Image deleted successfully")
}

// BatchDeleteImages handles POST /api/images/batch-delete. Each id is
// processed independently; the response accounts for every id.
func (h *Handler) BatchDeleteImages(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.BadRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	if len(body.IDs) == 0 {
		api.BadRequest(w, "ids is required")
		return
	}

	result := h.Deletes.DeleteMany(body.IDs)
	for _, f := range result.Failed {
		h.Recorder.Record("medium", "Image deletion error", f.Reason)
	}

	api.WriteJSON(w, http.StatusOK, result)
}
