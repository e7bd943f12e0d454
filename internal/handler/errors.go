package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sylrest/keepsake/internal/api"
	"github.com/sylrest/keepsake/internal/model"
)

// GetErrors handles GET /api/errors.
func (h *Handler) GetErrors(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	page, perPage := 1, 20
	if v := values.Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := values.Get("per_page"); v != "" {
		if pp, err := strconv.Atoi(v); err == nil && pp > 0 {
			if pp > maxPerPage {
				pp = maxPerPage
			}
			perPage = pp
		}
	}
	includeResolved := strings.EqualFold(values.Get("include_resolved"), "true")

	entries, total, err := h.DB.ListErrors(page, perPage, includeResolved)
	if err != nil {
		// Not recorded: a failing errors table would loop.
		api.Internal(w, "Failed to retrieve errors")
		return
	}
	if entries == nil {
		entries = []*model.ErrorEntry{}
	}

	api.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"errors":      entries,
		"total":       total,
		"page":        page,
		"per_page":    perPage,
		"total_pages": api.TotalPages(total, perPage),
	})
}

// ResolveError handles POST /api/errors/{id}/resolve.
func (h *Handler) ResolveError(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		api.BadRequest(w, "invalid error id")
		return
	}

	found, err := h.DB.ResolveError(id)
	if err != nil {
		api.Internal(w, "Failed to resolve error")
		return
	}
	if !found {
		api.NotFound(w, "Error not found or already resolved")
		return
	}
	api.Message(w, "Error resolved successfully")
}
