package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/sylrest/keepsake/internal/api"
	"github.com/sylrest/keepsake/internal/database"
	"github.com/sylrest/keepsake/internal/model"
)

// GetLogs handles GET /api/logs.
func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	q := database.LogQuery{
		Level:   values.Get("level"),
		Search:  values.Get("search"),
		Page:    1,
		PerPage: 50,
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
	if v := values.Get("date_from"); v != "" {
		if d, err := time.ParseInLocation("2006-01-02", v, time.UTC); err == nil {
			q.DateFrom = d
		}
	}
	if v := values.Get("date_to"); v != "" {
		if d, err := time.ParseInLocation("2006-01-02", v, time.UTC); err == nil {
			q.DateTo = d.Add(24*time.Hour - time.Second)
		}
	}

	logs, total, err := h.DB.ListLogs(q)
	if err != nil {
		api.Internal(w, "Failed to retrieve logs")
		return
	}
	if logs == nil {
		logs = []*model.LogEntry{}
	}

	api.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"logs":        logs,
		"total":       total,
		"page":        q.Page,
		"per_page":    q.PerPage,
		"total_pages": api.TotalPages(total, q.PerPage),
	})
}
