package handler

import (
	"net/http"

	"github.com/sylrest/keepsake/internal/api"
)

// GetStats handles GET /api/stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Stats.Stats()
	if err != nil {
		h.Recorder.Record("medium", "Stats retrieval error", err.Error())
		api.Internal(w, "Failed to retrieve statistics")
		return
	}
	api.WriteJSON(w, http.StatusOK, stats)
}
