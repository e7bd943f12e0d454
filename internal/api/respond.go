package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ImageList is the response body for the image listing endpoint.
type ImageList struct {
	Images     interface{} `json:"images"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	TotalPages int         `json:"total_pages"`
}

// TotalPages computes the page count for a total at a page size.
func TotalPages(total, perPage int) int {
	if perPage < 1 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// WriteJSON serialises resp as JSON and writes it to w with the given HTTP
// status code.
func WriteJSON(w http.ResponseWriter, status int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes a flat {"error": msg} body with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// Message writes a flat {"message": msg} body with status 200.
func Message(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// BadRequest writes a 400 error response.
func BadRequest(w http.ResponseWriter, msg string) {
	Error(w, http.StatusBadRequest, msg)
}

// Forbidden writes a 403 error response.
func Forbidden(w http.ResponseWriter, msg string) {
	Error(w, http.StatusForbidden, msg)
}

// NotFound writes a 404 error response.
func NotFound(w http.ResponseWriter, msg string) {
	Error(w, http.StatusNotFound, msg)
}

// TooLarge writes a 413 error response.
func TooLarge(w http.ResponseWriter, msg string) {
	Error(w, http.StatusRequestEntityTooLarge, msg)
}

// Internal writes a 500 error response.
func Internal(w http.ResponseWriter, msg string) {
	Error(w, http.StatusInternalServerError, msg)
}
