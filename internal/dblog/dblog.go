// Package dblog persists application log records and error notifications in
// the database so the dashboard can display them.
package dblog

import (
	"context"
	"log/slog"

	"github.com/sylrest/keepsake/internal/database"
)

// Handler is a slog.Handler that forwards every record to a wrapped handler
// and additionally writes WARN-and-above records to the logs table.
type Handler struct {
	inner slog.Handler
	db    database.Database
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler wraps inner with database persistence.
func NewHandler(inner slog.Handler, db database.Database) *Handler {
	return &Handler{inner: inner, db: db}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		var source, details string
		r.Attrs(func(a slog.Attr) bool {
			switch a.Key {
			case "component":
				source = a.Value.String()
			default:
				if details != "" {
					details += ", "
				}
				details += a.Key + "=" + a.Value.String()
			}
			return true
		})
		// A failed insert must not break logging itself.
		_ = h.db.AddLog(r.Level.String(), r.Message, source, details)
	}
	return h.inner.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{inner: h.inner.WithAttrs(attrs), db: h.db}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{inner: h.inner.WithGroup(name), db: h.db}
}

// Recorder files error notifications for the dashboard's error view.
type Recorder struct {
	db     database.Database
	logger *slog.Logger
}

func NewRecorder(db database.Database, logger *slog.Logger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

// Record stores one error notification. Severity is one of low, medium,
// high. Recording failures are logged and swallowed to avoid error loops.
func (r *Recorder) Record(severity, message, details string) {
	if err := r.db.AddError(severity, message, details); err != nil {
		r.logger.Error("failed to record error notification", slog.String("error", err.Error()))
	}
}
