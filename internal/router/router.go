package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sylrest/keepsake/internal/api"
	"github.com/sylrest/keepsake/internal/config"
	"github.com/sylrest/keepsake/internal/database"
	"github.com/sylrest/keepsake/internal/dblog"
	"github.com/sylrest/keepsake/internal/handler"
	"github.com/sylrest/keepsake/internal/service"
	"github.com/sylrest/keepsake/internal/storage"
)

// Server holds the application dependencies and HTTP router.
type Server struct {
	DB     database.Database
	Store  storage.Storage
	Config *config.Config
	Router chi.Router
}

// New wires the services and handlers and returns a Server with a fully
// configured chi router.
func New(db database.Database, store storage.Storage, cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{DB: db, Store: store, Config: cfg}

	h := &handler.Handler{
		DB:             db,
		Store:          store,
		Uploads:        service.NewUploadService(db, store, cfg.SecretKey, cfg.BaseURL, cfg.MaxUploadBytes, logger),
		Deletes:        service.NewDeleteService(db, store, logger),
		Stats:          service.NewStatsService(db),
		Recorder:       dblog.NewRecorder(db, logger),
		MaxUploadBytes: cfg.MaxUploadBytes,
	}

	r := chi.NewRouter()

	// CORS must run before other middleware to handle preflight OPTIONS.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check and metrics (no auth required).
	r.Get("/health", s.Health)
	r.Handle("/metrics", promhttp.Handler())

	// ShareX-style upload. The secret is validated by the upload service.
	r.Post("/upload", h.Upload)

	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", h.Upload)

		r.Get("/images", h.ListImages)
		// Batch delete must be registered before the {id} wildcard so that
		// /images/batch-delete is not interpreted as id="batch-delete".
		r.Post("/images/batch-delete", h.BatchDeleteImages)
		r.Get("/images/{id}", h.GetImage)
		r.Delete("/images/{id}", h.DeleteImage)

		r.Get("/stats", h.GetStats)
		r.Get("/logs", h.GetLogs)
		r.Get("/errors", h.GetErrors)
		r.Post("/errors/{id}/resolve", h.ResolveError)
	})

	// Public image delivery. Registered last so the literal routes above
	// always win over the filename wildcard.
	r.Get("/thumbs/{filename}", h.ServeThumbnail)
	r.Get("/{filename}", h.ServeImage)

	s.Router = r
	return s
}

// Health returns a simple health-check response.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
