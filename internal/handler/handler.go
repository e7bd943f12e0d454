package handler

import (
	"github.com/sylrest/keepsake/internal/database"
	"github.com/sylrest/keepsake/internal/dblog"
	"github.com/sylrest/keepsake/internal/service"
	"github.com/sylrest/keepsake/internal/storage"
)

// Handler bundles the dependencies shared by all HTTP handlers.
type Handler struct {
	DB             database.Database
	Store          storage.Storage
	Uploads        *service.UploadService
	Deletes        *service.DeleteService
	Stats          *service.StatsService
	Recorder       *dblog.Recorder
	MaxUploadBytes int64
}
