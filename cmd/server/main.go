package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/sylrest/keepsake/internal/config"
	"github.com/sylrest/keepsake/internal/database"
	"github.com/sylrest/keepsake/internal/dblog"
	"github.com/sylrest/keepsake/internal/router"
	"github.com/sylrest/keepsake/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	db, err := database.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Re-wrap the logger so WARN+ records also land in the logs table.
	logger = slog.New(dblog.NewHandler(slog.NewJSONHandler(os.Stdout, nil), db))
	slog.SetDefault(logger)

	store, err := storage.NewFileSystem(cfg.UploadDir)
	if err != nil {
		slog.Error("failed to prepare uploads directory", "error", err)
		os.Exit(1)
	}

	if err := db.AddLog("INFO", "Application started", "server", "startup complete"); err != nil {
		slog.Warn("failed to record startup log", "error", err)
	}

	srv := router.New(db, store, cfg, logger)

	slog.Info("starting server", "addr", cfg.ListenAddr, "uploads", cfg.UploadDir)
	if err := http.ListenAndServe(cfg.ListenAddr, srv.Router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
