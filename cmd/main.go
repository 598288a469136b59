package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/golang-cz/devslog"
	_ "github.com/lib/pq"

	"github.com/inkwellcms/inkwell/internal/auth"
	"github.com/inkwellcms/inkwell/internal/config"
	"github.com/inkwellcms/inkwell/internal/core"
	"github.com/inkwellcms/inkwell/internal/tagsync"
	"github.com/inkwellcms/inkwell/internal/utils/databaseutils"
)

type application struct {
	config  config.Config
	logger  *slog.Logger
	core    *core.Core
	tagSync *tagsync.Synchronizer
	auth    *auth.Auth
}

func main() {
	logger := configLogger()
	logger.Info("Starting application...")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Error loading configuration", "error", err)
		os.Exit(1)
	}

	db, err := openDBConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Error opening database connection", "error", err)
		os.Exit(1)
	}

	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Error closing database connection", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("Database connection established successfully")

	sqlTemplate := databaseutils.NewSQLTemplate(db, cfg.QueryTimeout)
	contentCore := core.NewCore(db, logger, sqlTemplate)

	app := application{
		config:  cfg,
		logger:  logger,
		core:    contentCore,
		tagSync: tagsync.New(contentCore, logger),
		auth:    auth.NewAuth(cfg.JWTSecret),
	}

	if err := app.serve(); err != nil {
		logger.Error("Error starting server", "error", err)
		os.Exit(1)
	}
}

func configLogger() *slog.Logger {
	handler := devslog.NewHandler(
		os.Stdout, &devslog.Options{
			HandlerOptions: &slog.HandlerOptions{
				AddSource: true,
				Level:     slog.LevelDebug,
			},
			NewLineAfterLog: false,
		})

	return slog.New(handler)
}

func openDBConnection(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(10)
	db.SetConnMaxIdleTime(10 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}
