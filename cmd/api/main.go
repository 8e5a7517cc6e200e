package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/mportela/qbnotes/internal/auth"
	"github.com/mportela/qbnotes/internal/config"
	"github.com/mportela/qbnotes/internal/database"
	qbnotesHttp "github.com/mportela/qbnotes/internal/http"
	authHandler "github.com/mportela/qbnotes/internal/http/auth"
	noteHandler "github.com/mportela/qbnotes/internal/http/note"
	reportHandler "github.com/mportela/qbnotes/internal/http/report"
	scrapeHandler "github.com/mportela/qbnotes/internal/http/scrape"
	"github.com/mportela/qbnotes/internal/note"
	"github.com/mportela/qbnotes/internal/note/filestore"
	noteStore "github.com/mportela/qbnotes/internal/note/store"
	"github.com/mportela/qbnotes/internal/report"
	"github.com/mportela/qbnotes/internal/scheduler"
	"github.com/mportela/qbnotes/internal/sheets"
	"github.com/mportela/qbnotes/internal/slack"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("failed to load report timezone", "error", err)
		os.Exit(1)
	}

	fileStore := filestore.New(cfg.Storage.Dir)

	// The database is optional. Without one, the append-only file store
	// handles both intake and reporting.
	var (
		repo    note.Repository = fileStore
		primary report.Lister
	)

	if cfg.HasDatabase() {
		db, err := database.New(cfg.DB.URL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		store := noteStore.New(db)
		if err := store.EnsureSchema(context.Background()); err != nil {
			slog.Error("failed to provision database schema", "error", err)
			os.Exit(1)
		}

		repo = store
		primary = store

		slog.Info("using postgres storage", "file_fallback", cfg.Storage.Dir)
	} else {
		slog.Warn("DATABASE_URL not set, using file storage only", "dir", cfg.Storage.Dir)
	}

	notifier := slack.New(cfg.Slack.WebhookURL, loc)

	var appender report.Appender
	if cfg.Sheets.SpreadsheetID != "" && cfg.Sheets.CredentialsFile != "" {
		client, err := sheets.New(context.Background(),
			cfg.Sheets.CredentialsFile, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName, loc)
		if err != nil {
			slog.Warn("google sheets unavailable, reports will not be delivered", "error", err)
		} else {
			appender = client
		}
	} else {
		slog.Warn("google sheets not configured, reports will not be delivered")
	}

	var (
		noteService   = note.NewService(repo, notifier)
		reportService = report.NewService(primary, fileStore, appender, loc)
		sched         = scheduler.New(reportService, loc)
		authService   = auth.New(cfg.Auth.Bypass, cfg.TestEmailList(), cfg.Auth.SigningSecret)
	)

	if cfg.Report.Schedule != "" && cfg.Report.AutoStart {
		if err := sched.Start(cfg.Report.Schedule); err != nil {
			slog.Error("failed to start report scheduler", "error", err)
			os.Exit(1)
		}
	}

	environment := "development"
	if env := os.Getenv("APP_ENV"); env != "" {
		environment = env
	}

	var (
		noteH   = noteHandler.NewHandler(noteService)
		reportH = reportHandler.NewHandler(reportService, sched, reportHandler.StatusInfo{
			Environment:  environment,
			SheetsActive: appender != nil,
			Timezone:     loc.String(),
		})
		scrapeH = scrapeHandler.NewHandler()
		authH   = authHandler.NewHandler(authService)
	)

	router := qbnotesHttp.New(noteH, reportH, scrapeH, authH, cfg.Auth.Required)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port, "timezone", loc.String())

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
