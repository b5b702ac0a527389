package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"review-response-metrics/internal/config"
	"review-response-metrics/internal/database"
	"review-response-metrics/internal/fetcher"
	"review-response-metrics/internal/handlers"
	"review-response-metrics/internal/repository/postgres"
	"review-response-metrics/internal/service"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// загрузка конфигурации
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	slog.Info("review metrics service starting",
		"port", cfg.ServerPort,
		"database", cfg.Database.User+"@"+cfg.Database.Host+":"+cfg.Database.Port+"/"+cfg.Database.DBName,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// подключаемся к базе данных
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	// применяем миграции
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		return err
	}

	// инициализируем репозитории
	prRepo := postgres.NewPRRepository(db)
	timelineRepo := postgres.NewTimelineRepository(db)
	commentRepo := postgres.NewCommentRepository(db)

	// инициализируем сервисы
	statsService := service.NewStatsService(
		service.NewDBSource(prRepo, timelineRepo, commentRepo),
		cfg.Location(),
		cfg.Daily.LegacyRequestMatch,
	)

	// синхронизация доступна только при наличии токена GitHub
	var syncService handlers.SyncService
	if err := cfg.RequireGitHub(); err != nil {
		slog.Warn("sync disabled", "reason", err)
	} else {
		client, err := fetcher.New(ctx, cfg.GitHub.Token, fetcher.OptionsFromConfig(cfg))
		if err != nil {
			return err
		}
		source := service.NewGitHubSource(client, cfg.GitHub.Repositories, 0)
		syncService = service.NewSyncService(source, prRepo, timelineRepo, commentRepo)
	}

	// инициализируем ручки
	statsHandler := handlers.NewStatsHandler(statsService, syncService, cfg.Report.Days)
	healthHandler := handlers.NewHealthHandler(func(ctx context.Context) error {
		return database.CheckSchema(ctx, db)
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handlers.NewRouter(statsHandler, healthHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server is ready to handle requests",
			"endpoints", []string{"GET /health", "GET /stats/weekly?days=", "GET /stats/daily?date=", "POST /sync?days="},
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}
