package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"review-response-metrics/internal/config"
	"review-response-metrics/internal/database"
	"review-response-metrics/internal/fetcher"
	"review-response-metrics/internal/models"
	"review-response-metrics/internal/presenter"
	"review-response-metrics/internal/repository/postgres"
	"review-response-metrics/internal/service"
)

const (
	sourceGitHub = "github"
	sourceDB     = "db"
)

// публикация отчетов в чат
type poster interface {
	PostWeekly(ctx context.Context, report *models.WeeklyReport) error
	PostDaily(ctx context.Context, report *models.DailyReport) error
}

// зависимости команд; в тестах заменяются на фейки
type app struct {
	out        io.Writer
	configPath string

	loadConfig func(path string) (*config.Config, error)
	openSource func(ctx context.Context, cfg *config.Config, kind string, limitRepos int) (service.Source, func(), error)
	openStore  func(ctx context.Context, cfg *config.Config) (*store, func(), error)
	newPoster  func(cfg *config.Config) poster
}

// репозитории снимка в базе данных
type store struct {
	prs       *postgres.PRRepository
	timelines *postgres.TimelineRepository
	comments  *postgres.CommentRepository
}

func newApp(out io.Writer) *app {
	return &app{
		out:        out,
		loadConfig: config.Load,
		openSource: openSource,
		openStore:  openStore,
		newPoster: func(cfg *config.Config) poster {
			return presenter.NewSlackPoster(cfg.Slack.Token, cfg.Slack.ChannelID)
		},
	}
}

// выбирает источник снимка: GitHub напрямую или сохраненный в БД
// принимает: контекст, конфигурацию, вид источника и лимит репозиториев
// возвращает: источник, функцию освобождения ресурсов или ошибку
func openSource(ctx context.Context, cfg *config.Config, kind string, limitRepos int) (service.Source, func(), error) {
	switch kind {
	case sourceGitHub:
		client, err := newGitHubClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return service.NewGitHubSource(client, cfg.GitHub.Repositories, limitRepos), func() {}, nil
	case sourceDB:
		st, closeDB, err := openStore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return service.NewDBSource(st.prs, st.timelines, st.comments), closeDB, nil
	default:
		return nil, nil, fmt.Errorf("unknown source %q, expected %s or %s", kind, sourceGitHub, sourceDB)
	}
}

func newGitHubClient(ctx context.Context, cfg *config.Config) (*fetcher.Client, error) {
	if err := cfg.RequireGitHub(); err != nil {
		return nil, err
	}
	return fetcher.New(ctx, cfg.GitHub.Token, fetcher.OptionsFromConfig(cfg))
}

func openStore(ctx context.Context, cfg *config.Config) (*store, func(), error) {
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
		db.Close()
		return nil, nil, err
	}
	return newStore(db), func() { db.Close() }, nil
}

func newStore(db *sql.DB) *store {
	return &store{
		prs:       postgres.NewPRRepository(db),
		timelines: postgres.NewTimelineRepository(db),
		comments:  postgres.NewCommentRepository(db),
	}
}
