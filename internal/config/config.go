package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"review-response-metrics/internal/database"
)

// структура приложения, содержащая все настройки
type Config struct {
	ServerPort    string          `yaml:"port" validate:"required,numeric"`
	MigrationsDir string          `yaml:"migrations_dir"`
	Database      database.Config `yaml:"database"`
	GitHub        GitHubConfig    `yaml:"github"`
	Slack         SlackConfig     `yaml:"slack"`
	Report        ReportConfig    `yaml:"report"`
	Daily         DailyConfig     `yaml:"daily"`
	Fetch         FetchConfig     `yaml:"fetch"`
}

type GitHubConfig struct {
	Token string `yaml:"-"`
	// нужен только для поиска активных репозиториев, см. RequireGitHub
	Org   string `yaml:"org"`
	// явный список owner/name; пустой список означает поиск активных репозиториев организации
	Repositories    []string `yaml:"repositories" validate:"dive,contains=/"`
	MinActivityDays int      `yaml:"min_activity_days" validate:"gte=1"`
	BaseURL         string   `yaml:"base_url" validate:"omitempty,url"`
}

type SlackConfig struct {
	Token     string `yaml:"-"`
	ChannelID string `yaml:"channel_id"`
}

type ReportConfig struct {
	Days                int `yaml:"days" validate:"gte=1,lte=90"`
	TimezoneOffsetHours int `yaml:"timezone_offset_hours" validate:"gte=-12,lte=14"`
}

type DailyConfig struct {
	// поиск запроса ревью без остановки на снятом запросе, как в старых отчетах
	LegacyRequestMatch bool `yaml:"legacy_request_match"`
}

type FetchConfig struct {
	RepoWorkers       int     `yaml:"repo_workers" validate:"gte=1,lte=30"`
	TimelineWorkers   int     `yaml:"timeline_workers" validate:"gte=1,lte=50"`
	CommentWorkers    int     `yaml:"comment_workers" validate:"gte=1,lte=50"`
	MaxPRsPerRepo     int     `yaml:"max_prs_per_repo" validate:"gte=1"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gt=0"`
	Burst             int     `yaml:"burst" validate:"gte=1"`
}

// часовой пояс организации для границ дня
func (c *Config) Location() *time.Location {
	offset := c.Report.TimezoneOffsetHours
	return time.FixedZone(fmt.Sprintf("UTC%+d", offset), offset*3600)
}

// проверяет настройки GitHub перед загрузкой данных;
// организация обязательна только без явного списка репозиториев
func (c *Config) RequireGitHub() error {
	var result *multierror.Error
	if c.GitHub.Token == "" {
		result = multierror.Append(result, errors.New("GITHUB_TOKEN is not set"))
	}
	if c.GitHub.Org == "" && len(c.GitHub.Repositories) == 0 {
		result = multierror.Append(result, errors.New("GITHUB_ORG is not set and no repositories are configured"))
	}
	return result.ErrorOrNil()
}

// проверяет наличие настроек Slack перед отправкой отчета
func (c *Config) RequireSlack() error {
	var result *multierror.Error
	if c.Slack.Token == "" {
		result = multierror.Append(result, errors.New("SLACK_BOT_TOKEN is not set"))
	}
	if c.Slack.ChannelID == "" {
		result = multierror.Append(result, errors.New("slack channel id is not set"))
	}
	return result.ErrorOrNil()
}

func defaults() *Config {
	return &Config{
		ServerPort:    "8080",
		MigrationsDir: "migrations",
		Database: database.Config{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			DBName:  "review_metrics",
			SSLMode: "disable",
		},
		GitHub: GitHubConfig{MinActivityDays: 30},
		Report: ReportConfig{Days: 7, TimezoneOffsetHours: 9},
		Fetch: FetchConfig{
			RepoWorkers:       30,
			TimelineWorkers:   50,
			CommentWorkers:    50,
			MaxPRsPerRepo:     100,
			RequestsPerSecond: 10,
			Burst:             20,
		},
	}
}

// загружает настройки: значения по умолчанию, затем YAML файл, затем переменные окружения
// принимает: путь к YAML файлу; пустой путь берется из REVIEWSTATS_CONFIG
// возвращает: проверенную конфигурацию или ошибку со всеми найденными проблемами
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("env file not found, using system environment variables")
	}

	cfg := defaults()

	if path == "" {
		path = os.Getenv("REVIEWSTATS_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.ServerPort = getEnv("PORT", cfg.ServerPort)
	cfg.MigrationsDir = getEnv("MIGRATIONS_DIR", cfg.MigrationsDir)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.GitHub.Token = getEnv("GITHUB_TOKEN", cfg.GitHub.Token)
	cfg.GitHub.Org = getEnv("GITHUB_ORG", cfg.GitHub.Org)
	if repos := os.Getenv("GITHUB_REPOSITORIES"); repos != "" {
		cfg.GitHub.Repositories = splitList(repos)
	}

	cfg.Slack.Token = getEnv("SLACK_BOT_TOKEN", cfg.Slack.Token)
	cfg.Slack.ChannelID = getEnv("SLACK_CHANNEL_ID", cfg.Slack.ChannelID)

	if v := os.Getenv("REPORT_TZ_OFFSET_HOURS"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REPORT_TZ_OFFSET_HOURS: %w", err)
		}
		cfg.Report.TimezoneOffsetHours = offset
	}
	return nil
}

var validate = validator.New()

// проверяет конфигурацию и собирает все ошибки полей в одну
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	var result *multierror.Error
	for _, fe := range fieldErrs {
		result = multierror.Append(result, fmt.Errorf("%s: failed %q validation (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return result.ErrorOrNil()
}

// получает значение переменной окружения или возвращает значение по умолчанию
// принимает: ключ переменной окружения и значение по умолчанию
// возвращает: значение переменной окружения или значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
