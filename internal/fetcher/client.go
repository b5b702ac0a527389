// Package fetcher загружает PR, таймлайны и review-комментарии из GitHub
// ограниченными пулами воркеров.
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"review-response-metrics/internal/config"
)

// параметры загрузки
type Options struct {
	Org             string
	MinActivityDays int
	BaseURL         string

	RepoWorkers     int
	TimelineWorkers int
	CommentWorkers  int
	MaxPRsPerRepo   int

	RequestsPerSecond float64
	Burst             int
}

const perPage = 100

// собирает параметры загрузки из конфигурации приложения
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Org:               cfg.GitHub.Org,
		MinActivityDays:   cfg.GitHub.MinActivityDays,
		BaseURL:           cfg.GitHub.BaseURL,
		RepoWorkers:       cfg.Fetch.RepoWorkers,
		TimelineWorkers:   cfg.Fetch.TimelineWorkers,
		CommentWorkers:    cfg.Fetch.CommentWorkers,
		MaxPRsPerRepo:     cfg.Fetch.MaxPRsPerRepo,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		Burst:             cfg.Fetch.Burst,
	}
}

// клиент GitHub с общим лимитером запросов для всех воркеров
type Client struct {
	gh      *github.Client
	limiter *rate.Limiter
	opts    Options
	now     func() time.Time
}

// создает клиент с авторизацией по токену
// принимает: контекст, токен GitHub и параметры загрузки
// возвращает: клиент или ошибку разбора base URL
func New(ctx context.Context, token string, opts Options) (*Client, error) {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return NewWithHTTPClient(oauth2.NewClient(ctx, ts), opts)
}

// создает клиент поверх готового http.Client
func NewWithHTTPClient(httpClient *http.Client, opts Options) (*Client, error) {
	gh := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}
		gh.BaseURL = u
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		gh:      gh,
		limiter: rate.NewLimiter(limit, burst),
		opts:    opts,
		now:     time.Now,
	}, nil
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func splitRepo(fullName string) (string, string, error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("repository %q must be in owner/name format", fullName)
	}
	return owner, name, nil
}

func workers(limit, items int) int {
	if limit < 1 {
		limit = 1
	}
	return min(limit, items)
}
