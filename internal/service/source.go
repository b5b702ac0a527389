package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"review-response-metrics/internal/models"
	"review-response-metrics/internal/repository"
	"review-response-metrics/internal/timeline"
)

// входные данные одного прогона: PR, их нормализованные события и комментарии
type Snapshot struct {
	Repositories []string
	PRs          []models.PullRequest
	Events       map[int64][]models.TimelineEvent
	Comments     []models.ReviewComment
}

// источник снимка: GitHub напрямую или сохраненные данные в БД
type Source interface {
	Load(ctx context.Context, since time.Time) (*Snapshot, error)
}

// загрузчик данных платформы
type Fetcher interface {
	ListActiveRepos(ctx context.Context) ([]string, error)
	FetchPullRequests(ctx context.Context, repos []string, since time.Time) ([]models.PullRequest, error)
	FetchTimelines(ctx context.Context, prs []models.PullRequest) (map[int64][]models.RawEvent, error)
	FetchReviewComments(ctx context.Context, prs []models.PullRequest) (map[int64][]models.ReviewComment, error)
}

// снимок, собранный из GitHub
type GitHubSource struct {
	fetcher      Fetcher
	repositories []string
	limitRepos   int
}

// создает источник GitHub
// принимает: загрузчик, явный список репозиториев (пустой для поиска активных) и лимит репозиториев (0 без лимита)
// возвращает: указатель на GitHubSource
func NewGitHubSource(fetcher Fetcher, repositories []string, limitRepos int) *GitHubSource {
	return &GitHubSource{
		fetcher:      fetcher,
		repositories: repositories,
		limitRepos:   limitRepos,
	}
}

func (s *GitHubSource) Load(ctx context.Context, since time.Time) (*Snapshot, error) {
	repos := s.repositories
	if len(repos) == 0 {
		active, err := s.fetcher.ListActiveRepos(ctx)
		if err != nil {
			return nil, err
		}
		repos = active
	}
	if s.limitRepos > 0 && len(repos) > s.limitRepos {
		slog.Info("limiting repositories", "found", len(repos), "limit", s.limitRepos)
		repos = repos[:s.limitRepos]
	}

	prs, err := s.fetcher.FetchPullRequests(ctx, repos, since)
	if err != nil {
		return nil, err
	}

	raw, err := s.fetcher.FetchTimelines(ctx, prs)
	if err != nil {
		return nil, err
	}
	events := make(map[int64][]models.TimelineEvent, len(raw))
	for prID, rawEvents := range raw {
		events[prID] = timeline.Normalize(rawEvents)
	}

	commentsByPR, err := s.fetcher.FetchReviewComments(ctx, prs)
	if err != nil {
		return nil, err
	}
	var comments []models.ReviewComment
	for _, pr := range prs {
		comments = append(comments, commentsByPR[pr.ID]...)
	}

	return &Snapshot{
		Repositories: repos,
		PRs:          prs,
		Events:       events,
		Comments:     comments,
	}, nil
}

// снимок, ранее сохраненный командой sync
type DBSource struct {
	prRepo       repository.PRRepository
	timelineRepo repository.TimelineRepository
	commentRepo  repository.CommentRepository
}

func NewDBSource(prRepo repository.PRRepository, timelineRepo repository.TimelineRepository, commentRepo repository.CommentRepository) *DBSource {
	return &DBSource{
		prRepo:       prRepo,
		timelineRepo: timelineRepo,
		commentRepo:  commentRepo,
	}
}

func (s *DBSource) Load(ctx context.Context, since time.Time) (*Snapshot, error) {
	prs, err := s.prRepo.ListPRsSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("list pull requests: %w", err)
	}

	ids := make([]int64, len(prs))
	seen := map[string]struct{}{}
	var repos []string
	for i, pr := range prs {
		ids[i] = pr.ID
		if _, ok := seen[pr.Repository]; !ok {
			seen[pr.Repository] = struct{}{}
			repos = append(repos, pr.Repository)
		}
	}

	events, err := s.timelineRepo.LoadEvents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load timeline events: %w", err)
	}

	comments, err := s.commentRepo.ListComments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list review comments: %w", err)
	}

	return &Snapshot{
		Repositories: repos,
		PRs:          prs,
		Events:       events,
		Comments:     comments,
	}, nil
}
