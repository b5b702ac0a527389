package repository

import (
	"context"
	"time"

	"review-response-metrics/internal/models"
)

// интерфейс для работы со снимком pull requests
type PRRepository interface {
	UpsertPRs(ctx context.Context, prs []models.PullRequest) error
	ListPRsSince(ctx context.Context, since time.Time) ([]models.PullRequest, error)
}

// интерфейс для работы с нормализованными событиями таймлайна
type TimelineRepository interface {
	ReplaceEvents(ctx context.Context, prID int64, events []models.TimelineEvent) error
	LoadEvents(ctx context.Context, prIDs []int64) (map[int64][]models.TimelineEvent, error)
}

// интерфейс для работы с review-комментариями
type CommentRepository interface {
	ReplaceComments(ctx context.Context, prID int64, comments []models.ReviewComment) error
	ListComments(ctx context.Context, prIDs []int64) ([]models.ReviewComment, error)
}
