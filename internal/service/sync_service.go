package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"review-response-metrics/internal/models"
	"review-response-metrics/internal/repository"
)

// сохраняет снимок GitHub в базе данных для последующих отчетов
type SyncService struct {
	source       Source
	prRepo       repository.PRRepository
	timelineRepo repository.TimelineRepository
	commentRepo  repository.CommentRepository
	now          func() time.Time
}

func NewSyncService(source Source, prRepo repository.PRRepository, timelineRepo repository.TimelineRepository, commentRepo repository.CommentRepository) *SyncService {
	return &SyncService{
		source:       source,
		prRepo:       prRepo,
		timelineRepo: timelineRepo,
		commentRepo:  commentRepo,
		now:          time.Now,
	}
}

// загружает снимок за последние days дней и сохраняет его
// принимает: контекст и длину периода в днях
// возвращает: количество сохраненных сущностей или первую ошибку загрузки/сохранения
func (s *SyncService) Sync(ctx context.Context, days int) (*models.SyncResult, error) {
	if days < 1 || days > maxReportDays {
		return nil, NewServiceError(CodeInvalidRequest, fmt.Sprintf("days must be between 1 and %d", maxReportDays))
	}

	start := s.now()
	snapshot, err := s.source.Load(ctx, start.UTC().AddDate(0, 0, -days))
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	if err := s.prRepo.UpsertPRs(ctx, snapshot.PRs); err != nil {
		return nil, err
	}

	commentsByPR := map[int64][]models.ReviewComment{}
	for _, c := range snapshot.Comments {
		commentsByPR[c.PRID] = append(commentsByPR[c.PRID], c)
	}

	result := &models.SyncResult{
		Repositories: len(snapshot.Repositories),
		PullRequests: len(snapshot.PRs),
	}
	for _, pr := range snapshot.PRs {
		events, ok := snapshot.Events[pr.ID]
		if !ok {
			// без таймлайна PR остается несинхронизированным и отчет из БД упадет
			slog.Warn("timeline missing in fetched snapshot", "repository", pr.Repository, "number", pr.Number)
			continue
		}
		// ReplaceEvents отмечает таймлайн загруженным, поэтому идет последним
		if err := s.commentRepo.ReplaceComments(ctx, pr.ID, commentsByPR[pr.ID]); err != nil {
			return nil, err
		}
		if err := s.timelineRepo.ReplaceEvents(ctx, pr.ID, events); err != nil {
			return nil, err
		}
		result.Events += len(events)
		result.Comments += len(commentsByPR[pr.ID])
	}

	result.Duration = s.now().Sub(start)
	slog.Info("snapshot synced",
		"repositories", result.Repositories,
		"pull_requests", result.PullRequests,
		"events", result.Events,
		"comments", result.Comments,
		"duration", result.Duration,
	)
	return result, nil
}
