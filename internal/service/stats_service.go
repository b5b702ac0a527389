package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"review-response-metrics/internal/models"
	"review-response-metrics/internal/timeline"
)

const maxReportDays = 90

// предоставляет логику построения недельного и ежедневного отчетов
type StatsService struct {
	source             Source
	loc                *time.Location
	legacyRequestMatch bool
	now                func() time.Time
}

// создает и возвращает новый экземпляр StatsService
// принимает: источник снимка, часовой пояс организации и режим поиска запроса для дневного отчета
// возвращает: указатель на созданный StatsService
func NewStatsService(source Source, loc *time.Location, legacyRequestMatch bool) *StatsService {
	return &StatsService{
		source:             source,
		loc:                loc,
		legacyRequestMatch: legacyRequestMatch,
		now:                time.Now,
	}
}

// строит недельный отчет по ревьюверам за последние days дней
// принимает: контекст и длину периода в днях
// возвращает: отчет или ошибку; при отсутствии таймлайна хотя бы у одного PR отчет не строится
func (s *StatsService) WeeklyReport(ctx context.Context, days int) (*models.WeeklyReport, error) {
	if days < 1 || days > maxReportDays {
		return nil, NewServiceError(CodeInvalidRequest, fmt.Sprintf("days must be between 1 and %d", maxReportDays))
	}

	now := s.now().UTC()
	since := now.AddDate(0, 0, -days)

	batch, snapshot, err := s.loadBatch(ctx, since)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reviewers := AggregateWeekly(batch, snapshot.Comments)
	slog.Info("weekly stats calculated", "pull_requests", len(batch), "reviewers", len(reviewers), "duration", time.Since(start))

	return &models.WeeklyReport{
		GeneratedAt:  now,
		Days:         days,
		Since:        since,
		TotalPRs:     len(batch),
		Reviewers:    reviewers,
		RepoPRCounts: RepoPRCounts(batch),
	}, nil
}

// строит отчет об ответах за день
// принимает: контекст и дату YYYY-MM-DD; пустая дата означает вчера
// возвращает: отчет, сгруппированный по ревьюверам, или ошибку
func (s *StatsService) DailyReport(ctx context.Context, date string) (*models.DailyReport, error) {
	window := YesterdayWindow(s.now(), s.loc)
	if date != "" {
		var err error
		window, err = WindowForDate(date, s.loc)
		if err != nil {
			return nil, err
		}
	}

	batch, _, err := s.loadBatch(ctx, window.Start)
	if err != nil {
		return nil, err
	}

	records := ExtractDaily(batch, window, s.legacyRequestMatch)
	slog.Info("daily records extracted", "date", window.Date, "pull_requests", len(batch), "records", len(records))

	return BuildDailyReport(records, window), nil
}

func (s *StatsService) loadBatch(ctx context.Context, since time.Time) ([]models.PRTimeline, *Snapshot, error) {
	snapshot, err := s.source.Load(ctx, since)
	if err != nil {
		return nil, nil, fmt.Errorf("load snapshot: %w", err)
	}

	batch, err := timeline.BuildBatch(snapshot.PRs, snapshot.Events)
	if err != nil {
		if errors.Is(err, timeline.ErrTimelineMissing) {
			slog.Error("snapshot is incomplete", "error", err)
			return nil, nil, wrapServiceError(CodeIncompleteData, err)
		}
		return nil, nil, err
	}
	return batch, snapshot, nil
}
