// Package timeline превращает сырые события PR в канонический упорядоченный
// таймлайн и восстанавливает по нему интервалы ответа ревьюверов.
package timeline

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"

	"review-response-metrics/internal/models"
)

// возвращается когда у PR нет загруженного списка событий
var ErrTimelineMissing = errors.New("timeline events not loaded")

// приводит сырые события одного PR к каноническому виду
// принимает: события в порядке выдачи источником
// возвращает: отсортированный по времени список событий без командных запросов и ботов
func Normalize(raw []models.RawEvent) []models.TimelineEvent {
	events := make([]models.TimelineEvent, 0, len(raw))
	for i, r := range raw {
		ev, ok := normalizeEvent(r)
		if !ok {
			continue
		}
		ev.Seq = i
		events = append(events, ev)
	}
	SortEvents(events)
	return events
}

func normalizeEvent(r models.RawEvent) (models.TimelineEvent, bool) {
	switch models.EventType(r.Kind) {
	case models.EventReviewRequested, models.EventReviewRequestRemoved:
		// запрос на команду приходит без конкретного ревьювера
		if r.Reviewer == "" || r.ReviewerIsBot {
			return models.TimelineEvent{}, false
		}
		return models.TimelineEvent{
			Type:     models.EventType(r.Kind),
			At:       r.CreatedAt.UTC(),
			Reviewer: r.Reviewer,
		}, true
	case models.EventReviewed:
		// у отправленного ревью автор и время лежат в отдельных полях
		if r.Submitter == "" || r.SubmittedAt == nil || r.SubmitterIsBot {
			return models.TimelineEvent{}, false
		}
		return models.TimelineEvent{
			Type:     models.EventReviewed,
			At:       r.SubmittedAt.UTC(),
			Reviewer: r.Submitter,
		}, true
	case models.EventReadyForReview:
		return models.TimelineEvent{
			Type: models.EventReadyForReview,
			At:   r.CreatedAt.UTC(),
		}, true
	default:
		return models.TimelineEvent{}, false
	}
}

// сортирует события по времени, при равном времени сохраняет порядок источника
func SortEvents(events []models.TimelineEvent) {
	slices.SortStableFunc(events, func(a, b models.TimelineEvent) int {
		if c := a.At.Compare(b.At); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
}

// собирает пары (PR, события) для всего набора PR
// принимает: список PR и события, сгруппированные по ID PR
// возвращает: список PRTimeline или ошибку со всеми PR, для которых события не загружены
func BuildBatch(prs []models.PullRequest, eventsByPR map[int64][]models.TimelineEvent) ([]models.PRTimeline, error) {
	var missing *multierror.Error
	batch := make([]models.PRTimeline, 0, len(prs))

	for _, pr := range prs {
		events, ok := eventsByPR[pr.ID]
		if !ok {
			missing = multierror.Append(missing, fmt.Errorf("%s#%d: %w", pr.Repository, pr.Number, ErrTimelineMissing))
			continue
		}
		sorted := slices.Clone(events)
		SortEvents(sorted)
		batch = append(batch, models.NewPRTimeline(pr, sorted))
	}

	if err := missing.ErrorOrNil(); err != nil {
		return nil, err
	}
	return batch, nil
}
