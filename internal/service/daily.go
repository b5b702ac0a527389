package service

import (
	"cmp"
	"slices"
	"time"

	"review-response-metrics/internal/models"
)

const dateLayout = "2006-01-02"

// календарный день в часовом поясе организации, границы в UTC
type DailyWindow struct {
	Date  string
	Start time.Time
	End   time.Time
}

// содержит ли окно момент t; правая граница не включается
func (w DailyWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// вычисляет окно "вчера" относительно now
// принимает: текущий момент и часовой пояс организации
// возвращает: окно [начало вчера, начало сегодня) в UTC
func YesterdayWindow(now time.Time, loc *time.Location) DailyWindow {
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return dayWindow(today.AddDate(0, 0, -1))
}

// вычисляет окно для явно заданной даты в формате YYYY-MM-DD
func WindowForDate(date string, loc *time.Location) (DailyWindow, error) {
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return DailyWindow{}, NewServiceError(CodeInvalidRequest, "date must be in YYYY-MM-DD format")
	}
	return dayWindow(day), nil
}

func dayWindow(start time.Time) DailyWindow {
	return DailyWindow{
		Date:  start.Format(dateLayout),
		Start: start.UTC(),
		End:   start.AddDate(0, 0, 1).UTC(),
	}
}

// выбирает ответы ревьюверов за день
// принимает: таймлайны PR, окно дня и режим поиска запроса
// возвращает: не больше одной записи на пару (ревьювер, PR)
func ExtractDaily(batch []models.PRTimeline, window DailyWindow, legacyRequestMatch bool) []models.DailyReviewRecord {
	var records []models.DailyReviewRecord

	for _, tl := range batch {
		pr := tl.PR
		events := tl.Events()

		// события отсортированы, поэтому последний индекс и есть последнее ревью
		last := map[string]int{}
		for i, ev := range events {
			if ev.Type != models.EventReviewed || ev.Reviewer == pr.Author {
				continue
			}
			if window.Contains(ev.At) {
				last[ev.Reviewer] = i
			}
		}
		if len(last) == 0 {
			continue
		}

		reviewers := make([]string, 0, len(last))
		for reviewer := range last {
			reviewers = append(reviewers, reviewer)
		}
		slices.Sort(reviewers)

		for _, reviewer := range reviewers {
			review := events[last[reviewer]]
			requestedAt, ok := findRequest(events[:last[reviewer]], review, legacyRequestMatch)
			if !ok {
				continue
			}
			records = append(records, models.DailyReviewRecord{
				Reviewer:     reviewer,
				Repository:   pr.Repository,
				PRNumber:     pr.Number,
				ResponseTime: review.At.Sub(requestedAt).Hours(),
				ReviewedAt:   review.At,
			})
		}
	}

	return records
}

// ищет назад последний запрос ревью строго раньше самого ревью;
// без legacy режима снятый запрос прерывает поиск
func findRequest(before []models.TimelineEvent, review models.TimelineEvent, legacy bool) (time.Time, bool) {
	for i := len(before) - 1; i >= 0; i-- {
		ev := before[i]
		if ev.Reviewer != review.Reviewer {
			continue
		}
		switch ev.Type {
		case models.EventReviewRequestRemoved:
			if !legacy {
				return time.Time{}, false
			}
		case models.EventReviewRequested:
			if ev.At.Before(review.At) {
				return ev.At, true
			}
		}
	}
	return time.Time{}, false
}

// индикатор скорости ответа
func SpeedIndicator(hours float64) string {
	switch {
	case hours < 1:
		return "🚀"
	case hours < 4:
		return "⚡"
	case hours < 8:
		return "🏃"
	case hours < 24:
		return "🚶"
	default:
		return "🐢"
	}
}

// группирует записи по ревьюверам для отображения
// принимает: записи дня и окно, за которое они собраны
// возвращает: отчет с ревьюверами по алфавиту и ответами по возрастанию длительности
func BuildDailyReport(records []models.DailyReviewRecord, window DailyWindow) *models.DailyReport {
	byReviewer := map[string][]models.DailyReviewLine{}
	for _, r := range records {
		byReviewer[r.Reviewer] = append(byReviewer[r.Reviewer], models.DailyReviewLine{
			DailyReviewRecord: r,
			Speed:             SpeedIndicator(r.ResponseTime),
		})
	}

	groups := make([]models.DailyReviewerGroup, 0, len(byReviewer))
	for reviewer, lines := range byReviewer {
		slices.SortStableFunc(lines, func(a, b models.DailyReviewLine) int {
			if c := cmp.Compare(a.ResponseTime, b.ResponseTime); c != 0 {
				return c
			}
			if c := cmp.Compare(a.Repository, b.Repository); c != 0 {
				return c
			}
			return cmp.Compare(a.PRNumber, b.PRNumber)
		})
		groups = append(groups, models.DailyReviewerGroup{Reviewer: reviewer, Reviews: lines})
	}
	slices.SortFunc(groups, func(a, b models.DailyReviewerGroup) int {
		return cmp.Compare(a.Reviewer, b.Reviewer)
	})

	return &models.DailyReport{
		Date:        window.Date,
		WindowStart: window.Start,
		WindowEnd:   window.End,
		Groups:      groups,
	}
}
