package service

import (
	"cmp"
	"slices"

	"review-response-metrics/internal/models"
	"review-response-metrics/internal/timeline"
)

// порог просроченного ответа в часах
const OverdueThresholdHours = 24.0

type reviewerAccumulator struct {
	stats   models.ReviewerWeeklyStats
	prs     map[int64]struct{}
	pending map[int64]struct{}
}

// сворачивает интервалы ответа по всем PR пакета в статистику по ревьюверам
// принимает: таймлайны PR и опционально review-комментарии к этим PR
// возвращает: статистику по ревьюверам, отсортированную по среднему времени ответа
func AggregateWeekly(batch []models.PRTimeline, comments []models.ReviewComment) []models.ReviewerWeeklyStats {
	acc := map[string]*reviewerAccumulator{}
	get := func(reviewer string) *reviewerAccumulator {
		a, ok := acc[reviewer]
		if !ok {
			a = &reviewerAccumulator{
				stats:   models.ReviewerWeeklyStats{Reviewer: reviewer, ResponseTimes: []float64{}},
				prs:     map[int64]struct{}{},
				pending: map[int64]struct{}{},
			}
			acc[reviewer] = a
		}
		return a
	}

	authors := make(map[int64]string, len(batch))
	for _, tl := range batch {
		pr := tl.PR
		authors[pr.ID] = pr.Author
		res := timeline.Run(tl)

		for reviewer, hours := range res.ResponseTimes {
			a := get(reviewer)
			a.stats.ReviewCount += len(hours)
			a.prs[pr.ID] = struct{}{}
			for _, h := range hours {
				a.stats.ResponseTimes = append(a.stats.ResponseTimes, h)
				if h > OverdueThresholdHours {
					a.stats.OverdueCount++
				}
			}
		}

		// у смерженного PR ожидающих запросов не остается
		if pr.IsOpen() {
			for _, reviewer := range res.Pending() {
				if reviewer == pr.Author {
					continue
				}
				get(reviewer).pending[pr.ID] = struct{}{}
			}
		}
	}

	for _, c := range comments {
		author, ok := authors[c.PRID]
		if !ok || c.Author == author {
			continue
		}
		// комментарии учитываются только у тех, кто уже есть в отчете
		if a, ok := acc[c.Author]; ok {
			a.stats.CommentCount++
		}
	}

	result := make([]models.ReviewerWeeklyStats, 0, len(acc))
	for _, a := range acc {
		result = append(result, finalize(a))
	}
	SortWeekly(result)
	return result
}

func finalize(a *reviewerAccumulator) models.ReviewerWeeklyStats {
	s := a.stats
	if n := len(s.ResponseTimes); n > 0 {
		var sum float64
		for _, h := range s.ResponseTimes {
			sum += h
		}
		s.AvgResponseTime = sum / float64(n)
		s.OverduePercentage = float64(s.OverdueCount) / float64(n) * 100
	}
	s.PRsReviewed = len(a.prs)
	s.PendingReviews = len(a.pending)
	return s
}

// сортирует по возрастанию среднего времени ответа, при равенстве по логину
func SortWeekly(stats []models.ReviewerWeeklyStats) {
	slices.SortFunc(stats, func(a, b models.ReviewerWeeklyStats) int {
		if c := cmp.Compare(a.AvgResponseTime, b.AvgResponseTime); c != 0 {
			return c
		}
		return cmp.Compare(a.Reviewer, b.Reviewer)
	})
}

// считает количество проанализированных PR по репозиториям
func RepoPRCounts(batch []models.PRTimeline) map[string]int {
	counts := map[string]int{}
	for _, tl := range batch {
		counts[tl.PR.Repository]++
	}
	return counts
}
