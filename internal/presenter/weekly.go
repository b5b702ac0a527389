// Package presenter форматирует отчеты для консоли и чата и отправляет их в Slack.
package presenter

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"review-response-metrics/internal/models"
)

const WeeklyTitle = "📊 Code review stats"

// значок состояния по доле просроченных ответов
func StatusGlyph(overduePercentage float64) string {
	switch {
	case overduePercentage <= 25:
		return "✅"
	case overduePercentage <= 50:
		return "⚠️"
	default:
		return "❌"
	}
}

// рисует таблицу ревьюверов в порядке, в котором они переданы
// принимает: статистику, уже отсортированную по среднему времени ответа
// возвращает: таблицу с выровненными колонками
func FormatWeeklyTable(stats []models.ReviewerWeeklyStats) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "Reviewer\tAvg\t>24h\tDone\tPending\tStatus")
	fmt.Fprintln(w, "--------\t---\t----\t----\t-------\t------")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%.1fh\t%.1f%%\t%d\t%d\t%s\n",
			s.Reviewer,
			s.AvgResponseTime,
			s.OverduePercentage,
			s.ReviewCount,
			s.PendingReviews,
			StatusGlyph(s.OverduePercentage),
		)
	}
	w.Flush()

	return strings.TrimRight(b.String(), "\n")
}

// подзаголовок с периодом отчета
func WeeklySubtitle(report *models.WeeklyReport) string {
	return fmt.Sprintf("Review activity for the last %d days (as of %s)", report.Days, report.GeneratedAt.Format("2006-01-02"))
}

// пояснение к колонкам таблицы
func WeeklyLegend() string {
	return strings.Join([]string{
		"• *Avg*: average time from review request to response",
		"• *>24h*: share of responses that took longer than 24 hours",
		"• *Done*: completed reviews",
		"• *Pending*: open requests without a response yet",
	}, "\n")
}

// список проанализированных репозиториев с количеством PR
func RepoSummary(counts map[string]int) string {
	repos := make([]string, 0, len(counts))
	for repo, n := range counts {
		if n > 0 {
			repos = append(repos, repo)
		}
	}
	if len(repos) == 0 {
		return ""
	}
	slices.Sort(repos)

	lines := make([]string, 0, len(repos)+1)
	lines = append(lines, "*Repositories analyzed:*")
	for _, repo := range repos {
		lines = append(lines, fmt.Sprintf("• *%s*: %d PRs", repo, counts[repo]))
	}
	return strings.Join(lines, "\n")
}

// собирает полный текст недельного отчета для вывода в консоль
func FormatWeekly(report *models.WeeklyReport) string {
	if len(report.Reviewers) == 0 {
		return fmt.Sprintf("%s\n%s\n\nNo review activity found.", WeeklyTitle, WeeklySubtitle(report))
	}

	parts := []string{
		WeeklyTitle,
		WeeklySubtitle(report),
		"```\n" + FormatWeeklyTable(report.Reviewers) + "\n```",
		WeeklyLegend(),
	}
	if repos := RepoSummary(report.RepoPRCounts); repos != "" {
		parts = append(parts, repos)
	}
	return strings.Join(parts, "\n\n")
}
