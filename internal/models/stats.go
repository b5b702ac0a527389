package models

import "time"

// недельная статистика одного ревьювера
type ReviewerWeeklyStats struct {
	Reviewer          string    `json:"reviewer"`
	ReviewCount       int       `json:"review_count"`
	ResponseTimes     []float64 `json:"response_times"`
	AvgResponseTime   float64   `json:"avg_response_time"`
	OverdueCount      int       `json:"overdue_count"`
	OverduePercentage float64   `json:"overdue_percentage"`
	PRsReviewed       int       `json:"prs_reviewed"`
	PendingReviews    int       `json:"pending_reviews"`
	CommentCount      int       `json:"comment_count"`
}

// ответ с недельным отчетом
type WeeklyReport struct {
	GeneratedAt  time.Time             `json:"generated_at"`
	Days         int                   `json:"days"`
	Since        time.Time             `json:"since"`
	TotalPRs     int                   `json:"total_prs"`
	Reviewers    []ReviewerWeeklyStats `json:"reviewers"`
	RepoPRCounts map[string]int        `json:"repo_pr_counts"`
}

// одна запись ежедневного лога ответов
type DailyReviewRecord struct {
	Reviewer     string    `json:"reviewer"`
	Repository   string    `json:"repository"`
	PRNumber     int       `json:"pr_number"`
	ResponseTime float64   `json:"response_time"`
	ReviewedAt   time.Time `json:"reviewed_at"`
}

// запись ежедневного лога с индикатором скорости
type DailyReviewLine struct {
	DailyReviewRecord
	Speed string `json:"speed"`
}

// записи одного ревьювера, отсортированные по длительности
type DailyReviewerGroup struct {
	Reviewer string            `json:"reviewer"`
	Reviews  []DailyReviewLine `json:"reviews"`
}

// ответ с ежедневным отчетом
type DailyReport struct {
	Date        string               `json:"date"`
	WindowStart time.Time            `json:"window_start"`
	WindowEnd   time.Time            `json:"window_end"`
	Groups      []DailyReviewerGroup `json:"groups"`
}

// итог синхронизации снимка
type SyncResult struct {
	Repositories int           `json:"repositories"`
	PullRequests int           `json:"pull_requests"`
	Events       int           `json:"events"`
	Comments     int           `json:"comments"`
	Duration     time.Duration `json:"duration"`
}
