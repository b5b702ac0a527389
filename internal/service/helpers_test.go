package service

import (
	"time"

	"review-response-metrics/internal/models"
	"review-response-metrics/internal/timeline"
)

var t0 = time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)

func at(offset time.Duration) time.Time {
	return t0.Add(offset)
}

func requested(offset time.Duration, reviewer string) models.TimelineEvent {
	return models.TimelineEvent{Type: models.EventReviewRequested, At: at(offset), Reviewer: reviewer}
}

func removed(offset time.Duration, reviewer string) models.TimelineEvent {
	return models.TimelineEvent{Type: models.EventReviewRequestRemoved, At: at(offset), Reviewer: reviewer}
}

func reviewed(offset time.Duration, reviewer string) models.TimelineEvent {
	return models.TimelineEvent{Type: models.EventReviewed, At: at(offset), Reviewer: reviewer}
}

type prOption func(*models.PullRequest)

func mergedAfter(d time.Duration) prOption {
	return func(pr *models.PullRequest) {
		m := at(d)
		pr.MergedAt = &m
		pr.State = "closed"
	}
}

func inRepo(repo string) prOption {
	return func(pr *models.PullRequest) { pr.Repository = repo }
}

func newPR(id int64, number int, author string, opts ...prOption) models.PullRequest {
	pr := models.PullRequest{
		ID:         id,
		Number:     number,
		Repository: "acme/api",
		Author:     author,
		State:      "open",
		CreatedAt:  t0,
		UpdatedAt:  t0,
	}
	for _, opt := range opts {
		opt(&pr)
	}
	return pr
}

func tl(pr models.PullRequest, events ...models.TimelineEvent) models.PRTimeline {
	for i := range events {
		events[i].Seq = i
	}
	timeline.SortEvents(events)
	return models.NewPRTimeline(pr, events)
}
