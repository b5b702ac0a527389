package fetcher

import (
	"strings"

	"github.com/google/go-github/v62/github"

	"review-response-metrics/internal/models"
)

func toPullRequest(repo string, pr *github.PullRequest) models.PullRequest {
	out := models.PullRequest{
		ID:         pr.GetID(),
		Number:     pr.GetNumber(),
		Repository: repo,
		Author:     pr.GetUser().GetLogin(),
		State:      pr.GetState(),
		CreatedAt:  pr.GetCreatedAt().UTC(),
		UpdatedAt:  pr.GetUpdatedAt().UTC(),
	}
	if pr.MergedAt != nil {
		merged := pr.MergedAt.UTC()
		out.MergedAt = &merged
	}
	return out
}

// переводит событие таймлайна GitHub в сырое событие без фильтрации
func toRawEvent(t *github.Timeline) models.RawEvent {
	ev := models.RawEvent{
		Kind:      t.GetEvent(),
		CreatedAt: t.GetCreatedAt().UTC(),
		Actor:     t.GetActor().GetLogin(),
	}
	if t.Reviewer != nil {
		ev.Reviewer = t.Reviewer.GetLogin()
		ev.ReviewerIsBot = isBot(t.Reviewer)
	}
	if t.RequestedTeam != nil {
		ev.RequestedTeam = t.RequestedTeam.GetSlug()
	}
	// у события reviewed автор ревью лежит в user, а не в actor
	if t.User != nil {
		ev.Submitter = t.User.GetLogin()
		ev.SubmitterIsBot = isBot(t.User)
	}
	if t.SubmittedAt != nil {
		submitted := t.SubmittedAt.UTC()
		ev.SubmittedAt = &submitted
	}
	return ev
}

func isBot(u *github.User) bool {
	return u.GetType() == "Bot" || strings.HasSuffix(u.GetLogin(), "[bot]")
}
