package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/sync/errgroup"

	"review-response-metrics/internal/models"
)

// возвращает приватные, не архивные и не форкнутые репозитории организации
// с активностью за последние MinActivityDays дней
func (c *Client) ListActiveRepos(ctx context.Context) ([]string, error) {
	start := c.now()
	threshold := start.AddDate(0, 0, -c.opts.MinActivityDays)
	opt := &github.RepositoryListByOrgOptions{
		Type:        "all",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var active []string
	total := 0
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		repos, resp, err := c.gh.Repositories.ListByOrg(ctx, c.opts.Org, opt)
		if err != nil {
			return nil, fmt.Errorf("list repositories of %s: %w", c.opts.Org, err)
		}
		total += len(repos)

		for _, repo := range repos {
			if repo.GetArchived() || repo.GetFork() || !repo.GetPrivate() {
				continue
			}
			if !repo.GetUpdatedAt().Before(threshold) || !repo.GetPushedAt().Before(threshold) {
				active = append(active, c.opts.Org+"/"+repo.GetName())
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	slog.Info("active repositories listed", "org", c.opts.Org, "total", total, "active", len(active), "duration", time.Since(start))
	return active, nil
}

// загружает PR всех репозиториев, созданные или обновленные после since
// принимает: контекст, репозитории owner/name и нижнюю границу периода
// возвращает: PR в порядке репозиториев или первую ошибку любого воркера
func (c *Client) FetchPullRequests(ctx context.Context, repos []string, since time.Time) ([]models.PullRequest, error) {
	if len(repos) == 0 {
		return nil, nil
	}
	start := c.now()

	results := make([][]models.PullRequest, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(c.opts.RepoWorkers, len(repos)))

	for i, repo := range repos {
		i, repo := i, repo
		g.Go(func() error {
			prs, err := c.fetchRepoPRs(gctx, repo, since)
			if err != nil {
				return fmt.Errorf("fetch pull requests of %s: %w", repo, err)
			}
			results[i] = prs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []models.PullRequest
	for _, prs := range results {
		all = append(all, prs...)
	}
	slog.Info("pull requests fetched", "repositories", len(repos), "pull_requests", len(all), "duration", time.Since(start))
	return all, nil
}

func (c *Client) fetchRepoPRs(ctx context.Context, repo string, since time.Time) ([]models.PullRequest, error) {
	owner, name, err := splitRepo(repo)
	if err != nil {
		return nil, err
	}

	opt := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var prs []models.PullRequest
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		page, resp, err := c.gh.PullRequests.List(ctx, owner, name, opt)
		if err != nil {
			return nil, err
		}

		for _, pr := range page {
			// список отсортирован по обновлению, дальше только более старые PR
			if pr.GetUpdatedAt().Before(since) && pr.GetCreatedAt().Before(since) {
				return prs, nil
			}
			if pr.GetState() == "closed" && pr.MergedAt == nil {
				continue
			}
			prs = append(prs, toPullRequest(repo, pr))
			if c.opts.MaxPRsPerRepo > 0 && len(prs) >= c.opts.MaxPRsPerRepo {
				return prs, nil
			}
		}

		if resp.NextPage == 0 {
			return prs, nil
		}
		opt.Page = resp.NextPage
	}
}

// загружает сырые события таймлайна для каждого PR
// принимает: контекст и список PR
// возвращает: события по ID PR; у каждого PR из списка есть запись, даже пустая
func (c *Client) FetchTimelines(ctx context.Context, prs []models.PullRequest) (map[int64][]models.RawEvent, error) {
	start := c.now()
	results := make([][]models.RawEvent, len(prs))

	if len(prs) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers(c.opts.TimelineWorkers, len(prs)))

		for i, pr := range prs {
			i, pr := i, pr
			g.Go(func() error {
				events, err := c.fetchTimeline(gctx, pr)
				if err != nil {
					return fmt.Errorf("fetch timeline of %s#%d: %w", pr.Repository, pr.Number, err)
				}
				results[i] = events
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	byPR := make(map[int64][]models.RawEvent, len(prs))
	events := 0
	for i, pr := range prs {
		if results[i] == nil {
			results[i] = []models.RawEvent{}
		}
		byPR[pr.ID] = results[i]
		events += len(results[i])
	}
	slog.Info("timelines fetched", "pull_requests", len(prs), "events", events, "duration", time.Since(start))
	return byPR, nil
}

func (c *Client) fetchTimeline(ctx context.Context, pr models.PullRequest) ([]models.RawEvent, error) {
	owner, name, err := splitRepo(pr.Repository)
	if err != nil {
		return nil, err
	}

	opt := &github.ListOptions{PerPage: perPage}
	var events []models.RawEvent
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		page, resp, err := c.gh.Issues.ListIssueTimeline(ctx, owner, name, pr.Number, opt)
		if err != nil {
			return nil, err
		}
		for _, t := range page {
			events = append(events, toRawEvent(t))
		}
		if resp.NextPage == 0 {
			return events, nil
		}
		opt.Page = resp.NextPage
	}
}

// загружает review-комментарии людей для каждого PR
func (c *Client) FetchReviewComments(ctx context.Context, prs []models.PullRequest) (map[int64][]models.ReviewComment, error) {
	start := c.now()
	results := make([][]models.ReviewComment, len(prs))

	if len(prs) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers(c.opts.CommentWorkers, len(prs)))

		for i, pr := range prs {
			i, pr := i, pr
			g.Go(func() error {
				comments, err := c.fetchComments(gctx, pr)
				if err != nil {
					return fmt.Errorf("fetch review comments of %s#%d: %w", pr.Repository, pr.Number, err)
				}
				results[i] = comments
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	byPR := make(map[int64][]models.ReviewComment, len(prs))
	total := 0
	for i, pr := range prs {
		byPR[pr.ID] = results[i]
		total += len(results[i])
	}
	slog.Info("review comments fetched", "pull_requests", len(prs), "comments", total, "duration", time.Since(start))
	return byPR, nil
}

func (c *Client) fetchComments(ctx context.Context, pr models.PullRequest) ([]models.ReviewComment, error) {
	owner, name, err := splitRepo(pr.Repository)
	if err != nil {
		return nil, err
	}

	opt := &github.PullRequestListCommentsOptions{ListOptions: github.ListOptions{PerPage: perPage}}
	var comments []models.ReviewComment
	for {
		if err := c.wait(ctx); err != nil {
			return nil, err
		}
		page, resp, err := c.gh.PullRequests.ListComments(ctx, owner, name, pr.Number, opt)
		if err != nil {
			return nil, err
		}
		for _, cm := range page {
			if cm.User == nil || isBot(cm.User) {
				continue
			}
			comments = append(comments, models.ReviewComment{
				ID:        cm.GetID(),
				PRID:      pr.ID,
				Author:    cm.User.GetLogin(),
				CreatedAt: cm.GetCreatedAt().UTC(),
			})
		}
		if resp.NextPage == 0 {
			return comments, nil
		}
		opt.Page = resp.NextPage
	}
}
