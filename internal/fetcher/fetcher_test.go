package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-response-metrics/internal/models"
)

var now = time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewWithHTTPClient(srv.Client(), Options{
		Org:             "acme",
		MinActivityDays: 30,
		BaseURL:         srv.URL,
		RepoWorkers:     4,
		TimelineWorkers: 4,
		CommentWorkers:  4,
		MaxPRsPerRepo:   100,
	})
	require.NoError(t, err)
	c.now = func() time.Time { return now }
	return c
}

func ts(d time.Duration) string {
	return now.Add(d).Format(time.RFC3339)
}

func TestListActiveRepos(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orgs/acme/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"name": "api", "private": true, "updated_at": %q, "pushed_at": %q},
			{"name": "legacy", "private": true, "archived": true, "updated_at": %q},
			{"name": "fork", "private": true, "fork": true, "updated_at": %q},
			{"name": "site", "private": false, "updated_at": %q},
			{"name": "stale", "private": true, "updated_at": %q, "pushed_at": %q},
			{"name": "pushed", "private": true, "updated_at": %q, "pushed_at": %q}
		]`,
			ts(-time.Hour), ts(-time.Hour),
			ts(-time.Hour), ts(-time.Hour), ts(-time.Hour),
			ts(-90*24*time.Hour), ts(-90*24*time.Hour),
			ts(-90*24*time.Hour), ts(-2*24*time.Hour),
		)
	})
	c := newTestClient(t, mux)

	repos, err := c.ListActiveRepos(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"acme/api", "acme/pushed"}, repos)
}

func TestFetchPullRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api/pulls", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		fmt.Fprintf(w, `[
			{"id": 11, "number": 1, "state": "open", "user": {"login": "alice"}, "created_at": %q, "updated_at": %q},
			{"id": 12, "number": 2, "state": "closed", "user": {"login": "alice"}, "created_at": %q, "updated_at": %q},
			{"id": 13, "number": 3, "state": "closed", "user": {"login": "bob"}, "created_at": %q, "updated_at": %q, "merged_at": %q},
			{"id": 14, "number": 4, "state": "open", "user": {"login": "bob"}, "created_at": %q, "updated_at": %q},
			{"id": 15, "number": 5, "state": "open", "user": {"login": "bob"}, "created_at": %q, "updated_at": %q}
		]`,
			ts(-2*time.Hour), ts(-time.Hour),
			ts(-3*time.Hour), ts(-2*time.Hour),
			ts(-30*24*time.Hour), ts(-3*time.Hour), ts(-3*time.Hour),
			ts(-20*24*time.Hour), ts(-20*24*time.Hour),
			ts(-time.Hour), ts(-time.Hour),
		)
	})
	mux.HandleFunc("/repos/acme/web/pulls", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	c := newTestClient(t, mux)

	prs, err := c.FetchPullRequests(context.Background(), []string{"acme/api", "acme/web"}, now.AddDate(0, 0, -7))

	require.NoError(t, err)
	require.Len(t, prs, 2)
	assert.Equal(t, int64(11), prs[0].ID)
	assert.Equal(t, "acme/api", prs[0].Repository)
	assert.Equal(t, "alice", prs[0].Author)
	assert.True(t, prs[0].IsOpen())
	// PR #3 создан давно, но обновлен в периоде
	assert.Equal(t, 3, prs[1].Number)
	require.NotNil(t, prs[1].MergedAt)
	assert.True(t, prs[1].IsMerged())
}

func TestFetchPullRequests_MaxPerRepo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api/pulls", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"id": 1, "number": 1, "state": "open", "created_at": %[1]q, "updated_at": %[1]q},
			{"id": 2, "number": 2, "state": "open", "created_at": %[1]q, "updated_at": %[1]q},
			{"id": 3, "number": 3, "state": "open", "created_at": %[1]q, "updated_at": %[1]q}
		]`, ts(-time.Hour))
	})
	c := newTestClient(t, mux)
	c.opts.MaxPRsPerRepo = 2

	prs, err := c.FetchPullRequests(context.Background(), []string{"acme/api"}, now.AddDate(0, 0, -7))

	require.NoError(t, err)
	assert.Len(t, prs, 2)
}

func TestFetchPullRequests_FirstErrorAborts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api/pulls", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "boom"}`, http.StatusInternalServerError)
	})
	c := newTestClient(t, mux)

	prs, err := c.FetchPullRequests(context.Background(), []string{"acme/api"}, now)

	require.Error(t, err)
	assert.Nil(t, prs)
	assert.Contains(t, err.Error(), "acme/api")
}

func TestFetchPullRequests_BadRepoName(t *testing.T) {
	c := newTestClient(t, http.NewServeMux())

	_, err := c.FetchPullRequests(context.Background(), []string{"no-slash"}, now)

	assert.ErrorContains(t, err, "owner/name")
}

func TestFetchTimelines(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api/issues/1/timeline", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprintf(w, `[
				{"event": "reviewed", "user": {"login": "bob"}, "submitted_at": %q},
				{"event": "reviewed", "user": {"login": "ci[bot]", "type": "Bot"}, "submitted_at": %q}
			]`, ts(2*time.Hour), ts(2*time.Hour))
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<http://%s%s?page=2>; rel="next"`, r.Host, r.URL.Path))
		fmt.Fprintf(w, `[
			{"event": "review_requested", "created_at": %q, "actor": {"login": "alice"}, "requested_reviewer": {"login": "bob"}},
			{"event": "review_requested", "created_at": %q, "actor": {"login": "alice"}, "requested_team": {"slug": "backend"}}
		]`, ts(0), ts(0))
	})
	mux.HandleFunc("/repos/acme/api/issues/2/timeline", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})
	c := newTestClient(t, mux)
	prs := []models.PullRequest{
		{ID: 101, Number: 1, Repository: "acme/api"},
		{ID: 102, Number: 2, Repository: "acme/api"},
	}

	byPR, err := c.FetchTimelines(context.Background(), prs)

	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	require.Contains(t, byPR, int64(102))
	assert.Empty(t, byPR[102])

	raw := byPR[101]
	require.Len(t, raw, 4)
	assert.Equal(t, "bob", raw[0].Reviewer)
	assert.Equal(t, "backend", raw[1].RequestedTeam)
	assert.Empty(t, raw[1].Reviewer)
	assert.Equal(t, "bob", raw[2].Submitter)
	require.NotNil(t, raw[2].SubmittedAt)
	assert.True(t, raw[3].SubmitterIsBot)
}

func TestFetchReviewComments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/api/pulls/1/comments", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[
			{"id": 1, "user": {"login": "bob"}, "created_at": %[1]q},
			{"id": 2, "user": {"login": "dependabot[bot]"}, "created_at": %[1]q},
			{"id": 3, "created_at": %[1]q}
		]`, ts(0))
	})
	c := newTestClient(t, mux)

	byPR, err := c.FetchReviewComments(context.Background(), []models.PullRequest{{ID: 101, Number: 1, Repository: "acme/api"}})

	require.NoError(t, err)
	require.Len(t, byPR[101], 1)
	assert.Equal(t, "bob", byPR[101][0].Author)
	assert.Equal(t, int64(101), byPR[101][0].PRID)
}

func TestFetch_EmptyInput(t *testing.T) {
	c := newTestClient(t, http.NewServeMux())

	timelines, err := c.FetchTimelines(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, timelines)

	prs, err := c.FetchPullRequests(context.Background(), nil, now)
	require.NoError(t, err)
	assert.Empty(t, prs)
}
