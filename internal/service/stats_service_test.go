package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"review-response-metrics/internal/models"
	"review-response-metrics/internal/timeline"
)

type fakeSource struct {
	snapshot *Snapshot
	err      error
	since    time.Time
}

func (f *fakeSource) Load(ctx context.Context, since time.Time) (*Snapshot, error) {
	f.since = since
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

type StatsServiceSuite struct {
	suite.Suite
	source  *fakeSource
	service *StatsService
}

func (suite *StatsServiceSuite) SetupTest() {
	pr1 := newPR(1, 1, "alice")
	pr2 := newPR(2, 2, "alice", mergedAfter(30*time.Hour), inRepo("acme/web"))
	pr7 := newPR(7, 7, "alice")

	suite.source = &fakeSource{snapshot: &Snapshot{
		Repositories: []string{"acme/api", "acme/web"},
		PRs:          []models.PullRequest{pr1, pr2, pr7},
		Events: map[int64][]models.TimelineEvent{
			1: {requested(0, "bob"), reviewed(2*time.Hour, "bob")},
			2: {requested(0, "carol")},
			7: {requested(0, "erin"), reviewed(3*time.Hour, "erin"), reviewed(10*time.Hour, "erin")},
		},
		Comments: []models.ReviewComment{{ID: 1, PRID: 1, Author: "bob"}},
	}}

	suite.service = NewStatsService(suite.source, time.FixedZone("UTC+9", 9*3600), false)
	// 2025-03-11 09:00 по UTC+9
	suite.service.now = func() time.Time { return time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC) }
}

func (suite *StatsServiceSuite) TestWeeklyReport() {
	report, err := suite.service.WeeklyReport(context.Background(), 7)

	suite.Require().NoError(err)
	suite.Equal(7, report.Days)
	suite.Equal(3, report.TotalPRs)
	suite.Equal(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), suite.source.since)
	suite.Equal(map[string]int{"acme/api": 2, "acme/web": 1}, report.RepoPRCounts)

	suite.Require().Len(report.Reviewers, 3)
	suite.Equal("bob", report.Reviewers[0].Reviewer)
	suite.Equal([]float64{2}, report.Reviewers[0].ResponseTimes)
	suite.Equal(1, report.Reviewers[0].CommentCount)
	suite.Equal("erin", report.Reviewers[1].Reviewer)
	suite.Equal("carol", report.Reviewers[2].Reviewer)
	suite.Equal(1, report.Reviewers[2].OverdueCount)
}

func (suite *StatsServiceSuite) TestWeeklyReport_InvalidDays() {
	for _, days := range []int{0, -1, 91} {
		_, err := suite.service.WeeklyReport(context.Background(), days)

		serviceErr, ok := AsServiceError(err)
		suite.Require().True(ok)
		suite.Equal(CodeInvalidRequest, serviceErr.Code)
	}
}

func (suite *StatsServiceSuite) TestWeeklyReport_MissingTimelineAborts() {
	delete(suite.source.snapshot.Events, 2)

	report, err := suite.service.WeeklyReport(context.Background(), 7)

	suite.Nil(report)
	suite.Require().Error(err)
	suite.True(errors.Is(err, timeline.ErrTimelineMissing))
	serviceErr, ok := AsServiceError(err)
	suite.Require().True(ok)
	suite.Equal(CodeIncompleteData, serviceErr.Code)
}

func (suite *StatsServiceSuite) TestWeeklyReport_SourceError() {
	suite.source.err = errors.New("rate limited")

	_, err := suite.service.WeeklyReport(context.Background(), 7)

	suite.ErrorContains(err, "rate limited")
	_, ok := AsServiceError(err)
	suite.False(ok)
}

func (suite *StatsServiceSuite) TestDailyReport_Yesterday() {
	report, err := suite.service.DailyReport(context.Background(), "")

	suite.Require().NoError(err)
	suite.Equal("2025-03-10", report.Date)
	suite.Equal(report.WindowStart, suite.source.since)
	suite.Require().Len(report.Groups, 2)
	suite.Equal("bob", report.Groups[0].Reviewer)
	suite.Equal("erin", report.Groups[1].Reviewer)
	suite.Require().Len(report.Groups[1].Reviews, 1)
	suite.InDelta(10.0, report.Groups[1].Reviews[0].ResponseTime, 1e-9)
	suite.Equal("🚶", report.Groups[1].Reviews[0].Speed)
}

func (suite *StatsServiceSuite) TestDailyReport_ExplicitDate() {
	report, err := suite.service.DailyReport(context.Background(), "2025-03-01")

	suite.Require().NoError(err)
	suite.Equal("2025-03-01", report.Date)
	suite.Empty(report.Groups)
}

func (suite *StatsServiceSuite) TestDailyReport_BadDate() {
	_, err := suite.service.DailyReport(context.Background(), "yesterday")

	serviceErr, ok := AsServiceError(err)
	suite.Require().True(ok)
	suite.Equal(CodeInvalidRequest, serviceErr.Code)
}

func TestStatsServiceSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceSuite))
}
