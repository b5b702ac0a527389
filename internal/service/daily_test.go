package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-response-metrics/internal/models"
)

var kst = time.FixedZone("UTC+9", 9*3600)

// окно 2025-03-10 по UTC+9 это [2025-03-09 15:00, 2025-03-10 15:00) UTC
func testWindow(t *testing.T) DailyWindow {
	t.Helper()
	w, err := WindowForDate("2025-03-10", kst)
	require.NoError(t, err)
	return w
}

func TestYesterdayWindow(t *testing.T) {
	// 2025-03-11 08:30 по UTC+9
	now := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)

	w := YesterdayWindow(now, kst)

	assert.Equal(t, "2025-03-10", w.Date)
	assert.Equal(t, time.Date(2025, 3, 9, 15, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC), w.End)
	assert.Equal(t, time.UTC, w.Start.Location())
	assert.True(t, w.Contains(w.Start))
	assert.False(t, w.Contains(w.End))
}

func TestWindowForDate_Invalid(t *testing.T) {
	_, err := WindowForDate("10.03.2025", kst)

	serviceErr, ok := AsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidRequest, serviceErr.Code)
}

func TestExtractDaily_LastReviewWins(t *testing.T) {
	// scenario D: t0 = 2025-03-10 01:00 UTC, все события внутри окна
	batch := []models.PRTimeline{
		tl(newPR(1, 7, "alice"),
			requested(0, "erin"),
			reviewed(3*time.Hour, "erin"),
			reviewed(10*time.Hour, "erin"),
		),
	}

	records := ExtractDaily(batch, testWindow(t), false)

	require.Len(t, records, 1)
	assert.Equal(t, "erin", records[0].Reviewer)
	assert.Equal(t, 7, records[0].PRNumber)
	assert.Equal(t, "acme/api", records[0].Repository)
	assert.InDelta(t, 10.0, records[0].ResponseTime, 1e-9)
	assert.Equal(t, at(10*time.Hour), records[0].ReviewedAt)
}

func TestExtractDaily_OutsideWindowIgnored(t *testing.T) {
	batch := []models.PRTimeline{
		tl(newPR(1, 1, "alice"),
			requested(-48*time.Hour, "bob"),
			reviewed(-20*time.Hour, "bob"),
			reviewed(20*time.Hour, "bob"),
		),
	}

	assert.Empty(t, ExtractDaily(batch, testWindow(t), false))
}

func TestExtractDaily_RequestBeforeWindow(t *testing.T) {
	batch := []models.PRTimeline{
		tl(newPR(1, 1, "alice"),
			requested(-30*time.Hour, "bob"),
			reviewed(2*time.Hour, "bob"),
		),
	}

	records := ExtractDaily(batch, testWindow(t), false)

	require.Len(t, records, 1)
	assert.InDelta(t, 32.0, records[0].ResponseTime, 1e-9)
}

func TestExtractDaily_NoRequestSkipped(t *testing.T) {
	batch := []models.PRTimeline{
		tl(newPR(1, 1, "alice"), reviewed(2*time.Hour, "bob")),
		tl(newPR(2, 2, "alice"), requested(0, "alice"), reviewed(time.Hour, "alice")),
	}

	assert.Empty(t, ExtractDaily(batch, testWindow(t), false))
}

func TestExtractDaily_RequestMustBeStrictlyEarlier(t *testing.T) {
	batch := []models.PRTimeline{
		tl(newPR(1, 1, "alice"),
			reviewed(2*time.Hour, "bob"),
			requested(2*time.Hour, "bob"),
		),
	}

	assert.Empty(t, ExtractDaily(batch, testWindow(t), false))
}

func TestExtractDaily_RemovedRequest(t *testing.T) {
	batch := []models.PRTimeline{
		tl(newPR(1, 1, "alice"),
			requested(0, "dave"),
			removed(time.Hour, "dave"),
			reviewed(5*time.Hour, "dave"),
		),
	}

	strict := ExtractDaily(batch, testWindow(t), false)
	legacy := ExtractDaily(batch, testWindow(t), true)

	assert.Empty(t, strict)
	require.Len(t, legacy, 1)
	assert.InDelta(t, 5.0, legacy[0].ResponseTime, 1e-9)
}

func TestExtractDaily_ReRequestUsesLatest(t *testing.T) {
	batch := []models.PRTimeline{
		tl(newPR(1, 1, "alice"),
			requested(0, "bob"),
			removed(time.Hour, "bob"),
			requested(2*time.Hour, "bob"),
			reviewed(5*time.Hour, "bob"),
		),
	}

	for _, legacy := range []bool{false, true} {
		records := ExtractDaily(batch, testWindow(t), legacy)
		require.Len(t, records, 1)
		assert.InDelta(t, 3.0, records[0].ResponseTime, 1e-9)
	}
}

func TestExtractDaily_OneRecordPerReviewerAndPR(t *testing.T) {
	batch := []models.PRTimeline{
		tl(newPR(1, 1, "alice"),
			requested(0, "bob"),
			requested(0, "carol"),
			reviewed(time.Hour, "bob"),
			reviewed(2*time.Hour, "carol"),
			reviewed(3*time.Hour, "bob"),
			requested(4*time.Hour, "bob"),
			reviewed(6*time.Hour, "bob"),
		),
		tl(newPR(2, 2, "alice"), requested(0, "bob"), reviewed(time.Hour, "bob")),
	}

	records := ExtractDaily(batch, testWindow(t), false)

	seen := map[string]bool{}
	for _, r := range records {
		key := fmt.Sprintf("%s/%s#%d", r.Reviewer, r.Repository, r.PRNumber)
		assert.False(t, seen[key], key)
		seen[key] = true
	}
	assert.Len(t, records, 3)
}

func TestSpeedIndicator(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{0, "🚀"},
		{0.99, "🚀"},
		{1, "⚡"},
		{3.9, "⚡"},
		{4, "🏃"},
		{7.9, "🏃"},
		{8, "🚶"},
		{23.9, "🚶"},
		{24, "🐢"},
		{100, "🐢"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SpeedIndicator(tt.hours), "%.2f hours", tt.hours)
	}
}

func TestBuildDailyReport(t *testing.T) {
	window := testWindow(t)
	records := []models.DailyReviewRecord{
		{Reviewer: "zoe", Repository: "acme/api", PRNumber: 1, ResponseTime: 5},
		{Reviewer: "bob", Repository: "acme/web", PRNumber: 9, ResponseTime: 30},
		{Reviewer: "bob", Repository: "acme/api", PRNumber: 3, ResponseTime: 0.5},
	}

	report := BuildDailyReport(records, window)

	assert.Equal(t, "2025-03-10", report.Date)
	require.Len(t, report.Groups, 2)
	assert.Equal(t, "bob", report.Groups[0].Reviewer)
	assert.Equal(t, "zoe", report.Groups[1].Reviewer)

	bob := report.Groups[0].Reviews
	require.Len(t, bob, 2)
	assert.Equal(t, 3, bob[0].PRNumber)
	assert.Equal(t, "🚀", bob[0].Speed)
	assert.Equal(t, "🐢", bob[1].Speed)
}
