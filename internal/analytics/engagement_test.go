package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/insight-api/internal/models"
)

func TestBuildEngagementAlwaysSevenBuckets(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	trend := BuildEngagement(nil, StudySummary{}, now)

	require.Len(t, trend.LoginsPerDay, 7)
	assert.Equal(t, "2026-08-22", trend.LoginsPerDay[0].Day)
	assert.Equal(t, "2026-08-28", trend.LoginsPerDay[6].Day)
	for _, bucket := range trend.LoginsPerDay {
		assert.Zero(t, bucket.Count)
	}
	assert.Zero(t, trend.AverageStudyMinutesLast7Days)
}

func TestBuildEngagementCountsLoginsPerDayAndUser(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	logins := []models.ActivityEvent{
		event(1, models.EventLogin, now.Add(-time.Hour)),
		event(1, models.EventLogin, now.Add(-2*time.Hour)),
		event(2, models.EventLogin, now.AddDate(0, 0, -1)),
		// Outside the 7-day window: counted per user, absent from buckets.
		event(2, models.EventLogin, now.AddDate(0, 0, -20)),
	}

	trend := BuildEngagement(logins, StudySummary{}, now)

	assert.Equal(t, 2, trend.LoginsPerDay[6].Count)
	assert.Equal(t, 1, trend.LoginsPerDay[5].Count)
	assert.Equal(t, 2, trend.LoginsByUser[1])
	assert.Equal(t, 2, trend.LoginsByUser[2])
}

func TestBuildEngagementIgnoresNonLoginEvents(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	events := []models.ActivityEvent{
		event(1, models.EventLessonOpen, now.Add(-time.Hour)),
		event(1, models.EventTabOut, now.Add(-30*time.Minute)),
	}

	trend := BuildEngagement(events, StudySummary{}, now)

	assert.Empty(t, trend.LoginsByUser)
}

func TestBuildEngagementAveragesOverFixedWindow(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	study := StudySummary{MinutesPerDay: map[string]float64{
		"2026-08-28": 35,
		"2026-08-25": 35,
		// Outside the trailing 7 days; must not contribute.
		"2026-08-01": 500,
	}}

	trend := BuildEngagement(nil, study, now)

	// A quiet week still divides by all 7 days, not by active days.
	assert.InDelta(t, 10.0, trend.AverageStudyMinutesLast7Days, 1e-9)
}
