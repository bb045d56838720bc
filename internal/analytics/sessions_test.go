package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/insight-api/internal/models"
)

func event(userID int64, eventType models.EventType, at time.Time) models.ActivityEvent {
	return models.ActivityEvent{UserID: userID, EventType: eventType, OccurredAt: at}
}

func TestReconstructSessionsPairsOpenWithNextClose(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	open := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	summary := ReconstructSessions([]models.ActivityEvent{
		event(1, models.EventLessonOpen, open),
		event(1, models.EventTabOut, open.Add(20*time.Minute)),
	}, now)

	require.Len(t, summary.Sessions, 1)
	assert.Equal(t, 20.0, summary.Sessions[0].DurationMinutes)
	assert.Equal(t, 20.0, summary.MinutesPerDay["2026-08-28"])
	assert.Equal(t, 20.0, summary.PerUser[1].TotalMinutes)
	assert.Equal(t, 20.0, summary.PerUser[1].Last7DaysMinutes)
}

func TestReconstructSessionsAttributesToOpeningDay(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	open := time.Date(2026, 8, 27, 23, 50, 0, 0, time.UTC)

	summary := ReconstructSessions([]models.ActivityEvent{
		event(1, models.EventLessonOpen, open),
		event(1, models.EventIdle, open.Add(30*time.Minute)),
	}, now)

	assert.Equal(t, 30.0, summary.MinutesPerDay["2026-08-27"])
	assert.Zero(t, summary.MinutesPerDay["2026-08-28"])
}

func TestReconstructSessionsUnmatchedOpenDropped(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	summary := ReconstructSessions([]models.ActivityEvent{
		event(1, models.EventLessonOpen, now.Add(-time.Hour)),
	}, now)

	assert.Empty(t, summary.Sessions)
	assert.Empty(t, summary.MinutesPerDay)
	assert.Zero(t, summary.PerUser[1].TotalMinutes)
}

func TestReconstructSessionsReopenOverwritesSlot(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	first := now.Add(-3 * time.Hour)
	second := now.Add(-time.Hour)

	summary := ReconstructSessions([]models.ActivityEvent{
		event(1, models.EventLessonOpen, first),
		event(1, models.EventLessonOpen, second),
		event(1, models.EventTabOut, second.Add(15*time.Minute)),
	}, now)

	require.Len(t, summary.Sessions, 1)
	assert.Equal(t, second, summary.Sessions[0].Start)
	assert.Equal(t, 15.0, summary.Sessions[0].DurationMinutes)
}

func TestReconstructSessionsClampsNegativeDuration(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	open := now.Add(-time.Hour)

	summary := ReconstructSessions([]models.ActivityEvent{
		event(1, models.EventLessonOpen, open),
		event(1, models.EventTabOut, open.Add(-5*time.Minute)),
	}, now)

	require.Len(t, summary.Sessions, 1)
	assert.Zero(t, summary.Sessions[0].DurationMinutes)
}

func TestReconstructSessionsCloseWithoutOpenIgnored(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	summary := ReconstructSessions([]models.ActivityEvent{
		event(1, models.EventTabOut, now.Add(-time.Hour)),
		event(2, models.EventIdle, now.Add(-30*time.Minute)),
	}, now)

	assert.Empty(t, summary.Sessions)
}

func TestReconstructSessionsSeparatesUsers(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	base := now.Add(-2 * time.Hour)

	summary := ReconstructSessions([]models.ActivityEvent{
		event(1, models.EventLessonOpen, base),
		event(2, models.EventLessonOpen, base.Add(time.Minute)),
		event(2, models.EventTabOut, base.Add(11*time.Minute)),
		event(1, models.EventIdle, base.Add(40*time.Minute)),
	}, now)

	require.Len(t, summary.Sessions, 2)
	assert.Equal(t, 40.0, summary.PerUser[1].TotalMinutes)
	assert.Equal(t, 10.0, summary.PerUser[2].TotalMinutes)
}

func TestReconstructSessionsLast7DayWindow(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -10)

	summary := ReconstructSessions([]models.ActivityEvent{
		event(1, models.EventLessonOpen, old),
		event(1, models.EventTabOut, old.Add(25*time.Minute)),
		event(1, models.EventLessonOpen, now.Add(-time.Hour)),
		event(1, models.EventIdle, now.Add(-30*time.Minute)),
	}, now)

	study := summary.PerUser[1]
	assert.Equal(t, 55.0, study.TotalMinutes)
	assert.Equal(t, 30.0, study.Last7DaysMinutes)
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 8, 20, 23, 0, 0, 0, time.UTC)
	b := time.Date(2026, 8, 28, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 8, DaysBetween(a, b))
	assert.Equal(t, 0, DaysBetween(b, b))
}
