package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/lumenlearn/insight-api/internal/models"
)

func TestClassifyBehaviorNoActivity(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	report := ClassifyBehavior(nil, 0, 30, now)

	assert.Equal(t, PatternNoActivity, report.Pattern)
	assert.Equal(t, 30, report.InactiveDays)
	assert.Equal(t, 30, report.LongestGapDays)
}

func TestClassifyBehaviorInactiveDaysFromLastActiveDay(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	events := []models.ActivityEvent{
		event(1, models.EventLessonOpen, now.AddDate(0, 0, -20)),
		event(1, models.EventLessonOpen, now.AddDate(0, 0, -1)),
	}

	report := ClassifyBehavior(events, 0, 30, now)

	// Active yesterday means one inactive day even in a 30-day window.
	assert.Equal(t, 1, report.InactiveDays)
}

func TestClassifyBehaviorLongestGapIncludesTail(t *testing.T) {
	// Active on days 1,2,3 of a 10-day window, silent through day 10.
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	events := []models.ActivityEvent{
		event(1, models.EventLessonOpen, now.AddDate(0, 0, -9)),
		event(1, models.EventLessonOpen, now.AddDate(0, 0, -8)),
		event(1, models.EventQuizStart, now.AddDate(0, 0, -7)),
	}

	report := ClassifyBehavior(events, 0, 10, now)

	assert.Equal(t, 7, report.LongestGapDays)
	assert.Equal(t, PatternInterrupted, report.Pattern)
}

func TestClassifyBehaviorConsistentBeatsEverything(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	var events []models.ActivityEvent
	for offset := 0; offset < 7; offset++ {
		events = append(events, event(1, models.EventLessonOpen, now.AddDate(0, 0, -offset)))
	}

	// High tab-out volume must not displace the consistent label.
	report := ClassifyBehavior(events, 50, 7, now)

	assert.Equal(t, PatternConsistent, report.Pattern)
	assert.Equal(t, 50, report.TabOutCount)
}

func TestClassifyBehaviorBurstLearning(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	busy := now.AddDate(0, 0, -1)
	var events []models.ActivityEvent
	for i := 0; i < 8; i++ {
		events = append(events, event(1, models.EventLessonOpen, busy.Add(time.Duration(i)*time.Minute)))
	}
	events = append(events,
		event(1, models.EventLessonOpen, now.AddDate(0, 0, -2)),
		event(1, models.EventLessonOpen, now),
	)

	report := ClassifyBehavior(events, 0, 30, now)

	assert.GreaterOrEqual(t, report.Top2Share, 0.6)
	assert.Equal(t, PatternBurst, report.Pattern)
}

func TestClassifyBehaviorMixed(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	var events []models.ActivityEvent
	// Activity every other day keeps gaps under 3 and volume spread out.
	for offset := 0; offset <= 8; offset += 2 {
		events = append(events, event(1, models.EventLessonOpen, now.AddDate(0, 0, -offset)))
	}

	report := ClassifyBehavior(events, 0, 30, now)

	assert.Equal(t, PatternMixed, report.Pattern)
}

func TestClassifyBehaviorIgnoresPassiveEvents(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	events := []models.ActivityEvent{
		event(1, models.EventLogin, now),
		event(1, models.EventTabOut, now),
		event(1, models.EventIdle, now),
	}

	report := ClassifyBehavior(events, 3, 30, now)

	assert.Equal(t, PatternNoActivity, report.Pattern)
	assert.Equal(t, 30, report.InactiveDays)
}
