package analytics

import (
	"time"

	"github.com/lumenlearn/insight-api/internal/models"
)

// Session is one reconstructed open-to-close study interval. Sessions are
// derived per request and never persisted.
type Session struct {
	UserID          int64     `json:"user_id"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes float64   `json:"duration_minutes"`
}

// UserStudy aggregates reconstructed study minutes for one learner.
type UserStudy struct {
	TotalMinutes     float64 `json:"total_minutes"`
	Last7DaysMinutes float64 `json:"last_7_days_minutes"`
}

// StudySummary is the output of session reconstruction: course-wide minutes
// bucketed by calendar day plus per-user totals.
type StudySummary struct {
	Sessions      []Session           `json:"sessions"`
	MinutesPerDay map[string]float64  `json:"minutes_per_day"`
	PerUser       map[int64]UserStudy `json:"per_user"`
}

// ReconstructSessions pairs each LESSON_OPEN with the next chronological
// TAB_OUT or IDLE for the same user. Events must be sorted ascending by
// occurrence time. One open slot is kept per user: a new open discards any
// prior unmatched open, and an open that never closes within the observed
// window yields no session. Durations are clamped to zero against clock
// skew and attributed to the calendar day of the opening event.
func ReconstructSessions(events []models.ActivityEvent, now time.Time) StudySummary {
	summary := StudySummary{
		MinutesPerDay: make(map[string]float64),
		PerUser:       make(map[int64]UserStudy),
	}

	recentCutoff := DayStart(now).AddDate(0, 0, -6)
	open := make(map[int64]time.Time)

	for _, event := range events {
		switch event.EventType {
		case models.EventLessonOpen:
			open[event.UserID] = event.OccurredAt
		case models.EventTabOut, models.EventIdle:
			start, ok := open[event.UserID]
			if !ok {
				continue
			}
			delete(open, event.UserID)

			minutes := event.OccurredAt.Sub(start).Minutes()
			if minutes < 0 {
				minutes = 0
			}

			summary.Sessions = append(summary.Sessions, Session{
				UserID:          event.UserID,
				Start:           start,
				End:             event.OccurredAt,
				DurationMinutes: minutes,
			})

			day := DayKey(start)
			summary.MinutesPerDay[day] += minutes

			study := summary.PerUser[event.UserID]
			study.TotalMinutes += minutes
			if !DayStart(start).Before(recentCutoff) {
				study.Last7DaysMinutes += minutes
			}
			summary.PerUser[event.UserID] = study
		}
	}

	return summary
}

// DayKey buckets a timestamp into its UTC calendar day.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DayStart truncates a timestamp to UTC midnight.
func DayStart(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts whole calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(DayStart(b).Sub(DayStart(a)).Hours() / 24)
}
