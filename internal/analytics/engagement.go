package analytics

import (
	"time"

	"github.com/lumenlearn/insight-api/internal/models"
)

// DayCount is one zero-filled bucket in a daily trend series.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// EngagementTrend describes login cadence and study time over the fixed
// trailing 7-day window.
type EngagementTrend struct {
	LoginsPerDay                 []DayCount    `json:"logins_per_day"`
	LoginsByUser                 map[int64]int `json:"logins_by_user"`
	AverageStudyMinutesLast7Days float64       `json:"average_study_minutes_last_7_days"`
}

// BuildEngagement turns raw LOGIN events and reconstructed study minutes
// into daily trend series. The login series always spans exactly 7 buckets
// anchored to today, zero-filled regardless of data presence, and the study
// average divides by the fixed window length rather than by active days: a
// quiet week still averages against all 7 days.
func BuildEngagement(logins []models.ActivityEvent, study StudySummary, now time.Time) EngagementTrend {
	trend := EngagementTrend{
		LoginsByUser: make(map[int64]int),
	}

	perDay := make(map[string]int)
	for _, event := range logins {
		if event.EventType != models.EventLogin {
			continue
		}
		perDay[DayKey(event.OccurredAt)]++
		trend.LoginsByUser[event.UserID]++
	}

	today := DayStart(now)
	trend.LoginsPerDay = make([]DayCount, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := DayKey(today.AddDate(0, 0, -offset))
		trend.LoginsPerDay = append(trend.LoginsPerDay, DayCount{Day: day, Count: perDay[day]})
	}

	recentCutoff := today.AddDate(0, 0, -6)
	recentMinutes := 0.0
	for day, minutes := range study.MinutesPerDay {
		parsed, err := time.ParseInLocation("2006-01-02", day, time.UTC)
		if err != nil {
			continue
		}
		if !parsed.Before(recentCutoff) && !parsed.After(today) {
			recentMinutes += minutes
		}
	}
	trend.AverageStudyMinutesLast7Days = recentMinutes / 7

	return trend
}
