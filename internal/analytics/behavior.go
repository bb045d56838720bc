package analytics

import (
	"sort"
	"time"

	"github.com/lumenlearn/insight-api/internal/models"
)

// Pattern labels an activity cadence over the lookback window.
type Pattern string

const (
	PatternNoActivity  Pattern = "no_activity_window"
	PatternConsistent  Pattern = "consistent"
	PatternInterrupted Pattern = "interrupted"
	PatternBurst       Pattern = "burst_learning"
	PatternMixed       Pattern = "mixed"
)

// BehaviorReport classifies activity cadence from the distribution of
// active calendar days.
type BehaviorReport struct {
	InactiveDays   int     `json:"inactive_days"`
	LongestGapDays int     `json:"longest_gap_days"`
	ActiveDays     int     `json:"active_days"`
	TabOutCount    int     `json:"tab_out_count"`
	Top2Share      float64 `json:"top_2_share"`
	Pattern        Pattern `json:"pattern"`
}

// ClassifyBehavior derives the cadence pattern from LESSON_OPEN and
// QUIZ_START events within the window. Inactive days count from the most
// recent active day, not from window start; the longest gap includes the
// tail gap from the last active day to today. Precedence, first match wins:
// consistent when every window day is active, interrupted when the longest
// gap reaches 3 days, burst_learning when the two busiest days carry 60% of
// the volume, otherwise mixed.
func ClassifyBehavior(events []models.ActivityEvent, tabOutCount, windowDays int, now time.Time) BehaviorReport {
	report := BehaviorReport{TabOutCount: tabOutCount}

	volumeByDay := make(map[string]int)
	daySet := make(map[time.Time]struct{})
	for _, event := range events {
		switch event.EventType {
		case models.EventLessonOpen, models.EventQuizStart:
			volumeByDay[DayKey(event.OccurredAt)]++
			daySet[DayStart(event.OccurredAt)] = struct{}{}
		}
	}

	if len(daySet) == 0 {
		report.InactiveDays = windowDays
		report.LongestGapDays = windowDays
		report.Pattern = PatternNoActivity
		return report
	}

	activeDays := make([]time.Time, 0, len(daySet))
	for day := range daySet {
		activeDays = append(activeDays, day)
	}
	sort.Slice(activeDays, func(i, j int) bool { return activeDays[i].Before(activeDays[j]) })

	report.ActiveDays = len(activeDays)
	report.InactiveDays = DaysBetween(activeDays[len(activeDays)-1], now)
	if report.InactiveDays < 0 {
		report.InactiveDays = 0
	}

	longest := report.InactiveDays
	for i := 1; i < len(activeDays); i++ {
		gap := DaysBetween(activeDays[i-1], activeDays[i]) - 1
		if gap > longest {
			longest = gap
		}
	}
	report.LongestGapDays = longest

	total := 0
	volumes := make([]int, 0, len(volumeByDay))
	for _, count := range volumeByDay {
		total += count
		volumes = append(volumes, count)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(volumes)))
	top2 := volumes[0]
	if len(volumes) > 1 {
		top2 += volumes[1]
	}
	if total > 0 {
		report.Top2Share = float64(top2) / float64(total)
	}

	switch {
	case report.ActiveDays >= windowDays:
		report.Pattern = PatternConsistent
	case report.LongestGapDays >= 3:
		report.Pattern = PatternInterrupted
	case report.Top2Share >= 0.6:
		report.Pattern = PatternBurst
	default:
		report.Pattern = PatternMixed
	}

	return report
}
