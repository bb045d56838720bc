package analytics

import "github.com/lumenlearn/insight-api/internal/models"

// CompletionSummary captures lesson completion at user or class level. Rate
// is nil when the denominator is zero: "not computable" must stay distinct
// from "zero progress".
type CompletionSummary struct {
	CompletedLessons int      `json:"completed_lessons"`
	TotalLessons     int      `json:"total_lessons"`
	LearnerCount     int      `json:"learner_count,omitempty"`
	CompletionRate   *float64 `json:"completion_rate"`
}

// ClassCompletion aggregates distinct completed (user, lesson) pairs over the
// whole roster. Completions by users outside the roster are ignored.
func ClassCompletion(totalLessons int, roster []int64, completions []models.LessonCompletion) CompletionSummary {
	enrolled := make(map[int64]struct{}, len(roster))
	for _, id := range roster {
		enrolled[id] = struct{}{}
	}

	type pair struct{ user, lesson int64 }
	seen := make(map[pair]struct{}, len(completions))
	completed := 0
	for _, row := range completions {
		if !row.IsCompleted {
			continue
		}
		if _, ok := enrolled[row.UserID]; !ok {
			continue
		}
		key := pair{row.UserID, row.LessonID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		completed++
	}

	summary := CompletionSummary{
		CompletedLessons: completed,
		TotalLessons:     totalLessons,
		LearnerCount:     len(roster),
	}
	if totalLessons > 0 && len(roster) > 0 {
		rate := float64(completed) / float64(totalLessons*len(roster))
		summary.CompletionRate = &rate
	}
	return summary
}

// UserCompletion computes one learner's completion against the course lesson
// count.
func UserCompletion(totalLessons, completedLessons int) CompletionSummary {
	summary := CompletionSummary{
		CompletedLessons: completedLessons,
		TotalLessons:     totalLessons,
	}
	if totalLessons > 0 {
		rate := float64(completedLessons) / float64(totalLessons)
		summary.CompletionRate = &rate
	}
	return summary
}
