package dto

import "github.com/lumenlearn/insight-api/internal/analytics"

// CoursePerformanceResponse summarises completion and quiz outcomes for a
// course. Nullable rates signal "not computable", never zero progress.
type CoursePerformanceResponse struct {
	CourseID             int64    `json:"course_id"`
	LearnerCount         int      `json:"learner_count"`
	TotalLessons         int      `json:"total_lessons"`
	CompletionRate       *float64 `json:"completion_rate"`
	AverageQuizScore     *float64 `json:"average_quiz_score"`
	OnTimeSubmissionRate *float64 `json:"on_time_submission_rate"`
}

// CourseEngagementResponse carries daily study and login trends.
type CourseEngagementResponse struct {
	CourseID                     int64                `json:"course_id"`
	WindowDays                   int                  `json:"window_days"`
	StudyMinutesPerDay           map[string]float64   `json:"study_minutes_per_day"`
	AverageStudyMinutesLast7Days float64              `json:"average_study_minutes_last_7_days"`
	LoginsPerDay                 []analytics.DayCount `json:"logins_per_day"`
	LoginsByUser                 map[int64]int        `json:"logins_by_user"`
}

// CourseBehaviorResponse classifies course-wide activity cadence.
type CourseBehaviorResponse struct {
	CourseID       int64             `json:"course_id"`
	WindowDays     int               `json:"window_days"`
	InactiveDays   int               `json:"inactive_days"`
	TabOutCount    int               `json:"tab_out_count"`
	LongestGapDays int               `json:"longest_gap_days"`
	Pattern        analytics.Pattern `json:"pattern"`
}

// LearnerStats is the per-user row inside the instructor insights view.
type LearnerStats struct {
	UserID           int64             `json:"user_id"`
	CompletionRate   *float64          `json:"completion_rate"`
	QuizAverage      *float64          `json:"quiz_average"`
	QuizAttempts     int               `json:"quiz_attempts"`
	StudyMinutes     float64           `json:"study_minutes"`
	Last7DaysMinutes float64           `json:"last_7_days_minutes"`
	TabOutCount      int               `json:"tab_out_count"`
	InactiveDays     int               `json:"inactive_days"`
	Pattern          analytics.Pattern `json:"pattern"`
}

// CourseInsightsResponse is the full instructor dashboard payload. Insights
// are sorted by descending risk.
type CourseInsightsResponse struct {
	Performance  *CoursePerformanceResponse `json:"performance"`
	Engagement   *CourseEngagementResponse  `json:"engagement"`
	Behavior     *CourseBehaviorResponse    `json:"behavior"`
	PerUserStats []LearnerStats             `json:"per_user_stats"`
	Insights     []analytics.RiskProfile    `json:"insights"`
}

// QuizRecommendation flags a quiz worth revisiting for a learner.
type QuizRecommendation struct {
	QuizID    int64   `json:"quiz_id"`
	Title     string  `json:"title"`
	BestScore float64 `json:"best_score"`
}

// UserCourseReportResponse compares one learner against the class.
type UserCourseReportResponse struct {
	CourseID                int64                       `json:"course_id"`
	UserID                  int64                       `json:"user_id"`
	UserCompletion          analytics.CompletionSummary `json:"user_completion"`
	ClassBenchmark          *float64                    `json:"class_benchmark"`
	UserQuizAverage         *float64                    `json:"user_quiz_average"`
	LowScoreRecommendations []QuizRecommendation        `json:"low_score_recommendations"`
	Insight                 analytics.RiskProfile       `json:"insight"`
}

// CertificateResponse is the outcome of the certificate-eligibility gate.
type CertificateResponse struct {
	CourseID       int64                         `json:"course_id"`
	UserID         int64                         `json:"user_id"`
	Decision       analytics.CertificateDecision `json:"decision"`
	CompletionRate *float64                      `json:"completion_rate"`
	QuizAverage    float64                       `json:"quiz_average"`
}
