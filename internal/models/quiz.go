package models

import "time"

// Quiz is an assessable unit with weighted questions and an optional
// submission deadline.
type Quiz struct {
	ID        int64      `db:"id" json:"id"`
	CourseID  int64      `db:"course_id" json:"course_id"`
	Title     string     `db:"title" json:"title"`
	Deadline  *time.Time `db:"deadline" json:"deadline,omitempty"`
	Questions []Question `json:"questions,omitempty"`
}

// Question carries its point weight. A zero or negative weight counts as 1
// when the quiz total is computed.
type Question struct {
	ID     int64   `db:"id" json:"id"`
	QuizID int64   `db:"quiz_id" json:"quiz_id"`
	Points float64 `db:"points" json:"points"`
}

// Submission is one graded quiz attempt. Reattempts are allowed; only rows
// with both a score and a submission time reach the engine.
type Submission struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	QuizID      int64     `db:"quiz_id" json:"quiz_id"`
	Score       float64   `db:"score" json:"score"`
	SubmittedAt time.Time `db:"submitted_at" json:"submitted_at"`
}
