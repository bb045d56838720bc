package models

import "time"

// EnrollmentRole distinguishes learners from course staff.
type EnrollmentRole string

const (
	RoleStudent    EnrollmentRole = "student"
	RoleInstructor EnrollmentRole = "instructor"
)

// Enrollment binds a user to a course. The student roster defines the
// denominator for class-level aggregates; users with activity but no
// enrollment are excluded from course rates.
type Enrollment struct {
	UserID   int64          `db:"user_id" json:"user_id"`
	CourseID int64          `db:"course_id" json:"course_id"`
	Role     EnrollmentRole `db:"role" json:"role"`
	JoinedAt time.Time      `db:"joined_at" json:"joined_at"`
}
