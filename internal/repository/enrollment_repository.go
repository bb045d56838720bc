package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lumenlearn/insight-api/internal/models"
)

// EnrollmentRepository reads course rosters. The student roster defines the
// denominator for every class-level aggregate.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListStudentIDs returns the enrolled student user IDs for a course,
// excluding instructors.
func (r *EnrollmentRepository) ListStudentIDs(ctx context.Context, courseID int64) ([]int64, error) {
	const query = `SELECT user_id FROM enrollments WHERE course_id = $1 AND role = $2 ORDER BY user_id`
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, courseID, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("list course roster: %w", err)
	}
	return ids, nil
}

// IsEnrolled reports whether the user holds any enrollment in the course.
func (r *EnrollmentRepository) IsEnrolled(ctx context.Context, courseID, userID int64) (bool, error) {
	const query = `SELECT 1 FROM enrollments WHERE course_id = $1 AND user_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, courseID, userID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}
