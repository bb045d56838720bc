package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lumenlearn/insight-api/internal/models"
)

// CourseRepository reads the course catalog shape and lesson progress rows.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// GetCourse returns the course with its assignable lesson count. Callers
// map sql.ErrNoRows to the NotFound taxonomy.
func (r *CourseRepository) GetCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	const query = `SELECT c.id, c.title,
        (SELECT COUNT(*) FROM lessons l WHERE l.course_id = c.id) AS lesson_count
        FROM courses c WHERE c.id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, courseID); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListCompletions returns distinct completed (user, lesson) pairs for the
// course. Duplicate touch events collapse in SQL so they never double count.
func (r *CourseRepository) ListCompletions(ctx context.Context, courseID int64) ([]models.LessonCompletion, error) {
	const query = `SELECT DISTINCT lp.user_id, lp.lesson_id, lp.is_completed
        FROM lesson_progress lp
        JOIN lessons l ON l.id = lp.lesson_id
        WHERE l.course_id = $1 AND lp.is_completed = TRUE`
	var completions []models.LessonCompletion
	if err := r.db.SelectContext(ctx, &completions, query, courseID); err != nil {
		return nil, fmt.Errorf("list lesson completions: %w", err)
	}
	return completions, nil
}

// CountUserCompletedLessons returns how many distinct lessons the user has
// completed in the course.
func (r *CourseRepository) CountUserCompletedLessons(ctx context.Context, courseID, userID int64) (int, error) {
	const query = `SELECT COUNT(DISTINCT lp.lesson_id)
        FROM lesson_progress lp
        JOIN lessons l ON l.id = lp.lesson_id
        WHERE l.course_id = $1 AND lp.user_id = $2 AND lp.is_completed = TRUE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, courseID, userID); err != nil {
		return 0, fmt.Errorf("count user completed lessons: %w", err)
	}
	return count, nil
}
