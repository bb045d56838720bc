package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lumenlearn/insight-api/internal/models"
)

// QuizRepository reads quiz definitions, question weights and graded
// submissions.
type QuizRepository struct {
	db *sqlx.DB
}

// NewQuizRepository constructs the repository.
func NewQuizRepository(db *sqlx.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// ListQuizzes returns the course quizzes with their questions attached.
func (r *QuizRepository) ListQuizzes(ctx context.Context, courseID int64) ([]models.Quiz, error) {
	const quizQuery = `SELECT id, course_id, title, deadline FROM quizzes WHERE course_id = $1 ORDER BY id`
	var quizzes []models.Quiz
	if err := r.db.SelectContext(ctx, &quizzes, quizQuery, courseID); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	if len(quizzes) == 0 {
		return quizzes, nil
	}

	const questionQuery = `SELECT q.id, q.quiz_id, q.points
        FROM questions q
        JOIN quizzes z ON z.id = q.quiz_id
        WHERE z.course_id = $1 ORDER BY q.quiz_id, q.id`
	var questions []models.Question
	if err := r.db.SelectContext(ctx, &questions, questionQuery, courseID); err != nil {
		return nil, fmt.Errorf("list quiz questions: %w", err)
	}

	byQuiz := make(map[int64][]models.Question, len(quizzes))
	for _, question := range questions {
		byQuiz[question.QuizID] = append(byQuiz[question.QuizID], question)
	}
	for i := range quizzes {
		quizzes[i].Questions = byQuiz[quizzes[i].ID]
	}
	return quizzes, nil
}

// ListSubmissions returns graded submissions for the course, oldest first.
// Rows lacking a score or submission time are filtered in SQL: ungraded
// attempts never reach the engine.
func (r *QuizRepository) ListSubmissions(ctx context.Context, courseID int64) ([]models.Submission, error) {
	const query = `SELECT s.id, s.user_id, s.quiz_id, s.score, s.submitted_at
        FROM submissions s
        JOIN quizzes z ON z.id = s.quiz_id
        WHERE z.course_id = $1 AND s.score IS NOT NULL AND s.submitted_at IS NOT NULL
        ORDER BY s.submitted_at ASC`
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, courseID); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return submissions, nil
}
