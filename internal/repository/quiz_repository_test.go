package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestQuizRepositoryListQuizzesAttachesQuestions(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewQuizRepository(db)

	quizRows := sqlmock.NewRows([]string{"id", "course_id", "title", "deadline"}).
		AddRow(1, 3, "Basics", nil).
		AddRow(2, 3, "Advanced", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, title, deadline FROM quizzes WHERE course_id = $1 ORDER BY id")).
		WithArgs(int64(3)).
		WillReturnRows(quizRows)

	questionRows := sqlmock.NewRows([]string{"id", "quiz_id", "points"}).
		AddRow(10, 1, 2.0).
		AddRow(11, 1, 3.0).
		AddRow(12, 2, 1.0)
	mock.ExpectQuery("SELECT q.id, q.quiz_id, q.points").
		WithArgs(int64(3)).
		WillReturnRows(questionRows)

	quizzes, err := repo.ListQuizzes(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, quizzes, 2)
	require.Len(t, quizzes[0].Questions, 2)
	require.Len(t, quizzes[1].Questions, 1)
	require.NotNil(t, quizzes[1].Deadline)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepositoryListQuizzesEmptyCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewQuizRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, title, deadline FROM quizzes WHERE course_id = $1 ORDER BY id")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "title", "deadline"}))

	quizzes, err := repo.ListQuizzes(context.Background(), 3)
	require.NoError(t, err)
	require.Empty(t, quizzes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizRepositoryListSubmissionsFiltersUngraded(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewQuizRepository(db)

	submitted := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "quiz_id", "score", "submitted_at"}).
		AddRow(1, 7, 1, 4.0, submitted)
	mock.ExpectQuery("SELECT s.id, s.user_id, s.quiz_id, s.score, s.submitted_at").
		WithArgs(int64(3)).
		WillReturnRows(rows)

	submissions, err := repo.ListSubmissions(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, submissions, 1)
	require.Equal(t, 4.0, submissions[0].Score)
	require.NoError(t, mock.ExpectationsWereMet())
}
