package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/insight-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestActivityRepositoryListEventsByCourseAndTypes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	occurred := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "course_id", "lesson_id", "event_type", "occurred_at", "metadata"}).
		AddRow(1, 7, 3, nil, models.EventLessonOpen, occurred, nil).
		AddRow(2, 7, 3, nil, models.EventTabOut, occurred.Add(20*time.Minute), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, course_id, lesson_id, event_type, occurred_at, metadata FROM activity_events WHERE 1=1 AND course_id = $1 AND event_type IN ($2,$3) AND occurred_at >= $4 ORDER BY occurred_at ASC")).
		WithArgs(int64(3), models.EventLessonOpen, models.EventTabOut, occurred.Add(-24*time.Hour)).
		WillReturnRows(rows)

	events, err := repo.ListEvents(context.Background(), models.ActivityFilter{
		CourseID: 3,
		Types:    []models.EventType{models.EventLessonOpen, models.EventTabOut},
		From:     occurred.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, models.EventLessonOpen, events[0].EventType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryListEventsForUser(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "course_id", "lesson_id", "event_type", "occurred_at", "metadata"})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, user_id, course_id, lesson_id, event_type, occurred_at, metadata FROM activity_events WHERE 1=1 AND course_id = $1 AND user_id = $2 ORDER BY occurred_at ASC")).
		WithArgs(int64(3), int64(7)).
		WillReturnRows(rows)

	events, err := repo.ListEvents(context.Background(), models.ActivityFilter{CourseID: 3, UserID: 7})
	require.NoError(t, err)
	require.Empty(t, events)
	require.NoError(t, mock.ExpectationsWereMet())
}
