package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/lumenlearn/insight-api/internal/models"
)

// ActivityRepository reads the append-only activity event stream. The
// engine never writes events; ingestion belongs to the client-facing layer.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// ListEvents returns activity events matching the filter, sorted ascending
// by occurrence time. Session reconstruction depends on that ordering.
func (r *ActivityRepository) ListEvents(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityEvent, error) {
	var builder strings.Builder
	builder.WriteString("SELECT id, user_id, course_id, lesson_id, event_type, occurred_at, metadata FROM activity_events WHERE 1=1")
	var args []interface{}

	if filter.CourseID != 0 {
		args = append(args, filter.CourseID)
		builder.WriteString(fmt.Sprintf(" AND course_id = $%d", len(args)))
	}
	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		builder.WriteString(fmt.Sprintf(" AND user_id = $%d", len(args)))
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, eventType := range filter.Types {
			args = append(args, eventType)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		builder.WriteString(fmt.Sprintf(" AND event_type IN (%s)", strings.Join(placeholders, ",")))
	}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		builder.WriteString(fmt.Sprintf(" AND occurred_at >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		builder.WriteString(fmt.Sprintf(" AND occurred_at <= $%d", len(args)))
	}
	builder.WriteString(" ORDER BY occurred_at ASC")

	var events []models.ActivityEvent
	if err := r.db.SelectContext(ctx, &events, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list activity events: %w", err)
	}
	return events, nil
}
