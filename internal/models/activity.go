package models

import (
	"encoding/json"
	"time"
)

// EventType enumerates the closed set of tracked learner actions.
type EventType string

const (
	EventLogin      EventType = "LOGIN"
	EventLessonOpen EventType = "LESSON_OPEN"
	EventQuizStart  EventType = "QUIZ_START"
	EventQuizSubmit EventType = "QUIZ_SUBMIT"
	EventTabOut     EventType = "TAB_OUT"
	EventIdle       EventType = "IDLE"
)

// Valid reports whether the event type belongs to the known enumeration.
func (t EventType) Valid() bool {
	switch t {
	case EventLogin, EventLessonOpen, EventQuizStart, EventQuizSubmit, EventTabOut, EventIdle:
		return true
	default:
		return false
	}
}

// ActivityEvent is one immutable, timestamped learner action. Events are
// append-only and ordered by occurred_at.
type ActivityEvent struct {
	ID         int64           `db:"id" json:"id"`
	UserID     int64           `db:"user_id" json:"user_id"`
	CourseID   *int64          `db:"course_id" json:"course_id,omitempty"`
	LessonID   *int64          `db:"lesson_id" json:"lesson_id,omitempty"`
	EventType  EventType       `db:"event_type" json:"event_type"`
	OccurredAt time.Time       `db:"occurred_at" json:"occurred_at"`
	Metadata   json.RawMessage `db:"metadata" json:"metadata,omitempty"`
}

// ActivityFilter scopes activity event queries. UserID of zero means the
// whole course roster; an empty Types slice means all event types.
type ActivityFilter struct {
	CourseID int64
	UserID   int64
	Types    []EventType
	From     time.Time
	To       time.Time
}
