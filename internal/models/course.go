package models

// Course carries the catalog shape the engine needs: identity and how many
// lessons are assignable.
type Course struct {
	ID          int64  `db:"id" json:"id"`
	Title       string `db:"title" json:"title"`
	LessonCount int    `db:"lesson_count" json:"lesson_count"`
}

// LessonCompletion is one (user, lesson) progress row. Rows are distinct by
// pair before counting so duplicate touch events never double count.
type LessonCompletion struct {
	UserID      int64 `db:"user_id" json:"user_id"`
	LessonID    int64 `db:"lesson_id" json:"lesson_id"`
	IsCompleted bool  `db:"is_completed" json:"is_completed"`
}
