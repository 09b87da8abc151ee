package model

import "time"

// Lesson belongs to exactly one course and has no owner of its own.
type Lesson struct {
	ID        int64     `db:"id" json:"id"`
	CourseID  int64     `db:"course_id" json:"courseId"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
