package model

import (
	"time"

	"github.com/google/uuid"
)

// Course is an owned container of lessons.
type Course struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description"`
	UserID      uuid.UUID `db:"user_id" json:"userId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// CourseWithOwner is a course joined with its owner's identity.
type CourseWithOwner struct {
	Course
	Owner Owner `json:"owner"`
}
