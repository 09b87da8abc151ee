package dto

import "coursehub/internal/model"

type LessonCreateDTO struct {
	CourseID int64  `json:"courseId" validate:"required,gt=0"`
	Title    string `json:"title" validate:"notblank"`
	Content  string `json:"content" validate:"notblank"`
}

type LessonUpdateDTO struct {
	ID       int64  `json:"id" validate:"required,gt=0"`
	CourseID int64  `json:"courseId" validate:"required,gt=0"`
	Title    string `json:"title" validate:"notblank"`
	Content  string `json:"content" validate:"notblank"`
}

type LessonResponseDTO = model.Lesson
