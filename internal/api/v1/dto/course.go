package dto

import "coursehub/internal/model"

// CourseCreateDTO is the POST /api/saveCourse body
type CourseCreateDTO struct {
	Title       string  `json:"title" validate:"notblank"`
	Description *string `json:"description"`
}

// CourseUpdateDTO is the PUT /api/saveCourse body. An omitted description
// clears the stored one.
type CourseUpdateDTO struct {
	ID          int64   `json:"id" validate:"required,gt=0"`
	Title       string  `json:"title" validate:"notblank"`
	Description *string `json:"description"`
}

// CourseListItemDTO is one entry of GET /api/getCourses
type CourseListItemDTO = model.CourseWithOwner
