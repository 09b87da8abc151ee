package dto

import (
	"time"

	"coursehub/internal/model"
)

type OutlineCreateDTO struct {
	Title       string  `json:"title" validate:"notblank"`
	Description *string `json:"description"`
	Content     string  `json:"content" validate:"notblank"`
}

type OutlineUpdateDTO struct {
	ID          int64   `json:"id" validate:"required,gt=0"`
	Title       string  `json:"title" validate:"notblank"`
	Description *string `json:"description"`
	Content     string  `json:"content" validate:"notblank"`
}

type OutlineResponseDTO = model.Outline

// OutlineExportResponseDTO is returned by GET /api/exportOutline
type OutlineExportResponseDTO struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
