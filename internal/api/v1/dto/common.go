package dto

import (
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// DeleteDTO is the DELETE body shared by every save endpoint
type DeleteDTO struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

// MessageResponseDTO acknowledges a deletion
type MessageResponseDTO struct {
	Message string `json:"message"`
}

// ErrorResponseDTO is the body of every non-2xx response
type ErrorResponseDTO struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewValidator returns a validator with the notblank rule registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}
