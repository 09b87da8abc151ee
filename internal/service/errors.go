package service

import (
	"errors"
	"fmt"
	"strings"

	"coursehub/internal/repository"
)

var (
	// ErrValidation marks a missing or empty required field.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a target row that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks a target row the caller does not own.
	ErrForbidden = errors.New("forbidden")
	// ErrExportDisabled is returned when no object store is configured.
	ErrExportDisabled = errors.New("outline export is not configured")
)

// requireText fails with ErrValidation when any of the named values is blank.
func requireText(fields ...[2]string) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

func requireID(name string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s required", ErrValidation, name)
	}
	return nil
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrNotOwner):
		return ErrForbidden
	default:
		return err
	}
}
