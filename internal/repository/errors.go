package repository

import "errors"

var (
	// ErrNotFound is returned when the targeted row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNotOwner is returned when the row exists but belongs to another user.
	ErrNotOwner = errors.New("record not owned by user")
)
