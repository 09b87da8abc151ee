package model

import "github.com/google/uuid"

// Owner is the public part of a users row attached to listed courses. Users
// are written by the identity provider and only read here. Email is nil when
// the owner has no row in users.
type Owner struct {
	ID    uuid.UUID `json:"id"`
	Email *string   `json:"email"`
}
