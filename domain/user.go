// Package domain contains the core entities of the messaging system.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is immutable after registration. PasswordHash is opaque to the rest of
// the system; only the auth package knows its format.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
