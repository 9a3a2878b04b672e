package domain

import (
	"time"

	"github.com/google/uuid"
)

// FileRef is a stored attachment's retrievable identifier, embedded in the
// message. Attachments live and die with the message creation call; they are
// never added or removed afterwards.
type FileRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Message belongs to exactly one chat and one sender. UpdatedAt stays nil until
// the first edit. Files keeps the upload order.
type Message struct {
	ID        uuid.UUID
	ChatID    uuid.UUID
	SenderID  uuid.UUID
	Content   string
	CreatedAt time.Time
	UpdatedAt *time.Time
	Files     []FileRef
}
