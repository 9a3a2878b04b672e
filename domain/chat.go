package domain

import (
	"time"

	"github.com/google/uuid"
)

// Chat is a two-party conversation. Members holds exactly the two participants
// allowed to access it; there is no ordering beyond set membership.
type Chat struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	Members   []uuid.UUID
}

// HasMember reports whether the user belongs to the chat.
func (c Chat) HasMember(userID uuid.UUID) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}
