package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message between two users. Rows are append-only:
// there is no update or delete path anywhere in the system.
type Message struct {
	ID         uuid.UUID `json:"id" db:"id"`
	SenderID   uuid.UUID `json:"senderId" db:"sender_id"`
	ReceiverID uuid.UUID `json:"receiverId" db:"receiver_id"`
	Text       string    `json:"text" db:"text"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
