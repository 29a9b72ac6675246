package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered marketplace member. IsOnline is the explicit flag
// written by login/logout only; it must never be surfaced on its own but
// always combined with LastSeenAt through the presence decay rule.
type User struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	Email          string     `json:"email" db:"email"`
	HashedPassword string     `json:"-" db:"password_hash"`
	IsOnline       bool       `json:"isOnline" db:"is_online"`
	LastSeenAt     *time.Time `json:"lastSeenAt" db:"last_seen_at"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
}
