package database

import (
	"context"

	"swapmeet/internal/models"

	"github.com/google/uuid"
)

// Store defines the common interface for persistence operations.
// MongoDB, PostgreSQL and in-memory backends implement it.
//
// Note on messages: a receiver id is not verified against the users
// table before a message is written. The caller is expected to have
// validated the recipient; a dangling reference is accepted behavior.
type Store interface {
	// Connection
	Close(ctx context.Context) error
	Ping(ctx context.Context) error

	// User methods
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SearchUsers(ctx context.Context, query string, limit, offset int) ([]*models.User, error)
	CountUsers(ctx context.Context) (int, error)

	// Presence methods. SetUserPresence writes the explicit flag and
	// refreshes last_seen_at; TouchUser refreshes last_seen_at only, and
	// only while the stored flag is true. Both are single-row updates,
	// last-write-wins under concurrency.
	SetUserPresence(ctx context.Context, id uuid.UUID, online bool) error
	TouchUser(ctx context.Context, id uuid.UUID) error

	// Message methods. Messages are append-only. Both orderings use
	// (created_at, id) so results are deterministic under equal
	// timestamps.
	SaveMessage(ctx context.Context, msg *models.Message) error
	GetMessagesBetweenUsers(ctx context.Context, userA, userB uuid.UUID) ([]*models.Message, error)
	GetMessagesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Message, error)
	CountMessages(ctx context.Context) (int, error)
}
