package database

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"swapmeet/internal/models"
	"swapmeet/internal/utils"

	"github.com/google/uuid"
)

// MemoryDB is an in-memory Store used for local development and tests.
// It honors the same ordering rules as the persistent adapters:
// messages sort by (createdAt, id).
type MemoryDB struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]*models.User
	messages []*models.Message
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		users: make(map[uuid.UUID]*models.User),
	}
}

func (m *MemoryDB) Close(ctx context.Context) error { return nil }
func (m *MemoryDB) Ping(ctx context.Context) error  { return nil }

func (m *MemoryDB) SaveUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, existing := range m.users {
		if existing.Email == user.Email && id != user.ID {
			return utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", nil)
		}
	}

	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MemoryDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	copied := *user
	return &copied, nil
}

func (m *MemoryDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
}

func (m *MemoryDB) SearchUsers(ctx context.Context, query string, limit, offset int) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []*models.User
	needle := strings.ToLower(query)
	for _, user := range m.users {
		if query == "" || strings.Contains(strings.ToLower(user.Name), needle) {
			copied := *user
			matched = append(matched, &copied)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (m *MemoryDB) CountUsers(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

func (m *MemoryDB) SetUserPresence(ctx context.Context, id uuid.UUID, online bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return utils.NewAppError(utils.ErrUserNotFound, "User not found", nil)
	}
	now := time.Now()
	user.IsOnline = online
	user.LastSeenAt = &now
	return nil
}

func (m *MemoryDB) TouchUser(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok || !user.IsOnline {
		// Offline or unknown users are not refreshed by a touch.
		return nil
	}
	now := time.Now()
	user.LastSeenAt = &now
	return nil
}

func (m *MemoryDB) SaveMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *msg
	m.messages = append(m.messages, &copied)
	return nil
}

func (m *MemoryDB) GetMessagesBetweenUsers(ctx context.Context, userA, userB uuid.UUID) ([]*models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var messages []*models.Message
	for _, msg := range m.messages {
		if (msg.SenderID == userA && msg.ReceiverID == userB) ||
			(msg.SenderID == userB && msg.ReceiverID == userA) {
			copied := *msg
			messages = append(messages, &copied)
		}
	}

	sortMessages(messages, true)
	return messages, nil
}

func (m *MemoryDB) GetMessagesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var messages []*models.Message
	for _, msg := range m.messages {
		if msg.SenderID == userID || msg.ReceiverID == userID {
			copied := *msg
			messages = append(messages, &copied)
		}
	}

	sortMessages(messages, false)
	return messages, nil
}

func (m *MemoryDB) CountMessages(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.messages), nil
}

// sortMessages orders by (createdAt, id), ascending or descending,
// matching the persistent adapters.
func sortMessages(messages []*models.Message, ascending bool) {
	sort.SliceStable(messages, func(i, j int) bool {
		a, b := messages[i], messages[j]
		if !ascending {
			a, b = b, a
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return bytes.Compare(a.ID[:], b.ID[:]) < 0
	})
}
