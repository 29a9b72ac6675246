package database

import (
	"context"
	"testing"
	"time"

	"swapmeet/internal/models"
	"swapmeet/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMemoryDBUserLifecycle(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	userID := uuid.New()
	assert.NoError(t, db.SaveUser(ctx, &models.User{
		ID: userID, Name: "Alice", Email: "alice@example.com", CreatedAt: time.Now(),
	}))

	// Duplicate email is rejected for a different id.
	err := db.SaveUser(ctx, &models.User{
		ID: uuid.New(), Name: "Other", Email: "alice@example.com",
	})
	assert.True(t, utils.IsErrorCode(err, utils.ErrUserAlreadyExists))

	// Re-saving the same user is an update, not a duplicate.
	assert.NoError(t, db.SaveUser(ctx, &models.User{
		ID: userID, Name: "Alice Updated", Email: "alice@example.com",
	}))

	user, err := db.GetUser(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, "Alice Updated", user.Name)

	_, err = db.GetUser(ctx, uuid.New())
	assert.True(t, utils.IsErrorCode(err, utils.ErrUserNotFound))
}

func TestMemoryDBTouchSemantics(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	userID := uuid.New()
	assert.NoError(t, db.SaveUser(ctx, &models.User{
		ID: userID, Name: "Bob", Email: "bob@example.com",
	}))

	// Touching an offline user changes nothing.
	assert.NoError(t, db.TouchUser(ctx, userID))
	user, err := db.GetUser(ctx, userID)
	assert.NoError(t, err)
	assert.Nil(t, user.LastSeenAt)

	// Going online stamps the activity marker.
	assert.NoError(t, db.SetUserPresence(ctx, userID, true))
	user, err = db.GetUser(ctx, userID)
	assert.NoError(t, err)
	if !assert.NotNil(t, user.LastSeenAt) {
		return
	}
	first := *user.LastSeenAt

	// Touching while online moves it forward.
	time.Sleep(5 * time.Millisecond)
	assert.NoError(t, db.TouchUser(ctx, userID))
	user, err = db.GetUser(ctx, userID)
	assert.NoError(t, err)
	assert.True(t, user.LastSeenAt.After(first))

	// Going offline does not clear the marker, and later touches stop
	// refreshing it.
	assert.NoError(t, db.SetUserPresence(ctx, userID, false))
	user, err = db.GetUser(ctx, userID)
	assert.NoError(t, err)
	assert.False(t, user.IsOnline)
	offlineStamp := *user.LastSeenAt

	time.Sleep(5 * time.Millisecond)
	assert.NoError(t, db.TouchUser(ctx, userID))
	user, err = db.GetUser(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, offlineStamp, *user.LastSeenAt)

	// Unknown users: explicit transitions fail, touches do not.
	assert.True(t, utils.IsErrorCode(db.SetUserPresence(ctx, uuid.New(), true), utils.ErrUserNotFound))
	assert.NoError(t, db.TouchUser(ctx, uuid.New()))
}

func TestMemoryDBMessageOrdering(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	userA := uuid.New()
	userB := uuid.New()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	save := func(id string, from, to uuid.UUID, text string, at time.Time) {
		assert.NoError(t, db.SaveMessage(ctx, &models.Message{
			ID: uuid.MustParse(id), SenderID: from, ReceiverID: to, Text: text, CreatedAt: at,
		}))
	}

	// Inserted out of order, with a timestamp collision between the first
	// two; the id breaks the tie.
	save("00000000-0000-0000-0000-000000000002", userB, userA, "tie high", at)
	save("00000000-0000-0000-0000-000000000001", userA, userB, "tie low", at)
	save("00000000-0000-0000-0000-000000000003", userA, userB, "later", at.Add(time.Second))

	between, err := db.GetMessagesBetweenUsers(ctx, userA, userB)
	assert.NoError(t, err)
	assert.Len(t, between, 3)
	assert.Equal(t, "tie low", between[0].Text)
	assert.Equal(t, "tie high", between[1].Text)
	assert.Equal(t, "later", between[2].Text)

	// Symmetric in its arguments.
	reversed, err := db.GetMessagesBetweenUsers(ctx, userB, userA)
	assert.NoError(t, err)
	assert.Equal(t, between, reversed)

	// The per-user stream is the same ordering, reversed.
	byUser, err := db.GetMessagesByUser(ctx, userA)
	assert.NoError(t, err)
	assert.Len(t, byUser, 3)
	assert.Equal(t, "later", byUser[0].Text)
	assert.Equal(t, "tie high", byUser[1].Text)
	assert.Equal(t, "tie low", byUser[2].Text)

	// Messages with third parties stay out of the pair's history.
	save("00000000-0000-0000-0000-000000000004", userA, uuid.New(), "elsewhere", at.Add(2*time.Second))
	between, err = db.GetMessagesBetweenUsers(ctx, userA, userB)
	assert.NoError(t, err)
	assert.Len(t, between, 3)
}

func TestMemoryDBSearchUsers(t *testing.T) {
	db := NewMemoryDB()
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	names := []string{"Ann Fisher", "Ben Fisher", "Cal Fisher", "Dora"}
	for i, name := range names {
		assert.NoError(t, db.SaveUser(ctx, &models.User{
			ID:        uuid.New(),
			Name:      name,
			Email:     name + "@example.com",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	// Case-insensitive match, newest account first.
	users, err := db.SearchUsers(ctx, "FISHER", 10, 0)
	assert.NoError(t, err)
	assert.Len(t, users, 3)
	assert.Equal(t, "Cal Fisher", users[0].Name)

	// Pagination.
	users, err = db.SearchUsers(ctx, "fisher", 2, 0)
	assert.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = db.SearchUsers(ctx, "fisher", 2, 2)
	assert.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, "Ann Fisher", users[0].Name)

	// Offset past the result set is empty, not an error.
	users, err = db.SearchUsers(ctx, "fisher", 2, 10)
	assert.NoError(t, err)
	assert.Empty(t, users)
}
