package actors

import (
	"context"
	"errors"
	"testing"
	"time"

	"swapmeet/internal/database"
	"swapmeet/internal/models"
	"swapmeet/internal/types"
	"swapmeet/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func spawnUserActor(t *testing.T, store database.Store) (*actor.ActorSystem, *actor.PID) {
	t.Helper()
	system := actor.NewActorSystem()
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewUserActor(store, utils.NewMetricsCollector())
	})
	return system, system.Root.Spawn(props)
}

func TestUserRegistration(t *testing.T) {
	store := database.NewMemoryDB()
	system, pid := spawnUserActor(t, store)

	future := system.Root.RequestFuture(pid, &RegisterUserMsg{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hunter22",
	}, 10*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)

	user, ok := result.(*models.User)
	if !ok {
		t.Fatalf("expected *models.User, got %T", result)
	}
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.False(t, user.IsOnline)

	// Same email registers only once.
	future = system.Root.RequestFuture(pid, &RegisterUserMsg{
		Name:     "Impostor",
		Email:    "alice@example.com",
		Password: "hunter23",
	}, 10*time.Second)
	result, err = future.Result()
	assert.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	if !ok {
		t.Fatalf("expected *utils.AppError, got %T", result)
	}
	assert.Equal(t, utils.ErrUserAlreadyExists, appErr.Code)
}

// emailLookupFailingStore fails the by-email read the way a broken
// backend would.
type emailLookupFailingStore struct {
	*database.MemoryDB
}

func (s emailLookupFailingStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, utils.NewDatabaseError("connection reset", errors.New("connection reset"))
}

func TestRegistrationStoreFailure(t *testing.T) {
	store := emailLookupFailingStore{MemoryDB: database.NewMemoryDB()}
	system, pid := spawnUserActor(t, store)

	// A store failure during the duplicate check must not read as
	// "email free" and fall through to the insert.
	future := system.Root.RequestFuture(pid, &RegisterUserMsg{
		Name:     "Eve",
		Email:    "eve@example.com",
		Password: "hunter24",
	}, 10*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)

	appErr, ok := result.(*utils.AppError)
	if !ok {
		t.Fatalf("expected *utils.AppError, got %T", result)
	}
	assert.Equal(t, utils.ErrDatabase, appErr.Code)

	count, err := store.CountUsers(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestLoginLogoutPresence(t *testing.T) {
	store := database.NewMemoryDB()
	system, pid := spawnUserActor(t, store)

	future := system.Root.RequestFuture(pid, &RegisterUserMsg{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "correct horse",
	}, 10*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)
	registered := result.(*models.User)

	// Wrong password fails without a token.
	future = system.Root.RequestFuture(pid, &LoginMsg{
		Email:    "bob@example.com",
		Password: "wrong horse",
	}, 10*time.Second)
	result, err = future.Result()
	assert.NoError(t, err)
	response := result.(*types.LoginResponse)
	assert.False(t, response.Success)
	assert.Empty(t, response.Token)

	stored, err := store.GetUser(context.Background(), registered.ID)
	assert.NoError(t, err)
	assert.False(t, stored.IsOnline)

	// Successful login issues a token and marks the user online.
	future = system.Root.RequestFuture(pid, &LoginMsg{
		Email:    "bob@example.com",
		Password: "correct horse",
	}, 10*time.Second)
	result, err = future.Result()
	assert.NoError(t, err)
	response = result.(*types.LoginResponse)
	assert.True(t, response.Success)
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, registered.ID.String(), response.UserID)

	stored, err = store.GetUser(context.Background(), registered.ID)
	assert.NoError(t, err)
	assert.True(t, stored.IsOnline)
	if assert.NotNil(t, stored.LastSeenAt) {
		assert.WithinDuration(t, time.Now(), *stored.LastSeenAt, 5*time.Second)
	}

	// Logout flips the flag back.
	future = system.Root.RequestFuture(pid, &LogoutMsg{UserID: registered.ID}, 10*time.Second)
	_, err = future.Result()
	assert.NoError(t, err)

	stored, err = store.GetUser(context.Background(), registered.ID)
	assert.NoError(t, err)
	assert.False(t, stored.IsOnline)
}

func TestSetPresence(t *testing.T) {
	store := database.NewMemoryDB()
	system, pid := spawnUserActor(t, store)

	userID := uuid.New()
	assert.NoError(t, store.SaveUser(context.Background(), &models.User{
		ID:    userID,
		Name:  "Carol",
		Email: "carol@example.com",
	}))

	future := system.Root.RequestFuture(pid, &SetPresenceMsg{UserID: userID, Online: true}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)
	user := result.(*models.User)
	assert.True(t, user.IsOnline)
	assert.NotNil(t, user.LastSeenAt)

	future = system.Root.RequestFuture(pid, &SetPresenceMsg{UserID: userID, Online: false}, 5*time.Second)
	result, err = future.Result()
	assert.NoError(t, err)
	user = result.(*models.User)
	assert.False(t, user.IsOnline)

	// Unknown users are reported, not invented.
	future = system.Root.RequestFuture(pid, &SetPresenceMsg{UserID: uuid.New(), Online: true}, 5*time.Second)
	result, err = future.Result()
	assert.NoError(t, err)
	appErr, ok := result.(*utils.AppError)
	if !ok {
		t.Fatalf("expected *utils.AppError, got %T", result)
	}
	assert.Equal(t, utils.ErrUserNotFound, appErr.Code)
}

func TestTouchRefreshesOnlyWhileOnline(t *testing.T) {
	store := database.NewMemoryDB()
	system, pid := spawnUserActor(t, store)

	userID := uuid.New()
	assert.NoError(t, store.SaveUser(context.Background(), &models.User{
		ID:    userID,
		Name:  "Dave",
		Email: "dave@example.com",
	}))

	// Offline: touches are ignored.
	system.Root.Send(pid, &TouchUserMsg{UserID: userID})

	assert.Never(t, func() bool {
		user, err := store.GetUser(context.Background(), userID)
		return err == nil && user.LastSeenAt != nil
	}, 300*time.Millisecond, 50*time.Millisecond)

	// Online: touches move the activity marker forward.
	future := system.Root.RequestFuture(pid, &SetPresenceMsg{UserID: userID, Online: true}, 5*time.Second)
	_, err := future.Result()
	assert.NoError(t, err)

	before, err := store.GetUser(context.Background(), userID)
	assert.NoError(t, err)
	assert.NotNil(t, before.LastSeenAt)

	time.Sleep(20 * time.Millisecond)
	system.Root.Send(pid, &TouchUserMsg{UserID: userID})

	assert.Eventually(t, func() bool {
		user, err := store.GetUser(context.Background(), userID)
		return err == nil && user.LastSeenAt != nil && user.LastSeenAt.After(*before.LastSeenAt)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestUserSearch(t *testing.T) {
	store := database.NewMemoryDB()
	system, pid := spawnUserActor(t, store)

	assert.NoError(t, store.SaveUser(context.Background(), &models.User{
		ID: uuid.New(), Name: "Erin Fisher", Email: "erin@example.com", CreatedAt: time.Now(),
	}))
	assert.NoError(t, store.SaveUser(context.Background(), &models.User{
		ID: uuid.New(), Name: "Frank Fisher", Email: "frank@example.com", CreatedAt: time.Now().Add(time.Second),
	}))
	assert.NoError(t, store.SaveUser(context.Background(), &models.User{
		ID: uuid.New(), Name: "Grace", Email: "grace@example.com", CreatedAt: time.Now().Add(2 * time.Second),
	}))

	future := system.Root.RequestFuture(pid, &SearchUsersMsg{Query: "fisher"}, 5*time.Second)
	result, err := future.Result()
	assert.NoError(t, err)

	users := result.([]*models.User)
	assert.Len(t, users, 2)
	for _, user := range users {
		assert.Contains(t, user.Name, "Fisher")
	}
}
