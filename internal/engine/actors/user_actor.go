package actors

import (
	"log"
	"time"

	stdctx "context"

	"swapmeet/internal/database"
	"swapmeet/internal/middleware"
	"swapmeet/internal/models"
	"swapmeet/internal/types"
	"swapmeet/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Message types for UserActor
type (
	RegisterUserMsg struct {
		Name     string
		Email    string
		Password string
	}

	LoginMsg struct {
		Email    string
		Password string
	}

	LogoutMsg struct {
		UserID uuid.UUID
	}

	GetUserProfileMsg struct {
		UserID uuid.UUID
	}

	SearchUsersMsg struct {
		Query string
		Page  int
		Limit int
	}

	// SetPresenceMsg writes the explicit presence flag. Only login,
	// logout and the presence endpoint send it.
	SetPresenceMsg struct {
		UserID uuid.UUID
		Online bool
	}

	// TouchUserMsg refreshes the caller's last-seen timestamp; sent
	// fire-and-forget on every authenticated request.
	TouchUserMsg struct {
		UserID uuid.UUID
	}
)

// UserActor manages accounts and the stored side of presence. User
// state lives entirely in the store; the actor serializes access the
// same way the message actor does.
type UserActor struct {
	store   database.Store
	metrics *utils.MetricsCollector
}

func NewUserActor(store database.Store, metrics *utils.MetricsCollector) actor.Actor {
	return &UserActor{
		store:   store,
		metrics: metrics,
	}
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func (a *UserActor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *RegisterUserMsg:
		a.handleRegister(context, msg)
	case *LoginMsg:
		a.handleLogin(context, msg)
	case *LogoutMsg:
		a.handleLogout(context, msg)
	case *GetUserProfileMsg:
		a.handleGetProfile(context, msg)
	case *SearchUsersMsg:
		a.handleSearch(context, msg)
	case *SetPresenceMsg:
		a.handleSetPresence(context, msg)
	case *TouchUserMsg:
		ctx := stdctx.Background()
		if err := a.store.TouchUser(ctx, msg.UserID); err != nil {
			log.Printf("Warning: failed to touch user %s: %v", msg.UserID, err)
		}
	}
}

func (a *UserActor) handleRegister(context actor.Context, msg *RegisterUserMsg) {
	if msg.Name == "" || msg.Email == "" || msg.Password == "" {
		context.Respond(utils.NewValidationError("Missing fields"))
		return
	}

	ctx := stdctx.Background()
	existing, err := a.store.GetUserByEmail(ctx, msg.Email)
	if err != nil && !utils.IsErrorCode(err, utils.ErrUserNotFound) {
		context.Respond(utils.NewDatabaseError("Failed to check email", err))
		return
	}
	if existing != nil {
		log.Printf("Email already registered: %s", msg.Email)
		context.Respond(utils.NewAppError(utils.ErrUserAlreadyExists, "Email already registered", nil))
		return
	}

	hashedPassword, err := hashPassword(msg.Password)
	if err != nil {
		context.Respond(utils.NewAppError(utils.ErrInvalidInput, "Failed to hash password", err))
		return
	}

	user := &models.User{
		ID:             uuid.New(),
		Name:           msg.Name,
		Email:          msg.Email,
		HashedPassword: hashedPassword,
		IsOnline:       false,
		CreatedAt:      time.Now().UTC(),
	}

	if err := a.store.SaveUser(ctx, user); err != nil {
		log.Printf("Failed to save user: %v", err)
		if appErr, ok := err.(*utils.AppError); ok {
			context.Respond(appErr)
			return
		}
		context.Respond(utils.NewDatabaseError("Failed to save user", err))
		return
	}

	log.Printf("Successfully created user %s", user.ID)
	context.Respond(user)
}

func (a *UserActor) handleLogin(context actor.Context, msg *LoginMsg) {
	log.Printf("Processing login request for email: %s", msg.Email)

	ctx := stdctx.Background()
	user, err := a.store.GetUserByEmail(ctx, msg.Email)
	if err != nil {
		log.Printf("Login failed - user lookup: %v", err)
		context.Respond(&types.LoginResponse{
			Success: false,
			Error:   "Invalid credentials",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password)); err != nil {
		log.Printf("Login failed - password comparison: %v", err)
		context.Respond(&types.LoginResponse{
			Success: false,
			Error:   "Invalid credentials",
		})
		return
	}

	token, err := middleware.GenerateToken(user.ID)
	if err != nil {
		log.Printf("Failed to generate auth token: %v", err)
		context.Respond(&types.LoginResponse{
			Success: false,
			Error:   "Authentication error",
		})
		return
	}

	// Login is an explicit presence transition.
	if err := a.store.SetUserPresence(ctx, user.ID, true); err != nil {
		log.Printf("Warning: failed to update presence on login: %v", err)
	}

	log.Printf("Login successful for user: %s", user.Name)

	context.Respond(&types.LoginResponse{
		Success: true,
		Token:   token,
		UserID:  user.ID.String(),
	})
}

func (a *UserActor) handleLogout(context actor.Context, msg *LogoutMsg) {
	ctx := stdctx.Background()
	if err := a.store.SetUserPresence(ctx, msg.UserID, false); err != nil {
		if appErr, ok := err.(*utils.AppError); ok {
			context.Respond(appErr)
			return
		}
		context.Respond(utils.NewDatabaseError("Failed to update presence", err))
		return
	}
	context.Respond(true)
}

func (a *UserActor) handleGetProfile(context actor.Context, msg *GetUserProfileMsg) {
	ctx := stdctx.Background()
	user, err := a.store.GetUser(ctx, msg.UserID)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrUserNotFound) {
			context.Respond(utils.NewUserNotFoundError(msg.UserID.String()))
			return
		}
		context.Respond(utils.NewDatabaseError("Failed to fetch user", err))
		return
	}
	context.Respond(user)
}

func (a *UserActor) handleSearch(context actor.Context, msg *SearchUsersMsg) {
	limit := msg.Limit
	if limit <= 0 {
		limit = 20
	}
	page := msg.Page
	if page <= 0 {
		page = 1
	}

	ctx := stdctx.Background()
	users, err := a.store.SearchUsers(ctx, msg.Query, limit, (page-1)*limit)
	if err != nil {
		context.Respond(utils.NewDatabaseError("Failed to search users", err))
		return
	}

	if users == nil {
		users = []*models.User{}
	}
	context.Respond(users)
}

func (a *UserActor) handleSetPresence(context actor.Context, msg *SetPresenceMsg) {
	ctx := stdctx.Background()
	if err := a.store.SetUserPresence(ctx, msg.UserID, msg.Online); err != nil {
		if appErr, ok := err.(*utils.AppError); ok {
			context.Respond(appErr)
			return
		}
		context.Respond(utils.NewDatabaseError("Failed to update presence", err))
		return
	}

	user, err := a.store.GetUser(ctx, msg.UserID)
	if err != nil {
		context.Respond(utils.NewDatabaseError("Failed to fetch user", err))
		return
	}
	context.Respond(user)
}
