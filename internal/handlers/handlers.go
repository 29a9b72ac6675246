package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"swapmeet/internal/database"
	"swapmeet/internal/engine"
	"swapmeet/internal/engine/actors"
	"swapmeet/internal/middleware"
	"swapmeet/internal/models"
	"swapmeet/internal/presence"
	"swapmeet/internal/utils"
	"swapmeet/internal/websocket"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
)

// Server holds all server dependencies, including the actor system and engine
type Server struct {
	System          *actor.ActorSystem
	Context         *actor.RootContext
	Engine          *engine.Engine
	Metrics         *utils.MetricsCollector
	Store           database.Store
	Hub             *websocket.Hub
	PresenceTimeout time.Duration
	RequestTimeout  time.Duration
}

// NewServer creates a new Server instance with the given components
func NewServer(
	system *actor.ActorSystem,
	eng *engine.Engine,
	metrics *utils.MetricsCollector,
	store database.Store,
	hub *websocket.Hub,
	presenceTimeout time.Duration,
) *Server {
	return &Server{
		System:          system,
		Context:         system.Root,
		Engine:          eng,
		Metrics:         metrics,
		Store:           store,
		Hub:             hub,
		PresenceTimeout: presenceTimeout,
		RequestTimeout:  5 * time.Second, // Default timeout for actor requests
	}
}

// Protect wraps a handler with JWT authentication. Every successfully
// authenticated request also refreshes the caller's last-seen timestamp,
// fire-and-forget, independent of the operation itself.
func (s *Server) Protect(path string, handler http.HandlerFunc) http.HandlerFunc {
	return middleware.ApplyJWTMiddleware(handler, path, func(userID uuid.UUID) {
		s.Context.Send(s.Engine.GetUserActor(), &actors.TouchUserMsg{UserID: userID})
	})
}

// UserResponse is the user-shaped payload leaving the system. Presence
// on it is always the effective, decayed value, never the raw flag.
type UserResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	IsOnline   bool       `json:"isOnline"`
	LastSeenAt *time.Time `json:"lastSeenAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (s *Server) userResponse(user *models.User, now time.Time) *UserResponse {
	snap := presence.Effective(user.IsOnline, user.LastSeenAt, now, s.PresenceTimeout)
	return &UserResponse{
		ID:         user.ID.String(),
		Name:       user.Name,
		Email:      user.Email,
		IsOnline:   snap.IsOnline,
		LastSeenAt: snap.LastSeenAt,
		CreatedAt:  user.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError sends the JSON error body used across the API. No stack
// traces or internal identifiers.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeAppError maps an application error onto its HTTP status.
func writeAppError(w http.ResponseWriter, appErr *utils.AppError) {
	writeError(w, utils.AppErrorToHTTPStatus(appErr.Code), appErr.Message)
}
