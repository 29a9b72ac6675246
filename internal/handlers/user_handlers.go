package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"swapmeet/internal/engine/actors"
	"swapmeet/internal/middleware"
	"swapmeet/internal/models"
	"swapmeet/internal/presence"
	"swapmeet/internal/types"
	"swapmeet/internal/utils"

	"github.com/google/uuid"
)

// RegisterUserRequest represents a registration request
type RegisterUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SetPresenceRequest carries the explicit presence transition.
type SetPresenceRequest struct {
	Status string `json:"status"` // "online" or "offline"
}

// HandleUserRegistration creates a new account.
func (s *Server) HandleUserRegistration() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var req RegisterUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Name == "" || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Missing fields")
			return
		}

		msg := &actors.RegisterUserMsg{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		}

		future := s.Context.RequestFuture(s.Engine.GetUserActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			s.Metrics.IncrementErrors()
			writeError(w, http.StatusInternalServerError, "Failed to register user")
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			writeAppError(w, appErr)
			return
		}

		user, ok := result.(*models.User)
		if !ok {
			writeError(w, http.StatusInternalServerError, "Failed to register user")
			return
		}

		writeJSON(w, http.StatusCreated, s.userResponse(user, time.Now()))
	}
}

// HandleUserLogin verifies credentials, issues a token and flips the
// explicit presence flag to online.
func (s *Server) HandleUserLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Missing fields")
			return
		}

		msg := &actors.LoginMsg{
			Email:    req.Email,
			Password: req.Password,
		}

		future := s.Context.RequestFuture(s.Engine.GetUserActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			s.Metrics.IncrementErrors()
			writeError(w, http.StatusInternalServerError, "Login failed")
			return
		}

		loginResponse, ok := result.(*types.LoginResponse)
		if !ok {
			writeError(w, http.StatusInternalServerError, "Login failed")
			return
		}

		if !loginResponse.Success {
			writeError(w, http.StatusUnauthorized, loginResponse.Error)
			return
		}

		writeJSON(w, http.StatusOK, loginResponse)
	}
}

// HandleUserLogout flips the caller's explicit presence flag to offline.
func (s *Server) HandleUserLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		future := s.Context.RequestFuture(s.Engine.GetUserActor(), &actors.LogoutMsg{UserID: userID}, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			s.Metrics.IncrementErrors()
			writeError(w, http.StatusInternalServerError, "Logout failed")
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			writeAppError(w, appErr)
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

// HandleUserProfile returns a user's public profile with effective
// presence.
func (s *Server) HandleUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		rawID := r.URL.Query().Get("userId")
		if rawID == "" {
			writeError(w, http.StatusBadRequest, "User ID required")
			return
		}

		userID, err := uuid.Parse(rawID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		future := s.Context.RequestFuture(s.Engine.GetUserActor(), &actors.GetUserProfileMsg{UserID: userID}, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			s.Metrics.IncrementErrors()
			writeError(w, http.StatusInternalServerError, "Failed to get profile")
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			writeAppError(w, appErr)
			return
		}

		user, ok := result.(*models.User)
		if !ok {
			writeError(w, http.StatusInternalServerError, "Failed to get profile")
			return
		}

		writeJSON(w, http.StatusOK, s.userResponse(user, time.Now()))
	}
}

// HandleUserSearch lists users matching a name query, paginated. Every
// row carries effective presence.
func (s *Server) HandleUserSearch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		msg := &actors.SearchUsersMsg{
			Query: r.URL.Query().Get("search"),
			Page:  page,
			Limit: limit,
		}

		future := s.Context.RequestFuture(s.Engine.GetUserActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			s.Metrics.IncrementErrors()
			writeError(w, http.StatusInternalServerError, "Failed to search users")
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			writeAppError(w, appErr)
			return
		}

		users, ok := result.([]*models.User)
		if !ok {
			writeError(w, http.StatusInternalServerError, "Failed to search users")
			return
		}

		now := time.Now()
		response := make([]*UserResponse, 0, len(users))
		for _, user := range users {
			response = append(response, s.userResponse(user, now))
		}

		writeJSON(w, http.StatusOK, response)
	}
}

// HandleUserPresence sets the caller's explicit presence flag and
// responds with the resulting effective snapshot.
func (s *Server) HandleUserPresence() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req SetPresenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Status != "online" && req.Status != "offline" {
			writeError(w, http.StatusBadRequest, "Invalid status")
			return
		}

		msg := &actors.SetPresenceMsg{
			UserID: userID,
			Online: req.Status == "online",
		}

		future := s.Context.RequestFuture(s.Engine.GetUserActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			s.Metrics.IncrementErrors()
			writeError(w, http.StatusInternalServerError, "Failed to update presence")
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			writeAppError(w, appErr)
			return
		}

		user, ok := result.(*models.User)
		if !ok {
			writeError(w, http.StatusInternalServerError, "Failed to update presence")
			return
		}

		snap := presence.Effective(user.IsOnline, user.LastSeenAt, time.Now(), s.PresenceTimeout)
		writeJSON(w, http.StatusOK, snap)
	}
}
