package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"swapmeet/internal/engine/actors"
	"swapmeet/internal/middleware"
	"swapmeet/internal/models"
	"swapmeet/internal/presence"
	"swapmeet/internal/utils"

	"github.com/google/uuid"
)

// SendMessageRequest represents a request to send a direct message.
// The sender is always the authenticated caller.
type SendMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Text       string `json:"text"`
}

// ConversationResponse is one per-partner summary row. Partner presence
// is the effective, decayed value.
type ConversationResponse struct {
	PartnerID         string     `json:"partnerId"`
	PartnerName       string     `json:"partnerName"`
	LastMessageText   string     `json:"lastMessageText"`
	LastMessageTime   time.Time  `json:"lastMessageTime"`
	PartnerIsOnline   bool       `json:"partnerIsOnline"`
	PartnerLastSeenAt *time.Time `json:"partnerLastSeenAt"`
}

// HandleSendMessage persists a message from the caller and notifies the
// recipient's live channel best-effort.
func (s *Server) HandleSendMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		senderID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.ReceiverID == "" || req.Text == "" {
			writeError(w, http.StatusBadRequest, "Missing fields")
			return
		}

		receiverID, err := uuid.Parse(req.ReceiverID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid receiverId")
			return
		}

		msg := &actors.CreateMessageMsg{
			SenderID:   senderID,
			ReceiverID: receiverID,
			Text:       req.Text,
		}

		future := s.Context.RequestFuture(s.Engine.GetMessageActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			s.Metrics.IncrementErrors()
			writeError(w, http.StatusInternalServerError, "Failed to send message")
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			writeAppError(w, appErr)
			return
		}

		writeJSON(w, http.StatusCreated, result)
	}
}

// HandleMessagesBetween returns the full ordered history between two
// users, symmetric in its arguments.
func (s *Server) HandleMessagesBetween() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		user1 := r.URL.Query().Get("user1Id")
		user2 := r.URL.Query().Get("user2Id")

		if user1 == "" || user2 == "" {
			writeError(w, http.StatusBadRequest, "Missing user IDs")
			return
		}

		user1ID, err := uuid.Parse(user1)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user1Id")
			return
		}

		user2ID, err := uuid.Parse(user2)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid user2Id")
			return
		}

		msg := &actors.GetMessagesBetweenMsg{
			User1ID: user1ID,
			User2ID: user2ID,
		}

		future := s.Context.RequestFuture(s.Engine.GetMessageActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			s.Metrics.IncrementErrors()
			writeError(w, http.StatusInternalServerError, "Failed to get messages")
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			writeAppError(w, appErr)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// HandleConversations returns one summary row per correspondent of the
// caller, most recent conversation first.
func (s *Server) HandleConversations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		userID, ok := middleware.GetUserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		msg := &actors.GetConversationsMsg{UserID: userID}

		future := s.Context.RequestFuture(s.Engine.GetMessageActor(), msg, s.RequestTimeout)
		result, err := future.Result()
		if err != nil {
			s.Metrics.IncrementErrors()
			writeError(w, http.StatusInternalServerError, "Failed to get conversations")
			return
		}

		if appErr, ok := result.(*utils.AppError); ok {
			writeAppError(w, appErr)
			return
		}

		conversations, ok := result.([]*models.Conversation)
		if !ok {
			writeError(w, http.StatusInternalServerError, "Failed to get conversations")
			return
		}

		now := time.Now()
		response := make([]*ConversationResponse, 0, len(conversations))
		for _, c := range conversations {
			snap := presence.Effective(c.PartnerIsOnline, c.PartnerLastSeenAt, now, s.PresenceTimeout)
			response = append(response, &ConversationResponse{
				PartnerID:         c.PartnerID.String(),
				PartnerName:       c.PartnerName,
				LastMessageText:   c.LastMessageText,
				LastMessageTime:   c.LastMessageTime,
				PartnerIsOnline:   snap.IsOnline,
				PartnerLastSeenAt: snap.LastSeenAt,
			})
		}

		writeJSON(w, http.StatusOK, response)
	}
}
