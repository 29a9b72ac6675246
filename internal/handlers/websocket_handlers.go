package handlers

import (
	"log"
	"net/http"

	"swapmeet/internal/middleware"
	"swapmeet/internal/notify"
	"swapmeet/internal/websocket"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: check origin against config.AllowedOrigins
		return true
	},
}

// HandleWebSocket upgrades an authenticated connection and subscribes it
// to the caller's per-recipient notification channel.
func (s *Server) HandleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Authenticate using JWT from query parameter: browsers cannot
		// set headers on websocket upgrades.
		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			writeError(w, http.StatusUnauthorized, "Missing authentication token")
			return
		}

		claims, err := middleware.ValidateToken(tokenString)
		if err != nil {
			log.Printf("WebSocket connection failed: invalid token: %v", err)
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		userID := claims.UserID
		if userID == uuid.Nil {
			writeError(w, http.StatusUnauthorized, "Invalid user ID in token")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Cannot write an HTTP error after a failed upgrade attempt.
			log.Printf("WebSocket upgrade failed for user %s: %v", userID, err)
			return
		}

		client := &websocket.Client{
			Hub:     s.Hub,
			Channel: notify.ChannelForUser(userID),
			Conn:    conn,
			Send:    make(chan []byte, 256),
		}
		client.Hub.Register <- client

		log.Printf("WebSocket client registered for user %s", userID)

		go client.WritePump()
		go client.ReadPump()
	}
}
