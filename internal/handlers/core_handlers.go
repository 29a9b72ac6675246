package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HandleHealth reports store reachability and basic counts.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.RequestTimeout)
		defer cancel()

		if err := s.Store.Ping(ctx); err != nil {
			writeError(w, http.StatusInternalServerError, "Store unreachable")
			return
		}

		userCount, err := s.Store.CountUsers(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get user count")
			return
		}

		messageCount, err := s.Store.CountMessages(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get message count")
			return
		}

		requests, errors, dispatchDrops, uptime := s.Metrics.Snapshot()

		response := fmt.Sprintf("SwapMeet Status:\n"+
			"- Total Users: %d\n"+
			"- Total Messages: %d\n"+
			"- Requests: %d (errors: %d, dispatch drops: %d)\n"+
			"- Uptime: %s\n",
			userCount,
			messageCount,
			requests, errors, dispatchDrops,
			uptime.Round(time.Second),
		)

		fmt.Fprint(w, response)
	}
}
