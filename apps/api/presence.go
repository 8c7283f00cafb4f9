package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/mahaj/room-relay/pkg/presence"
)

// PresenceHandler lists the users currently present in a room.
// Route: /rooms/{id}/users
type PresenceHandler struct {
	tracker presence.Tracker
	log     *zap.Logger
}

func NewPresenceHandler(tracker presence.Tracker, log *zap.Logger) *PresenceHandler {
	return &PresenceHandler{tracker: tracker, log: log}
}

func (h *PresenceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) != 4 || parts[1] != "rooms" || parts[3] != "users" || parts[2] == "" {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	roomID := parts[2]

	users, err := h.tracker.List(r.Context(), roomID)
	if err != nil {
		h.log.Error("list presence", zap.String("room", roomID), zap.Error(err))
		http.Error(w, "failed to fetch presence", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}
