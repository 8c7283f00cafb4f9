package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mahaj/room-relay/pkg/model"
	"github.com/mahaj/room-relay/pkg/store"
)

const defaultHistoryLimit = 50

// HistoryHandler serves recent room history over HTTP for clients that want
// to page back without a live socket.
type HistoryHandler struct {
	store store.HistoryStore
	log   *zap.Logger
}

func NewHistoryHandler(hist store.HistoryStore, log *zap.Logger) *HistoryHandler {
	return &HistoryHandler{store: hist, log: log}
}

func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room_id")
	if roomID == "" {
		http.Error(w, "room_id is required", http.StatusBadRequest)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	messages, err := h.store.FetchRecent(r.Context(), roomID, limit)
	if err != nil {
		h.log.Error("fetch history", zap.String("room", roomID), zap.Error(err))
		http.Error(w, "failed to retrieve history", http.StatusInternalServerError)
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}
