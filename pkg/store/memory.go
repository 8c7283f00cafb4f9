package store

import (
	"context"
	"sync"
	"time"

	"github.com/mahaj/room-relay/pkg/ids"
	"github.com/mahaj/room-relay/pkg/model"
)

// Memory is an in-process HistoryStore. The gateway falls back to it when no
// Scylla hosts are configured; relay tests use it directly. Same id
// assignment and ordering semantics as the Scylla store, nothing survives a
// restart.
type Memory struct {
	mu    sync.Mutex
	gen   *ids.Generator
	rooms map[string][]*model.Message
	byID  map[int64]*model.Message
}

func NewMemory() *Memory {
	gen, _ := ids.NewGenerator(0)
	return &Memory{
		gen:   gen,
		rooms: make(map[string][]*model.Message),
		byID:  make(map[int64]*model.Message),
	}
}

func (m *Memory) FetchRecent(_ context.Context, roomID string, limit int) ([]model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := m.rooms[roomID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]model.Message, len(msgs))
	for i, msg := range msgs {
		out[i] = *msg
	}
	return out, nil
}

func (m *Memory) Append(_ context.Context, roomID, senderID, text string) (model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg := &model.Message{
		ID:     m.gen.Next(),
		RoomID: roomID,
		From:   senderID,
		Text:   text,
		TS:     time.Now().UnixMilli(),
	}
	m.rooms[roomID] = append(m.rooms[roomID], msg)
	m.byID[msg.ID] = msg
	return *msg, nil
}

func (m *Memory) MarkRead(_ context.Context, messageID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if msg, ok := m.byID[messageID]; ok {
		msg.Read = true
	}
	return nil
}

// Len reports how many messages a room holds.
func (m *Memory) Len(roomID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms[roomID])
}
