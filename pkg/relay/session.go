package relay

import (
	"sync"

	"github.com/google/uuid"
)

// Outbox delivers outbound event frames to one connection. The transport owns
// the implementation; Send must not block the relay (the gateway uses a
// buffered channel and drops the connection when it fills, tests capture in a
// slice).
type Outbox interface {
	Send(event string, payload any)
}

// Session is one live connection's identity and room membership. The user id
// is fixed by the first successful join; the room id follows the registry.
// The transport creates a session on connect and must call Relay.Disconnect
// when the connection goes away.
type Session struct {
	handle string
	out    Outbox

	mu     sync.Mutex
	userID string
	roomID string
}

func NewSession(out Outbox) *Session {
	return &Session{handle: uuid.NewString(), out: out}
}

// Handle returns the opaque per-connection identifier.
func (s *Session) Handle() string {
	return s.handle
}

func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// RoomID returns the joined room, or "" before the first join.
func (s *Session) RoomID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

// bind fixes the session identity. The user id is set once by the first join
// and kept on re-joins; the room tracks the registry.
func (s *Session) bind(userID, roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userID == "" {
		s.userID = userID
	}
	s.roomID = roomID
}
