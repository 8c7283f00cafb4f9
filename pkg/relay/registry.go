package relay

import (
	"strings"
	"sync"
)

// Registry maps room ids to the sessions currently joined to them. Rooms come
// into being on first join and go away when the last member leaves. Each room
// guards its member set with its own mutex so delivery in one room never
// serializes against another; the broadcast snapshot is taken under the same
// mutex as membership changes, so a session joining mid-broadcast sees either
// the whole event or none of it.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	joined map[*Session]string
}

type room struct {
	mu      sync.Mutex
	members map[*Session]bool

	// sendMu serializes Append+Broadcast for message sends in this room, so
	// two sends that persist in order reach every member in that order.
	sendMu sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]*room),
		joined: make(map[*Session]string),
	}
}

// Join places the session in roomID, removing it from any previous room
// first. Blank room or user ids make the call a no-op.
func (r *Registry) Join(sess *Session, roomID, userID string) {
	if strings.TrimSpace(roomID) == "" || strings.TrimSpace(userID) == "" {
		return
	}
	r.Leave(sess)

	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[roomID]
	if !ok {
		rm = &room{members: make(map[*Session]bool)}
		r.rooms[roomID] = rm
	}
	rm.mu.Lock()
	rm.members[sess] = true
	rm.mu.Unlock()
	r.joined[sess] = roomID
}

// Leave removes the session from its room, if any. Safe to call repeatedly;
// the last member out drops the room.
func (r *Registry) Leave(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID, ok := r.joined[sess]
	if !ok {
		return
	}
	delete(r.joined, sess)

	rm := r.rooms[roomID]
	if rm == nil {
		return
	}
	rm.mu.Lock()
	delete(rm.members, sess)
	empty := len(rm.members) == 0
	rm.mu.Unlock()

	if empty {
		delete(r.rooms, roomID)
	}
}

// Members returns a snapshot of the sessions currently in the room.
func (r *Registry) Members(roomID string) []*Session {
	r.mu.RLock()
	rm := r.rooms[roomID]
	r.mu.RUnlock()
	if rm == nil {
		return nil
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	out := make([]*Session, 0, len(rm.members))
	for sess := range rm.members {
		out = append(out, sess)
	}
	return out
}

// Broadcast delivers one event to every member of the room except exclude.
// Delivery happens under the room's membership lock; Outbox.Send is
// non-blocking by contract, so holding it is cheap and makes the member
// snapshot atomic against concurrent join/leave.
func (r *Registry) Broadcast(roomID, event string, payload any, exclude *Session) {
	r.mu.RLock()
	rm := r.rooms[roomID]
	r.mu.RUnlock()
	if rm == nil {
		return
	}

	rm.mu.Lock()
	defer rm.mu.Unlock()
	for sess := range rm.members {
		if sess == exclude {
			continue
		}
		sess.out.Send(event, payload)
	}
}

// sendLock returns the room's send-serialization mutex, or nil if the room is
// gone. The caller must be a member, which keeps the room alive.
func (r *Registry) sendLock(roomID string) *sync.Mutex {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm := r.rooms[roomID]
	if rm == nil {
		return nil
	}
	return &rm.sendMu
}
