package relay

import (
	"sync"
	"time"

	"github.com/mahaj/room-relay/pkg/model"
)

// DefaultTypingIdle is how long after the last "typing" status the
// coordinator decays a user to "stopped" on their behalf.
const DefaultTypingIdle = 1200 * time.Millisecond

// TypingCoordinator caches per room, per user draft text and typing status.
// Drafts and status are independent, last-write-wins fields. Nothing here is
// persisted; state lives and dies with room membership.
type TypingCoordinator struct {
	mu     sync.Mutex
	idle   time.Duration
	states map[typingKey]*typingState
	onIdle func(sess *Session, roomID, userID string)
}

type typingKey struct {
	roomID string
	userID string
}

type typingState struct {
	draft   string
	status  string
	updated time.Time
	timer   *time.Timer
	gen     uint64 // bumped on every status write, so a stale timer cannot fire
}

// NewTypingCoordinator builds a coordinator that calls onIdle exactly once
// per idle period when a typing user goes quiet for the idle window.
func NewTypingCoordinator(idle time.Duration, onIdle func(sess *Session, roomID, userID string)) *TypingCoordinator {
	if idle <= 0 {
		idle = DefaultTypingIdle
	}
	return &TypingCoordinator{
		idle:   idle,
		states: make(map[typingKey]*typingState),
		onIdle: onIdle,
	}
}

// SetDraft overwrites the user's draft text. The coordinator never suppresses
// draft updates; rate limiting is the client's debounce.
func (c *TypingCoordinator) SetDraft(roomID, userID, draft string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := c.state(typingKey{roomID, userID})
	st.draft = draft
	st.updated = time.Now()
}

// SetStatus overwrites the user's typing status. A "typing" status arms the
// idle timer; any later status write disarms or re-arms it, so one idle
// period produces at most one synthetic stop.
func (c *TypingCoordinator) SetStatus(sess *Session, roomID, userID, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := typingKey{roomID, userID}
	st := c.state(key)
	st.status = status
	st.updated = time.Now()
	st.gen++
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	if status != model.StatusTyping {
		return
	}

	gen := st.gen
	st.timer = time.AfterFunc(c.idle, func() {
		c.expire(key, sess, gen)
	})
}

func (c *TypingCoordinator) expire(key typingKey, sess *Session, gen uint64) {
	c.mu.Lock()
	st, ok := c.states[key]
	if !ok || st.gen != gen {
		// Cleared or re-armed since this timer was set.
		c.mu.Unlock()
		return
	}
	st.status = model.StatusStopped
	st.timer = nil
	c.mu.Unlock()

	if c.onIdle != nil {
		c.onIdle(sess, key.roomID, key.userID)
	}
}

// Clear drops a user's state in a room, stopping any pending decay. Called
// when the user disconnects or joins a different room, so stale drafts never
// reach a later joiner.
func (c *TypingCoordinator) Clear(roomID, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := typingKey{roomID, userID}
	if st, ok := c.states[key]; ok {
		if st.timer != nil {
			st.timer.Stop()
		}
		delete(c.states, key)
	}
}

// Status reports the user's current status in a room, or "" if untracked.
func (c *TypingCoordinator) Status(roomID, userID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st, ok := c.states[typingKey{roomID, userID}]; ok {
		return st.status
	}
	return ""
}

func (c *TypingCoordinator) state(key typingKey) *typingState {
	st, ok := c.states[key]
	if !ok {
		st = &typingState{}
		c.states[key] = st
	}
	return st
}
