package relay

import (
	"sync"
	"testing"
)

// capture is a test Outbox that records every delivered event.
type capture struct {
	mu     sync.Mutex
	events []capturedEvent
}

type capturedEvent struct {
	event   string
	payload any
}

func (c *capture) Send(event string, payload any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, capturedEvent{event: event, payload: payload})
}

func (c *capture) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *capture) all() []capturedEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]capturedEvent, len(c.events))
	copy(out, c.events)
	return out
}

func newTestSession() (*Session, *capture) {
	out := &capture{}
	return NewSession(out), out
}

func TestRegistryJoinAndMembers(t *testing.T) {
	reg := NewRegistry()
	sess, _ := newTestSession()

	reg.Join(sess, "r1", "alice")

	members := reg.Members("r1")
	if len(members) != 1 || members[0] != sess {
		t.Fatalf("Members(r1) = %v, want just the joined session", members)
	}
}

func TestRegistryJoinBlankIDsIsNoop(t *testing.T) {
	reg := NewRegistry()
	sess, _ := newTestSession()

	tests := []struct {
		name   string
		roomID string
		userID string
	}{
		{"empty room", "", "alice"},
		{"whitespace room", "   ", "alice"},
		{"empty user", "r1", ""},
		{"whitespace user", "r1", "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg.Join(sess, tt.roomID, tt.userID)
			if got := reg.Members(tt.roomID); len(got) != 0 {
				t.Errorf("Join(%q, %q) added a member", tt.roomID, tt.userID)
			}
		})
	}
}

func TestRegistryJoinMovesBetweenRooms(t *testing.T) {
	reg := NewRegistry()
	sess, _ := newTestSession()

	reg.Join(sess, "r1", "alice")
	reg.Join(sess, "r2", "alice")

	if got := reg.Members("r1"); len(got) != 0 {
		t.Errorf("session still in r1 after moving: %d members", len(got))
	}
	if got := reg.Members("r2"); len(got) != 1 {
		t.Errorf("Members(r2) = %d, want 1", len(got))
	}
}

func TestRegistryLeaveIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	sess, _ := newTestSession()

	reg.Join(sess, "r1", "alice")
	reg.Leave(sess)
	reg.Leave(sess) // second leave must not panic or disturb anything

	if got := reg.Members("r1"); len(got) != 0 {
		t.Errorf("Members(r1) = %d after leave, want 0", len(got))
	}
}

func TestRegistryBroadcastExcludes(t *testing.T) {
	reg := NewRegistry()
	alice, aliceOut := newTestSession()
	bob, bobOut := newTestSession()
	reg.Join(alice, "r1", "alice")
	reg.Join(bob, "r1", "bob")

	reg.Broadcast("r1", "ping", "payload", alice)

	if aliceOut.count() != 0 {
		t.Errorf("excluded session received %d events", aliceOut.count())
	}
	if bobOut.count() != 1 {
		t.Fatalf("bob received %d events, want 1", bobOut.count())
	}
	if got := bobOut.all()[0]; got.event != "ping" || got.payload != "payload" {
		t.Errorf("bob received %+v", got)
	}
}

func TestRegistryBroadcastCrossRoomIsolation(t *testing.T) {
	reg := NewRegistry()
	alice, aliceOut := newTestSession()
	carol, carolOut := newTestSession()
	reg.Join(alice, "r1", "alice")
	reg.Join(carol, "r2", "carol")

	reg.Broadcast("r1", "ping", nil, nil)

	if aliceOut.count() != 1 {
		t.Errorf("alice received %d events, want 1", aliceOut.count())
	}
	if carolOut.count() != 0 {
		t.Errorf("carol in r2 received %d events from r1, want 0", carolOut.count())
	}
}

func TestRegistryBroadcastUnknownRoom(t *testing.T) {
	reg := NewRegistry()
	reg.Broadcast("nowhere", "ping", nil, nil) // must not panic
}
