package relay

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/mahaj/room-relay/pkg/model"
)

const testIdle = 30 * time.Millisecond

func TestTypingIdleDecayFiresOnce(t *testing.T) {
	var fired atomic.Int32
	c := NewTypingCoordinator(testIdle, func(_ *Session, roomID, userID string) {
		if roomID != "r1" || userID != "alice" {
			t.Errorf("onIdle(%q, %q), want (r1, alice)", roomID, userID)
		}
		fired.Add(1)
	})

	sess, _ := newTestSession()
	c.SetStatus(sess, "r1", "alice", model.StatusTyping)

	time.Sleep(4 * testIdle)

	if got := fired.Load(); got != 1 {
		t.Fatalf("idle callback fired %d times, want exactly 1", got)
	}
	if got := c.Status("r1", "alice"); got != model.StatusStopped {
		t.Errorf("Status() = %q after decay, want %q", got, model.StatusStopped)
	}
}

func TestTypingIdleTimerResetsOnRenewedTyping(t *testing.T) {
	var fired atomic.Int32
	c := NewTypingCoordinator(testIdle, func(*Session, string, string) {
		fired.Add(1)
	})

	sess, _ := newTestSession()
	c.SetStatus(sess, "r1", "alice", model.StatusTyping)

	// Keep renewing inside the idle window; the decay must not fire.
	for i := 0; i < 4; i++ {
		time.Sleep(testIdle / 3)
		c.SetStatus(sess, "r1", "alice", model.StatusTyping)
	}
	if got := fired.Load(); got != 0 {
		t.Fatalf("idle callback fired %d times while still typing", got)
	}

	// Now go quiet: a single decay for the final idle period.
	time.Sleep(4 * testIdle)
	if got := fired.Load(); got != 1 {
		t.Fatalf("idle callback fired %d times, want 1", got)
	}
}

func TestTypingExplicitStopDisarmsTimer(t *testing.T) {
	var fired atomic.Int32
	c := NewTypingCoordinator(testIdle, func(*Session, string, string) {
		fired.Add(1)
	})

	sess, _ := newTestSession()
	c.SetStatus(sess, "r1", "alice", model.StatusTyping)
	c.SetStatus(sess, "r1", "alice", model.StatusStopped)

	time.Sleep(4 * testIdle)
	if got := fired.Load(); got != 0 {
		t.Fatalf("idle callback fired %d times after explicit stop", got)
	}
}

func TestTypingClearDropsStateAndTimer(t *testing.T) {
	var fired atomic.Int32
	c := NewTypingCoordinator(testIdle, func(*Session, string, string) {
		fired.Add(1)
	})

	sess, _ := newTestSession()
	c.SetDraft("r1", "alice", "half a thou")
	c.SetStatus(sess, "r1", "alice", model.StatusTyping)
	c.Clear("r1", "alice")

	time.Sleep(4 * testIdle)
	if got := fired.Load(); got != 0 {
		t.Fatalf("idle callback fired %d times after Clear", got)
	}
	if got := c.Status("r1", "alice"); got != "" {
		t.Errorf("Status() = %q after Clear, want empty", got)
	}
}

func TestTypingDraftAndStatusAreIndependent(t *testing.T) {
	c := NewTypingCoordinator(time.Hour, nil)
	sess, _ := newTestSession()

	// Out-of-order arrival: status first, then draft. Last write wins per field.
	c.SetStatus(sess, "r1", "alice", model.StatusTyping)
	c.SetDraft("r1", "alice", "hello wor")

	if got := c.Status("r1", "alice"); got != model.StatusTyping {
		t.Errorf("Status() = %q, want %q", got, model.StatusTyping)
	}

	c.SetDraft("r1", "alice", "hello world")
	if got := c.Status("r1", "alice"); got != model.StatusTyping {
		t.Errorf("draft write changed status to %q", got)
	}
}
