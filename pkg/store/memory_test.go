package store

import (
	"context"
	"testing"
)

func TestMemoryAppendAssignsOrderedIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	first, err := m.Append(ctx, "r1", "alice", "one")
	if err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}
	second, err := m.Append(ctx, "r1", "alice", "two")
	if err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}

	if first.ID == 0 || second.ID == 0 {
		t.Fatal("Append() left id unassigned")
	}
	if second.ID <= first.ID {
		t.Errorf("ids not increasing: %d then %d", first.ID, second.ID)
	}
	if first.TS == 0 {
		t.Error("Append() left ts unassigned")
	}
	if first.Read {
		t.Error("Append() new message should not be read")
	}
}

func TestMemoryFetchRecentOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	for _, text := range []string{"a", "b", "c", "d"} {
		if _, err := m.Append(ctx, "r1", "alice", text); err != nil {
			t.Fatalf("Append() unexpected error: %v", err)
		}
	}

	got, err := m.FetchRecent(ctx, "r1", 3)
	if err != nil {
		t.Fatalf("FetchRecent() unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("FetchRecent() returned %d messages, want 3", len(got))
	}
	// Last 3, oldest first.
	want := []string{"b", "c", "d"}
	for i, msg := range got {
		if msg.Text != want[i] {
			t.Errorf("message[%d].Text = %q, want %q", i, msg.Text, want[i])
		}
		if i > 0 && got[i].ID <= got[i-1].ID {
			t.Errorf("messages not ascending: id[%d]=%d, id[%d]=%d", i-1, got[i-1].ID, i, got[i].ID)
		}
	}
}

func TestMemoryFetchRecentUnknownRoom(t *testing.T) {
	m := NewMemory()

	got, err := m.FetchRecent(context.Background(), "nowhere", 50)
	if err != nil {
		t.Fatalf("FetchRecent() unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("FetchRecent() on unknown room returned %d messages, want 0", len(got))
	}
}

func TestMemoryMarkRead(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	msg, err := m.Append(ctx, "r1", "alice", "hi")
	if err != nil {
		t.Fatalf("Append() unexpected error: %v", err)
	}

	if err := m.MarkRead(ctx, msg.ID); err != nil {
		t.Fatalf("MarkRead() unexpected error: %v", err)
	}

	got, err := m.FetchRecent(ctx, "r1", 1)
	if err != nil {
		t.Fatalf("FetchRecent() unexpected error: %v", err)
	}
	if len(got) != 1 || !got[0].Read {
		t.Error("MarkRead() did not flip the read flag")
	}

	// Unknown id is a no-op, not an error.
	if err := m.MarkRead(ctx, msg.ID+12345); err != nil {
		t.Errorf("MarkRead() on unknown id: %v", err)
	}
}
