package store

import (
	"context"

	"github.com/pkg/errors"

	"github.com/mahaj/room-relay/pkg/model"
)

// ErrUnavailable reports that the backing store could not serve the call.
// Check it with errors.Is; implementations wrap it with call context.
var ErrUnavailable = errors.New("history store unavailable")

// HistoryStore is the durable, append-only message log the relay reads from
// and writes to. Implementations own their retry and timeout policy; the
// relay never retries a failed call.
type HistoryStore interface {
	// FetchRecent returns up to limit messages for the room, oldest first.
	// An unknown room yields an empty result, not an error.
	FetchRecent(ctx context.Context, roomID string, limit int) ([]model.Message, error)

	// Append persists a new message and returns it with the store-assigned
	// id and timestamp. Read starts out false.
	Append(ctx context.Context, roomID, senderID, text string) (model.Message, error)

	// MarkRead flips the message's read flag false to true. Marking an
	// unknown message is a no-op.
	MarkRead(ctx context.Context, messageID int64) error
}
