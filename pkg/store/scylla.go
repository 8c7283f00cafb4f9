package store

import (
	"context"
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"

	"github.com/mahaj/room-relay/pkg/ids"
	"github.com/mahaj/room-relay/pkg/model"
)

// Scylla persists messages in ScyllaDB. Messages cluster by snowflake id
// within the room partition, which matches insertion order, so FetchRecent
// never has to sort. The message_rooms table maps a message id back to its
// room so MarkRead can address the row.
type Scylla struct {
	session *gocql.Session
	gen     *ids.Generator
}

const (
	insertMessageCQL = `INSERT INTO room_messages (room_id, id, sender_id, content, created_at, read) VALUES (?, ?, ?, ?, ?, false)`
	insertIndexCQL   = `INSERT INTO message_rooms (id, room_id) VALUES (?, ?)`
	recentCQL        = `SELECT id, sender_id, content, created_at, read FROM room_messages WHERE room_id = ? ORDER BY id DESC LIMIT ?`
	locateCQL        = `SELECT room_id FROM message_rooms WHERE id = ?`
	markReadCQL      = `UPDATE room_messages SET read = true WHERE room_id = ? AND id = ?`
)

func NewScylla(session *gocql.Session, gen *ids.Generator) *Scylla {
	return &Scylla{session: session, gen: gen}
}

func (s *Scylla) FetchRecent(ctx context.Context, roomID string, limit int) ([]model.Message, error) {
	iter := s.session.Query(recentCQL, roomID, limit).WithContext(ctx).Iter()

	var (
		out       []model.Message
		id        int64
		sender    string
		text      string
		createdAt time.Time
		read      bool
	)
	for iter.Scan(&id, &sender, &text, &createdAt, &read) {
		out = append(out, model.Message{
			ID:     id,
			RoomID: roomID,
			From:   sender,
			Text:   text,
			TS:     createdAt.UnixMilli(),
			Read:   read,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "fetch recent for room %s: %v", roomID, err)
	}

	// The query walks newest-first to honor the limit; callers want oldest-first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *Scylla) Append(ctx context.Context, roomID, senderID, text string) (model.Message, error) {
	msg := model.Message{
		ID:     s.gen.Next(),
		RoomID: roomID,
		From:   senderID,
		Text:   text,
		TS:     time.Now().UnixMilli(),
	}

	batch := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(insertMessageCQL, roomID, msg.ID, senderID, text, time.UnixMilli(msg.TS))
	batch.Query(insertIndexCQL, msg.ID, roomID)
	if err := s.session.ExecuteBatch(batch); err != nil {
		return model.Message{}, errors.Wrapf(ErrUnavailable, "append to room %s: %v", roomID, err)
	}
	return msg, nil
}

func (s *Scylla) MarkRead(ctx context.Context, messageID int64) error {
	var roomID string
	err := s.session.Query(locateCQL, messageID).WithContext(ctx).Scan(&roomID)
	if err == gocql.ErrNotFound {
		return nil
	}
	if err != nil {
		return errors.Wrapf(ErrUnavailable, "locate message %d: %v", messageID, err)
	}

	if err := s.session.Query(markReadCQL, roomID, messageID).WithContext(ctx).Exec(); err != nil {
		return errors.Wrapf(ErrUnavailable, "mark message %d read: %v", messageID, err)
	}
	return nil
}
