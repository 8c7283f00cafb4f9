package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gocql/gocql"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/mahaj/room-relay/pkg/model"
)

// Archiver drains the relay's mirrored event stream and lands the durable
// ones in ScyllaDB. Typing traffic is ephemeral and skipped.
type Archiver struct {
	reader  *kafka.Reader
	session *gocql.Session
	log     *zap.Logger
}

func NewArchiver(brokers []string, topic, groupID string, session *gocql.Session, log *zap.Logger) *Archiver {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Archiver{reader: r, session: session, log: log}
}

func (a *Archiver) Run(ctx context.Context) {
	for {
		m, err := a.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			a.log.Error("read event, retrying in 1s", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		var env model.Envelope
		if err := json.Unmarshal(m.Value, &env); err != nil {
			a.log.Warn("skipping malformed event", zap.Error(err))
			continue
		}

		switch env.Event {
		case model.EventNewMessage, model.EventMessageReadAck:
		default:
			continue
		}

		roomID := string(m.Key)
		if err := a.session.Query(
			`INSERT INTO relay_events (room_id, at, event, payload) VALUES (?, ?, ?, ?)`,
			roomID, gocql.TimeUUID(), env.Event, string(env.Data),
		).WithContext(ctx).Exec(); err != nil {
			a.log.Error("archive event", zap.String("event", env.Event), zap.String("room", roomID), zap.Error(err))
		}
	}
}

func (a *Archiver) Close() error {
	return a.reader.Close()
}
