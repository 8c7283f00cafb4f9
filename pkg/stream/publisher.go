package stream

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// Publisher mirrors relay broadcast frames onto a Kafka topic for downstream
// consumers (see apps/archiver). Writes are fire and forget from the relay's
// point of view: a failed publish is logged by the caller and never fails the
// intent that produced the event.
type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{writer: &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}}
}

// Publish writes one envelope frame keyed by room, so per-room order survives
// partitioning.
func (p *Publisher) Publish(ctx context.Context, roomID string, frame []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(roomID),
		Value: frame,
		Time:  time.Now(),
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
