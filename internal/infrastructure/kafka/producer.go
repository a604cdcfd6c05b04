package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{writer: writer}
}

// PublishEvent wraps data in an Envelope and writes it keyed by aggregateID,
// so all events of one material land on the same partition in order
func (p *Producer) PublishEvent(ctx context.Context, aggregateType, aggregateID, eventType string, data any) error {
	env, err := NewEnvelope(aggregateType, aggregateID, eventType, data)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(aggregateID),
		Value: value,
		Time:  env.Timestamp,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
