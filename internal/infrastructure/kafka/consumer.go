package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	readRetryBase = 100 * time.Millisecond
	readRetryMax  = 5 * time.Second
)

type MessageHandler func(ctx context.Context, key, value []byte) error

// messageReader is the part of *kafka.Reader the consumer uses
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

type Consumer struct {
	reader  messageReader
	log     *zap.Logger
	backoff func() retry.Backoff
}

func NewConsumer(brokers []string, topic, groupID string, log *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, log: log, backoff: defaultBackoff}
}

// defaultBackoff doubles the wait after each failed read, up to readRetryMax
func defaultBackoff() retry.Backoff {
	return retry.WithCappedDuration(readRetryMax, retry.NewExponential(readRetryBase))
}

// Consume reads messages until ctx is cancelled. Failed reads are retried with
// backoff. Handler errors are logged and the message is still committed.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.read(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg.Key, msg.Value); err != nil {
			c.log.Error("handle message failed",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// read returns the next message, or an error only once ctx is done
func (c *Consumer) read(ctx context.Context) (kafka.Message, error) {
	attempts := 0
	return retry.DoValue(ctx, c.backoff(), func(ctx context.Context) (kafka.Message, error) {
		msg, err := c.reader.ReadMessage(ctx)
		if err == nil {
			return msg, nil
		}
		if ctx.Err() != nil {
			return kafka.Message{}, ctx.Err()
		}
		attempts++
		c.log.Warn("read message failed", zap.Int("attempt", attempts), zap.Error(err))
		return kafka.Message{}, retry.RetryableError(err)
	})
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
