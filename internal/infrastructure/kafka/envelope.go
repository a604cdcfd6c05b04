package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Envelope wraps a domain event published on the stock feed
type Envelope struct {
	ID            string          `json:"id"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	EventType     string          `json:"event_type"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewEnvelope marshals data and stamps it with a fresh ID
func NewEnvelope(aggregateType, aggregateID, eventType string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Data:          raw,
		Timestamp:     time.Now().UTC(),
	}, nil
}
