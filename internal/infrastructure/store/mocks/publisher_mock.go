package mocks

import (
	"context"
	"sync"
)

// PublishCall records parameters passed to PublishEvent
type PublishCall struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Data          any
}

// MockPublisher records published events instead of sending them
type MockPublisher struct {
	mu sync.Mutex

	PublishCalls []PublishCall
	PublishErr   error
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{PublishCalls: make([]PublishCall, 0)}
}

func (p *MockPublisher) PublishEvent(ctx context.Context, aggregateType, aggregateID, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.PublishCalls = append(p.PublishCalls, PublishCall{
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Data:          data,
	})
	return p.PublishErr
}

func (p *MockPublisher) Calls() []PublishCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishCall(nil), p.PublishCalls...)
}
