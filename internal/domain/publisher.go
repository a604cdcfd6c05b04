package domain

import (
	"context"
	"strconv"

	"github.com/example/stock-ledger/internal/metrics"
	"go.uber.org/zap"
)

// AggregateType tags every event on the feed; all events hang off a material
const AggregateType = "Material"

// Publisher sends domain events to the event feed
type Publisher interface {
	PublishEvent(ctx context.Context, aggregateType, aggregateID, eventType string, data any) error
}

// Emit publishes an event for a material after the change is committed.
// A nil publisher disables the feed; a failed publish is logged, not returned.
func Emit(ctx context.Context, p Publisher, log *zap.Logger, materialID int64, eventType string, data any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(ctx, AggregateType, strconv.FormatInt(materialID, 10), eventType, data); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		log.Warn("publish event failed",
			zap.String("event_type", eventType),
			zap.Int64("material_id", materialID),
			zap.Error(err),
		)
		return
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
}
