package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/stock-ledger/internal/domain/material"
	"github.com/example/stock-ledger/internal/domain/stock"
	"github.com/example/stock-ledger/internal/infrastructure/kafka"
	"go.uber.org/zap"
)

// Handler turns feed envelopes into audit log lines
type Handler struct {
	log *zap.Logger
}

func NewHandler(log *zap.Logger) *Handler {
	return &Handler{log: log}
}

// HandleEvent processes an event from Kafka
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var env kafka.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}

	base := []zap.Field{
		zap.String("event_id", env.ID),
		zap.String("event_type", env.EventType),
		zap.String("material_id", env.AggregateID),
		zap.Time("timestamp", env.Timestamp),
	}

	switch env.EventType {
	case material.EventMaterialRegistered:
		var e material.MaterialRegistered
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return fmt.Errorf("decode %s: %w", env.EventType, err)
		}
		h.log.Info("material registered", append(base,
			zap.String("name", e.Name),
			zap.String("unit", e.Unit),
			zap.Int64("initial_stock", e.InitialStock),
		)...)

	case stock.EventStockRecorded:
		var e stock.StockRecorded
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return fmt.Errorf("decode %s: %w", env.EventType, err)
		}
		h.log.Info("stock recorded", append(base,
			zap.Int64("ledger_id", e.EventID),
			zap.String("date", e.Date),
			zap.Int64("produced", e.Produced),
			zap.Int64("sold", e.Sold),
		)...)

	case stock.EventStockWithdrawn:
		var e stock.StockWithdrawn
		if err := json.Unmarshal(env.Data, &e); err != nil {
			return fmt.Errorf("decode %s: %w", env.EventType, err)
		}
		h.log.Info("stock withdrawn", append(base,
			zap.Int64("ledger_id", e.EventID),
			zap.String("date", e.Date),
			zap.Int64("quantity", e.Quantity),
			zap.Int64("remaining_stock", e.RemainingStock),
		)...)

	default:
		h.log.Debug("ignoring event", base...)
	}
	return nil
}
