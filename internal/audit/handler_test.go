package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/example/stock-ledger/internal/domain"
	"github.com/example/stock-ledger/internal/domain/material"
	"github.com/example/stock-ledger/internal/domain/stock"
	"github.com/example/stock-ledger/internal/infrastructure/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedHandler() (*Handler, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewHandler(zap.New(core)), logs
}

func encode(t *testing.T, eventType string, data any) []byte {
	t.Helper()
	env, err := kafka.NewEnvelope(domain.AggregateType, "1", eventType, data)
	require.NoError(t, err)
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return raw
}

func TestHandleEvent_StockWithdrawn(t *testing.T) {
	h, logs := newObservedHandler()
	value := encode(t, stock.EventStockWithdrawn, stock.StockWithdrawn{
		MaterialID:     1,
		EventID:        7,
		Date:           "2024-01-20",
		Quantity:       30,
		RemainingStock: 70,
	})

	require.NoError(t, h.HandleEvent(context.Background(), []byte("1"), value))

	entries := logs.FilterMessage("stock withdrawn").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "1", fields["material_id"])
	assert.Equal(t, int64(30), fields["quantity"])
	assert.Equal(t, int64(70), fields["remaining_stock"])
}

func TestHandleEvent_KnownTypes(t *testing.T) {
	tests := []struct {
		eventType string
		data      any
		message   string
	}{
		{material.EventMaterialRegistered, material.MaterialRegistered{MaterialID: 1, Name: "Steel", Unit: "kg"}, "material registered"},
		{stock.EventStockRecorded, stock.StockRecorded{MaterialID: 1, Date: "2024-01-05", Produced: 50}, "stock recorded"},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			h, logs := newObservedHandler()

			require.NoError(t, h.HandleEvent(context.Background(), nil, encode(t, tt.eventType, tt.data)))

			assert.Equal(t, 1, logs.FilterMessage(tt.message).Len())
		})
	}
}

func TestHandleEvent_UnknownTypeIsIgnored(t *testing.T) {
	h, logs := newObservedHandler()

	err := h.HandleEvent(context.Background(), nil, encode(t, "SomethingElse", map[string]int{"x": 1}))

	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("ignoring event").Len())
}

func TestHandleEvent_MalformedPayload(t *testing.T) {
	h, _ := newObservedHandler()

	err := h.HandleEvent(context.Background(), nil, []byte("not json"))
	assert.ErrorContains(t, err, "decode envelope")

	bad := []byte(`{"event_type":"StockRecorded","data":"oops"}`)
	err = h.HandleEvent(context.Background(), nil, bad)
	assert.ErrorContains(t, err, "decode StockRecorded")
}
