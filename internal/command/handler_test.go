package command

import (
	"context"
	"testing"

	"github.com/example/stock-ledger/internal/domain"
	"github.com/example/stock-ledger/internal/domain/material"
	"github.com/example/stock-ledger/internal/domain/stock"
	"github.com/example/stock-ledger/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() (*Handler, *mocks.MockStore) {
	st := mocks.NewMockStore()
	return NewHandler(material.NewService(st), stock.NewService(st)), st
}

func ptr(v int64) *int64 { return &v }

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, field, verr.Field)
}

// ============================================
// RegisterMaterial Tests
// ============================================

func TestHandler_RegisterMaterial(t *testing.T) {
	h, _ := newTestHandler()

	m, err := h.RegisterMaterial(context.Background(), RegisterMaterial{
		Name:         "Steel",
		InitialStock: ptr(0),
		Unit:         "kg",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), m.ID)
	assert.Zero(t, m.InitialStock)
}

func TestHandler_RegisterMaterial_Validation(t *testing.T) {
	tests := []struct {
		name   string
		cmd    RegisterMaterial
		field  string
		reason string
	}{
		{"missing name", RegisterMaterial{InitialStock: ptr(1), Unit: "kg"}, "name", "is required"},
		{"missing initial stock", RegisterMaterial{Name: "Steel", Unit: "kg"}, "initial_stock", "is required"},
		{"negative initial stock", RegisterMaterial{Name: "Steel", InitialStock: ptr(-3), Unit: "kg"}, "initial_stock", "must not be negative"},
		{"missing unit", RegisterMaterial{Name: "Steel", InitialStock: ptr(1)}, "unit", "is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler()

			_, err := h.RegisterMaterial(context.Background(), tt.cmd)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, tt.reason, verr.Reason)
		})
	}
}

// ============================================
// RecordStock Tests
// ============================================

func TestHandler_RecordStock_RequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		cmd   RecordStock
		field string
	}{
		{"missing material", RecordStock{Date: "2024-01-05", Produced: ptr(1), Sold: ptr(0)}, "material_id"},
		{"missing produced", RecordStock{MaterialID: ptr(1), Date: "2024-01-05", Sold: ptr(0)}, "produced"},
		{"missing sold", RecordStock{MaterialID: ptr(1), Date: "2024-01-05", Produced: ptr(1)}, "sold"},
		{"missing date", RecordStock{MaterialID: ptr(1), Produced: ptr(1), Sold: ptr(0)}, "date"},
		{"negative produced", RecordStock{MaterialID: ptr(1), Date: "2024-01-05", Produced: ptr(-1), Sold: ptr(0)}, "produced"},
		{"negative sold", RecordStock{MaterialID: ptr(1), Date: "2024-01-05", Produced: ptr(0), Sold: ptr(-2)}, "sold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, st := newTestHandler()
			st.AddMaterial("Steel", "kg", 10)

			_, err := h.RecordStock(context.Background(), tt.cmd)

			requireField(t, err, tt.field)
			assert.Empty(t, st.AppendCalls)
		})
	}
}

func TestHandler_RecordStock_ZeroQuantitiesAreAccepted(t *testing.T) {
	h, st := newTestHandler()
	st.AddMaterial("Steel", "kg", 10)

	event, err := h.RecordStock(context.Background(), RecordStock{
		MaterialID: ptr(1),
		Date:       "2024-01-05",
		Produced:   ptr(0),
		Sold:       ptr(0),
	})

	require.NoError(t, err)
	assert.NotZero(t, event.ID)
}

// ============================================
// WithdrawStock Tests
// ============================================

func TestHandler_WithdrawStock(t *testing.T) {
	h, st := newTestHandler()
	st.AddMaterial("Steel", "kg", 10)

	_, err := h.WithdrawStock(context.Background(), WithdrawStock{Quantity: ptr(1)})
	requireField(t, err, "material_id")

	_, err = h.WithdrawStock(context.Background(), WithdrawStock{MaterialID: ptr(1)})
	requireField(t, err, "quantity")

	_, err = h.WithdrawStock(context.Background(), WithdrawStock{MaterialID: ptr(1), Quantity: ptr(0)})
	requireField(t, err, "quantity")
	assert.Zero(t, st.TxCalls)

	_, err = h.WithdrawStock(context.Background(), WithdrawStock{MaterialID: ptr(1), Quantity: ptr(11)})
	assert.ErrorIs(t, err, stock.ErrInsufficientStock)

	event, err := h.WithdrawStock(context.Background(), WithdrawStock{MaterialID: ptr(1), Quantity: ptr(10)})
	require.NoError(t, err)
	assert.Equal(t, int64(10), event.Sold)
}
