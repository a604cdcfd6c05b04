package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/example/stock-ledger/internal/infrastructure/store"
)

// MockStore is a MemoryStore that records appends and can inject errors
type MockStore struct {
	*store.MemoryStore

	mu sync.Mutex

	// For tracking calls in tests
	AppendCalls []store.StockEvent
	TxCalls     int

	AppendErr error
	QueryErr  error
}

func NewMockStore() *MockStore {
	return &MockStore{MemoryStore: store.NewMemoryStore()}
}

func (m *MockStore) AppendStockEvent(ctx context.Context, event *store.StockEvent) error {
	m.mu.Lock()
	m.AppendCalls = append(m.AppendCalls, *event)
	appendErr := m.AppendErr
	m.mu.Unlock()

	if appendErr != nil {
		return appendErr
	}
	return m.MemoryStore.AppendStockEvent(ctx, event)
}

func (m *MockStore) SumByPeriod(ctx context.Context, start, end time.Time) ([]store.PeriodTotals, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return m.MemoryStore.SumByPeriod(ctx, start, end)
}

func (m *MockStore) ListMaterialTotals(ctx context.Context) ([]store.MaterialTotals, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return m.MemoryStore.ListMaterialTotals(ctx)
}

func (m *MockStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Ledger) error) error {
	m.mu.Lock()
	m.TxCalls++
	m.mu.Unlock()

	return m.MemoryStore.WithinTx(ctx, func(ctx context.Context, tx store.Ledger) error {
		return fn(ctx, &recordingLedger{Ledger: tx, mock: m})
	})
}

// recordingLedger records appends made inside a transaction
type recordingLedger struct {
	store.Ledger
	mock *MockStore
}

func (l *recordingLedger) AppendStockEvent(ctx context.Context, event *store.StockEvent) error {
	l.mock.mu.Lock()
	l.mock.AppendCalls = append(l.mock.AppendCalls, *event)
	appendErr := l.mock.AppendErr
	l.mock.mu.Unlock()

	if appendErr != nil {
		return appendErr
	}
	return l.Ledger.AppendStockEvent(ctx, event)
}

// AddMaterial registers a material directly for testing
func (m *MockStore) AddMaterial(name, unit string, initialStock int64) store.Material {
	mat := store.Material{Name: name, Unit: unit, InitialStock: initialStock}
	_ = m.MemoryStore.CreateMaterial(context.Background(), &mat)
	return mat
}

// AddEvent appends a ledger entry directly, bypassing call tracking
func (m *MockStore) AddEvent(materialID int64, date time.Time, produced, sold int64) error {
	return m.MemoryStore.AppendStockEvent(context.Background(), &store.StockEvent{
		MaterialID: materialID,
		Date:       date,
		Produced:   produced,
		Sold:       sold,
		Kind:       store.KindRecord,
	})
}

// Reset clears recorded calls and injected errors
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppendCalls = nil
	m.TxCalls = 0
	m.AppendErr = nil
	m.QueryErr = nil
}
