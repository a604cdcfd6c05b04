package store

import (
	"context"
	"time"
)

// Ledger is the subset of storage operations available inside a transaction
type Ledger interface {
	GetMaterial(ctx context.Context, id int64) (*Material, error)
	SumStock(ctx context.Context, materialID int64) (Totals, error)
	AppendStockEvent(ctx context.Context, event *StockEvent) error
}

// Store persists materials and their stock events
type Store interface {
	Ledger

	CreateMaterial(ctx context.Context, m *Material) error
	ListMaterials(ctx context.Context) ([]Material, error)
	ListMaterialTotals(ctx context.Context) ([]MaterialTotals, error)
	ListStockEvents(ctx context.Context, materialID int64) ([]StockEvent, error)

	// SumByPeriod aggregates events dated within [start, end], both inclusive
	SumByPeriod(ctx context.Context, start, end time.Time) ([]PeriodTotals, error)

	// WithinTx runs fn in a single isolated unit of work. A material read through
	// the given Ledger stays locked against concurrent writers until fn returns.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Ledger) error) error

	Close()
}
