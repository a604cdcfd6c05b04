package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	createdAt = time.Date(2024, 1, 2, 8, 30, 0, 0, time.UTC)

	materialColumns = []string{"id", "name", "description", "initial_stock", "unit", "created_at"}
	totalsColumns   = []string{"produced", "sold"}
)

func newTestPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return NewPostgresStore(mock), mock
}

func sqlPattern(s string) string {
	return regexp.QuoteMeta(s)
}

func steelRow() *pgxmock.Rows {
	return pgxmock.NewRows(materialColumns).AddRow(int64(1), "Steel", "", int64(100), "kg", createdAt)
}

// ============================================
// Material Tests
// ============================================

func TestPostgresStore_CreateMaterial(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	mock.ExpectQuery(sqlPattern("INSERT INTO materials (name, description, initial_stock, unit) VALUES ($1, $2, $3, $4) RETURNING id, created_at")).
		WithArgs("Steel", "sheet", int64(100), "kg").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), createdAt))

	m := Material{Name: "Steel", Description: "sheet", InitialStock: 100, Unit: "kg"}
	err := s.CreateMaterial(context.Background(), &m)

	require.NoError(t, err)
	assert.Equal(t, int64(7), m.ID)
	assert.Equal(t, createdAt, m.CreatedAt)
}

func TestPostgresStore_GetMaterial(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	mock.ExpectQuery(sqlPattern("FROM materials WHERE id = $1") + "$").
		WithArgs(int64(1)).
		WillReturnRows(steelRow())

	m, err := s.GetMaterial(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "Steel", m.Name)
	assert.Equal(t, int64(100), m.InitialStock)
}

func TestPostgresStore_GetMaterial_NotFound(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	mock.ExpectQuery(sqlPattern("FROM materials WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetMaterial(context.Background(), 3)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_ListMaterialTotals_LeftJoinsEvents(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	mock.ExpectQuery(sqlPattern("FROM materials m LEFT JOIN stock_events e ON e.material_id = m.id GROUP BY m.id ORDER BY m.id")).
		WillReturnRows(pgxmock.NewRows(append(append([]string{}, materialColumns...), totalsColumns...)).
			AddRow(int64(1), "Steel", "", int64(100), "kg", createdAt, int64(50), int64(20)).
			AddRow(int64(2), "Bolts", "", int64(12), "pcs", createdAt, int64(0), int64(0)))

	all, err := s.ListMaterialTotals(context.Background())

	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, Totals{Produced: 50, Sold: 20}, all[0].Totals)
	assert.Equal(t, "Bolts", all[1].Name)
	assert.Equal(t, Totals{}, all[1].Totals)
}

func TestPostgresStore_ListMaterialTotals_Overflow(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	mock.ExpectQuery(sqlPattern("FROM materials m LEFT JOIN stock_events")).
		WillReturnError(&pgconn.PgError{Code: pgNumericOutOfRange, Message: "bigint out of range"})

	_, err := s.ListMaterialTotals(context.Background())

	assert.ErrorIs(t, err, ErrOverflow)
}

// ============================================
// Ledger Tests
// ============================================

func TestPostgresStore_SumStock(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	mock.ExpectQuery(sqlPattern("SELECT COALESCE(SUM(produced), 0)::bigint, COALESCE(SUM(sold), 0)::bigint FROM stock_events WHERE material_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(totalsColumns).AddRow(int64(50), int64(30)))

	totals, err := s.SumStock(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, Totals{Produced: 50, Sold: 30}, totals)
}

func TestPostgresStore_SumStock_Overflow(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	mock.ExpectQuery(sqlPattern("FROM stock_events WHERE material_id = $1")).
		WithArgs(int64(1)).
		WillReturnError(&pgconn.PgError{Code: pgNumericOutOfRange, Message: "bigint out of range"})

	_, err := s.SumStock(context.Background(), 1)

	assert.ErrorIs(t, err, ErrOverflow)
}

func TestPostgresStore_AppendStockEvent(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	day := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(sqlPattern("INSERT INTO stock_events (material_id, date, produced, sold, kind) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at")).
		WithArgs(int64(1), day, int64(50), int64(0), KindRecord).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), createdAt))

	event := &StockEvent{MaterialID: 1, Date: day, Produced: 50, Kind: KindRecord}
	err := s.AppendStockEvent(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, int64(11), event.ID)
	assert.Equal(t, createdAt, event.CreatedAt)
}

func TestPostgresStore_AppendStockEvent_UnknownMaterial(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	mock.ExpectQuery(sqlPattern("INSERT INTO stock_events")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation, Message: "violates foreign key constraint"})

	err := s.AppendStockEvent(context.Background(), &StockEvent{MaterialID: 9, Kind: KindRecord})

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostgresStore_SumByPeriod(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(sqlPattern("FROM materials m JOIN stock_events e ON e.material_id = m.id WHERE e.date BETWEEN $1 AND $2 GROUP BY m.name, m.unit ORDER BY m.name, m.unit")).
		WithArgs(start, end).
		WillReturnRows(pgxmock.NewRows([]string{"name", "unit", "produced", "sold"}).
			AddRow("Steel", "kg", int64(12), int64(3)).
			AddRow("Steel", "t", int64(1), int64(0)))

	rows, err := s.SumByPeriod(context.Background(), start, end)

	require.NoError(t, err)
	assert.Equal(t, []PeriodTotals{
		{Name: "Steel", Unit: "kg", Produced: 12, Sold: 3},
		{Name: "Steel", Unit: "t", Produced: 1, Sold: 0},
	}, rows)
}

// ============================================
// Transaction Tests
// ============================================

func TestPostgresStore_WithinTx_LocksMaterialAndCommits(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	day := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlPattern("FROM materials WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(1)).
		WillReturnRows(steelRow())
	mock.ExpectQuery(sqlPattern("FROM stock_events WHERE material_id = $1")).
		WithArgs(int64(1)).
		WillReturnRows(pgxmock.NewRows(totalsColumns).AddRow(int64(50), int64(0)))
	mock.ExpectQuery(sqlPattern("INSERT INTO stock_events")).
		WithArgs(int64(1), day, int64(0), int64(150), KindWithdrawal).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(2), createdAt))
	mock.ExpectCommit()

	event := &StockEvent{MaterialID: 1, Date: day, Sold: 150, Kind: KindWithdrawal}
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx Ledger) error {
		m, err := tx.GetMaterial(ctx, 1)
		if err != nil {
			return err
		}
		totals, err := tx.SumStock(ctx, 1)
		if err != nil {
			return err
		}
		if m.InitialStock+totals.Produced-totals.Sold < event.Sold {
			return errors.New("insufficient")
		}
		return tx.AppendStockEvent(ctx, event)
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), event.ID)
}

func TestPostgresStore_WithinTx_RollsBackOnError(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	rejected := errors.New("rejected")

	mock.ExpectBegin()
	mock.ExpectQuery(sqlPattern("FROM materials WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(1)).
		WillReturnRows(steelRow())
	mock.ExpectRollback()

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx Ledger) error {
		if _, err := tx.GetMaterial(ctx, 1); err != nil {
			return err
		}
		return rejected
	})

	assert.ErrorIs(t, err, rejected)
}

func TestPostgresStore_WithinTx_BeginFails(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

	called := false
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx Ledger) error {
		called = true
		return nil
	})

	assert.ErrorContains(t, err, "begin tx")
	assert.False(t, called)
}

func TestPostgresStore_Close(t *testing.T) {
	s, mock := newTestPostgresStore(t)
	mock.ExpectClose()

	s.Close()
}
