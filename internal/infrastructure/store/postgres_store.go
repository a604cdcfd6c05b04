package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgForeignKeyViolation = "23503"
	pgNumericOutOfRange   = "22003"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is the part of *pgxpool.Pool the store needs
type Pool interface {
	querier
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// PostgresStore stores materials and stock events in PostgreSQL
type PostgresStore struct {
	pool Pool
	pgLedger
}

func NewPostgresStore(pool Pool) *PostgresStore {
	return &PostgresStore{
		pool:     pool,
		pgLedger: pgLedger{q: pool},
	}
}

func (s *PostgresStore) CreateMaterial(ctx context.Context, m *Material) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO materials (name, description, initial_stock, unit)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, m.Name, m.Description, m.InitialStock, m.Unit).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListMaterials(ctx context.Context) ([]Material, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, initial_stock, unit, created_at
		FROM materials
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	out := make([]Material, 0)
	for rows.Next() {
		var m Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.InitialStock, &m.Unit, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListMaterialTotals(ctx context.Context) ([]MaterialTotals, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.id, m.name, m.description, m.initial_stock, m.unit, m.created_at,
		       COALESCE(SUM(e.produced), 0)::bigint,
		       COALESCE(SUM(e.sold), 0)::bigint
		FROM materials m
		LEFT JOIN stock_events e ON e.material_id = m.id
		GROUP BY m.id
		ORDER BY m.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list material totals: %w", classify(err))
	}
	defer rows.Close()

	out := make([]MaterialTotals, 0)
	for rows.Next() {
		var mt MaterialTotals
		if err := rows.Scan(
			&mt.ID, &mt.Name, &mt.Description, &mt.InitialStock, &mt.Unit, &mt.CreatedAt,
			&mt.Produced, &mt.Sold,
		); err != nil {
			return nil, err
		}
		out = append(out, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list material totals: %w", classify(err))
	}
	return out, nil
}

func (s *PostgresStore) ListStockEvents(ctx context.Context, materialID int64) ([]StockEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, material_id, date, produced, sold, kind, created_at
		FROM stock_events
		WHERE material_id = $1
		ORDER BY id
	`, materialID)
	if err != nil {
		return nil, fmt.Errorf("list stock events: %w", err)
	}
	defer rows.Close()

	out := make([]StockEvent, 0)
	for rows.Next() {
		var e StockEvent
		if err := rows.Scan(&e.ID, &e.MaterialID, &e.Date, &e.Produced, &e.Sold, &e.Kind, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SumByPeriod(ctx context.Context, start, end time.Time) ([]PeriodTotals, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT m.name, m.unit,
		       COALESCE(SUM(e.produced), 0)::bigint,
		       COALESCE(SUM(e.sold), 0)::bigint
		FROM materials m
		JOIN stock_events e ON e.material_id = m.id
		WHERE e.date BETWEEN $1 AND $2
		GROUP BY m.name, m.unit
		ORDER BY m.name, m.unit
	`, start, end)
	if err != nil {
		return nil, fmt.Errorf("sum by period: %w", classify(err))
	}
	defer rows.Close()

	out := make([]PeriodTotals, 0)
	for rows.Next() {
		var row PeriodTotals
		if err := rows.Scan(&row.Name, &row.Unit, &row.Produced, &row.Sold); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sum by period: %w", classify(err))
	}
	return out, nil
}

// WithinTx runs fn in a transaction. GetMaterial inside fn takes a row lock
// (SELECT ... FOR UPDATE), serializing writers on the same material.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Ledger) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &pgLedger{q: tx, forUpdate: true}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

// pgLedger implements Ledger on top of a pool or a transaction
type pgLedger struct {
	q         querier
	forUpdate bool
}

func (l *pgLedger) GetMaterial(ctx context.Context, id int64) (*Material, error) {
	q := `
		SELECT id, name, description, initial_stock, unit, created_at
		FROM materials
		WHERE id = $1
	`
	if l.forUpdate {
		q += " FOR UPDATE"
	}

	var m Material
	err := l.q.QueryRow(ctx, q, id).Scan(&m.ID, &m.Name, &m.Description, &m.InitialStock, &m.Unit, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get material %d: %w", id, err)
	}
	return &m, nil
}

func (l *pgLedger) SumStock(ctx context.Context, materialID int64) (Totals, error) {
	var t Totals
	err := l.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(produced), 0)::bigint, COALESCE(SUM(sold), 0)::bigint
		FROM stock_events
		WHERE material_id = $1
	`, materialID).Scan(&t.Produced, &t.Sold)
	if err != nil {
		return Totals{}, fmt.Errorf("sum stock for material %d: %w", materialID, classify(err))
	}
	return t, nil
}

func (l *pgLedger) AppendStockEvent(ctx context.Context, event *StockEvent) error {
	err := l.q.QueryRow(ctx, `
		INSERT INTO stock_events (material_id, date, produced, sold, kind)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, event.MaterialID, event.Date, event.Produced, event.Sold, event.Kind).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		if errors.Is(classify(err), ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("insert stock event: %w", err)
	}
	return nil
}

// classify maps constraint and range violations onto store errors
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return ErrNotFound
		case pgNumericOutOfRange:
			return ErrOverflow
		}
	}
	return err
}

// ConnectPostgres opens a connection pool and verifies it with a ping
func ConnectPostgres(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	// Configure connection pool
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MinConns = 1
	cfg.MaxConnLifetime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
