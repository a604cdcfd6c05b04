package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/stock-ledger/internal/domain"
	"github.com/example/stock-ledger/internal/domain/material"
	"github.com/example/stock-ledger/internal/infrastructure/store"
	"github.com/example/stock-ledger/internal/metrics"
	"go.uber.org/zap"
)

var ErrInsufficientStock = errors.New("insufficient stock")

type StockEvent = store.StockEvent

// Balance is the derived stock of one material
type Balance struct {
	Material     material.Material
	CurrentStock int64
}

// StockLevel is one row of the all-materials stock listing
type StockLevel struct {
	Name         string `json:"name"`
	Unit         string `json:"unit"`
	CurrentStock int64  `json:"current_stock"`
}

// ReportRow aggregates production and sales of one (name, unit) group over a period
type ReportRow struct {
	Name          string `json:"name"`
	Unit          string `json:"unit"`
	TotalProduced int64  `json:"total_produced"`
	TotalSold     int64  `json:"total_sold"`
}

type Service struct {
	store     store.Store
	publisher domain.Publisher
	log       *zap.Logger
	location  *time.Location
	now       func() time.Time
}

type Option func(*Service)

func WithPublisher(p domain.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithLocation sets the timezone that decides which calendar day "today" is
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.location = loc }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:    st,
		log:      zap.NewNop(),
		location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// currentStock is initial stock plus everything produced minus everything sold.
// It fails with store.ErrOverflow when the result leaves the int64 range.
func currentStock(m material.Material, t store.Totals) (int64, error) {
	stock, err := store.CheckedAdd(m.InitialStock, t.Produced)
	if err != nil {
		return 0, err
	}
	return store.CheckedSub(stock, t.Sold)
}

// checkEntryRange rejects an entry that would push a running total or the
// balance out of the int64 range
func checkEntryRange(m material.Material, t store.Totals, produced, sold int64) error {
	next, err := t.Add(produced, 0)
	if err != nil {
		return domain.Invalid("produced", "exceeds the largest recordable total")
	}
	if next, err = next.Add(0, sold); err != nil {
		return domain.Invalid("sold", "exceeds the largest recordable total")
	}
	if _, err := currentStock(m, next); err != nil {
		return domain.Invalid("produced", "exceeds the largest recordable stock")
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return material.ErrMaterialNotFound
	}
	return err
}

// RecordEvent appends a production/sale entry. Recorded events are historical
// fact and are not checked against the current stock, only against the range
// of the running totals.
func (s *Service) RecordEvent(ctx context.Context, materialID int64, date string, produced, sold int64) (*StockEvent, error) {
	day, err := ParseDate("date", date)
	if err != nil {
		return nil, err
	}
	if produced < 0 {
		return nil, domain.Invalid("produced", "must not be negative")
	}
	if sold < 0 {
		return nil, domain.Invalid("sold", "must not be negative")
	}

	event := &StockEvent{
		MaterialID: materialID,
		Date:       day,
		Produced:   produced,
		Sold:       sold,
		Kind:       store.KindRecord,
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx store.Ledger) error {
		m, err := tx.GetMaterial(ctx, materialID)
		if err != nil {
			return notFound(err)
		}
		totals, err := tx.SumStock(ctx, materialID)
		if err != nil {
			return err
		}
		if err := checkEntryRange(*m, totals, produced, sold); err != nil {
			return err
		}
		return notFound(tx.AppendStockEvent(ctx, event))
	})
	if err != nil {
		return nil, err
	}
	metrics.StockEvents.WithLabelValues(store.KindRecord).Inc()

	s.log.Info("stock event recorded",
		zap.Int64("material_id", materialID),
		zap.Int64("event_id", event.ID),
		zap.String("date", FormatDate(day)),
		zap.Int64("produced", produced),
		zap.Int64("sold", sold),
	)
	domain.Emit(ctx, s.publisher, s.log, materialID, EventStockRecorded, StockRecorded{
		MaterialID: materialID,
		EventID:    event.ID,
		Date:       FormatDate(day),
		Produced:   produced,
		Sold:       sold,
		RecordedAt: event.CreatedAt,
	})
	return event, nil
}

func (s *Service) CurrentStock(ctx context.Context, materialID int64) (*Balance, error) {
	m, err := s.store.GetMaterial(ctx, materialID)
	if err != nil {
		return nil, notFound(err)
	}
	totals, err := s.store.SumStock(ctx, materialID)
	if err != nil {
		return nil, err
	}
	current, err := currentStock(*m, totals)
	if err != nil {
		return nil, fmt.Errorf("balance of material %d: %w", materialID, err)
	}
	return &Balance{Material: *m, CurrentStock: current}, nil
}

// Withdraw removes quantity from stock as a sale dated today. The balance check
// and the append share one transaction, so concurrent withdrawals cannot overdraw.
func (s *Service) Withdraw(ctx context.Context, materialID, quantity int64) (*StockEvent, error) {
	if quantity <= 0 {
		return nil, domain.Invalid("quantity", "must be a positive integer")
	}

	var (
		event     *StockEvent
		remaining int64
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx store.Ledger) error {
		m, err := tx.GetMaterial(ctx, materialID)
		if err != nil {
			return notFound(err)
		}
		totals, err := tx.SumStock(ctx, materialID)
		if err != nil {
			return err
		}

		available, err := currentStock(*m, totals)
		if err != nil {
			return fmt.Errorf("balance of material %d: %w", materialID, err)
		}
		if quantity > available {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientStock, quantity, available)
		}

		event = &StockEvent{
			MaterialID: materialID,
			Date:       calendarDay(s.now(), s.location),
			Produced:   0,
			Sold:       quantity,
			Kind:       store.KindWithdrawal,
		}
		if err := tx.AppendStockEvent(ctx, event); err != nil {
			return notFound(err)
		}
		remaining = available - quantity
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			metrics.WithdrawalsRejected.Inc()
			s.log.Info("withdrawal rejected", zap.Int64("material_id", materialID), zap.Error(err))
		}
		return nil, err
	}
	metrics.StockEvents.WithLabelValues(store.KindWithdrawal).Inc()

	s.log.Info("stock withdrawn",
		zap.Int64("material_id", materialID),
		zap.Int64("event_id", event.ID),
		zap.Int64("quantity", quantity),
		zap.Int64("remaining", remaining),
	)
	domain.Emit(ctx, s.publisher, s.log, materialID, EventStockWithdrawn, StockWithdrawn{
		MaterialID:     materialID,
		EventID:        event.ID,
		Date:           FormatDate(event.Date),
		Quantity:       quantity,
		RemainingStock: remaining,
		WithdrawnAt:    event.CreatedAt,
	})
	return event, nil
}

// Report sums production and sales per (material name, unit) over events dated
// within [startDate, endDate]. A start after the end yields no rows.
func (s *Service) Report(ctx context.Context, startDate, endDate string) ([]ReportRow, error) {
	start, err := ParseDate("start_date", startDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate("end_date", endDate)
	if err != nil {
		return nil, err
	}

	rows := make([]ReportRow, 0)
	if start.After(end) {
		return rows, nil
	}

	totals, err := s.store.SumByPeriod(ctx, start, end)
	if err != nil {
		return nil, err
	}
	for _, t := range totals {
		rows = append(rows, ReportRow{
			Name:          t.Name,
			Unit:          t.Unit,
			TotalProduced: t.Produced,
			TotalSold:     t.Sold,
		})
	}
	return rows, nil
}

// ListAllCurrentStock returns every registered material once, including those
// without events
func (s *Service) ListAllCurrentStock(ctx context.Context) ([]StockLevel, error) {
	all, err := s.store.ListMaterialTotals(ctx)
	if err != nil {
		return nil, err
	}
	levels := make([]StockLevel, 0, len(all))
	for _, mt := range all {
		current, err := currentStock(mt.Material, mt.Totals)
		if err != nil {
			return nil, fmt.Errorf("balance of material %d: %w", mt.ID, err)
		}
		levels = append(levels, StockLevel{
			Name:         mt.Name,
			Unit:         mt.Unit,
			CurrentStock: current,
		})
	}
	return levels, nil
}

// History lists the ledger entries of one material in the order they were made
func (s *Service) History(ctx context.Context, materialID int64) ([]StockEvent, error) {
	if _, err := s.store.GetMaterial(ctx, materialID); err != nil {
		return nil, notFound(err)
	}
	return s.store.ListStockEvents(ctx, materialID)
}
