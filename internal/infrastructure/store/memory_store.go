package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps materials and stock events in process memory
type MemoryStore struct {
	mu        sync.RWMutex
	materials []Material
	events    map[int64][]StockEvent // materialID -> events
	nextEvent int64
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[int64][]StockEvent),
		now:    time.Now,
	}
}

// CreateMaterial stores m and assigns its ID
func (s *MemoryStore) CreateMaterial(ctx context.Context, m *Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = int64(len(s.materials)) + 1
	m.CreatedAt = s.now()
	s.materials = append(s.materials, *m)
	return nil
}

func (s *MemoryStore) GetMaterial(ctx context.Context, id int64) (*Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getMaterial(id)
}

func (s *MemoryStore) ListMaterials(ctx context.Context) ([]Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.materials), nil
}

func (s *MemoryStore) SumStock(ctx context.Context, materialID int64) (Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sumStock(materialID)
}

func (s *MemoryStore) AppendStockEvent(ctx context.Context, event *StockEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendStockEvent(event)
}

func (s *MemoryStore) ListMaterialTotals(ctx context.Context) ([]MaterialTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]MaterialTotals, 0, len(s.materials))
	for _, m := range s.materials {
		t, err := s.sumStock(m.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, MaterialTotals{Material: m, Totals: t})
	}
	return out, nil
}

func (s *MemoryStore) ListStockEvents(ctx context.Context, materialID int64) ([]StockEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events[materialID]), nil
}

// SumByPeriod groups by (name, unit) and drops groups without events in range
func (s *MemoryStore) SumByPeriod(ctx context.Context, start, end time.Time) ([]PeriodTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type groupKey struct{ name, unit string }
	groups := make(map[groupKey]*PeriodTotals)

	for _, m := range s.materials {
		for _, e := range s.events[m.ID] {
			if e.Date.Before(start) || e.Date.After(end) {
				continue
			}
			key := groupKey{name: m.Name, unit: m.Unit}
			row, ok := groups[key]
			if !ok {
				row = &PeriodTotals{Name: m.Name, Unit: m.Unit}
				groups[key] = row
			}
			sum, err := Totals{Produced: row.Produced, Sold: row.Sold}.Add(e.Produced, e.Sold)
			if err != nil {
				return nil, err
			}
			row.Produced, row.Sold = sum.Produced, sum.Sold
		}
	}

	out := make([]PeriodTotals, 0, len(groups))
	for _, row := range groups {
		out = append(out, *row)
	}
	slices.SortFunc(out, func(a, b PeriodTotals) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Unit, b.Unit))
	})
	return out, nil
}

// WithinTx holds the write lock for the whole of fn, so every read and append
// made through tx is isolated from other writers
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Appends are buffered so a failing fn leaves the ledger untouched
	tx := &memoryTx{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for i := range tx.pending {
		if err := s.appendStockEvent(tx.pending[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) Close() {}

func (s *MemoryStore) getMaterial(id int64) (*Material, error) {
	if id < 1 || id > int64(len(s.materials)) {
		return nil, ErrNotFound
	}
	m := s.materials[id-1]
	return &m, nil
}

func (s *MemoryStore) sumStock(materialID int64) (Totals, error) {
	var (
		t   Totals
		err error
	)
	for _, e := range s.events[materialID] {
		if t, err = t.Add(e.Produced, e.Sold); err != nil {
			return Totals{}, err
		}
	}
	return t, nil
}

func (s *MemoryStore) appendStockEvent(event *StockEvent) error {
	if _, err := s.getMaterial(event.MaterialID); err != nil {
		return err
	}
	s.nextEvent++
	event.ID = s.nextEvent
	event.CreatedAt = s.now()
	s.events[event.MaterialID] = append(s.events[event.MaterialID], *event)
	return nil
}

// memoryTx reads through to the locked store and buffers appends until commit
type memoryTx struct {
	store   *MemoryStore
	pending []*StockEvent
}

func (tx *memoryTx) GetMaterial(ctx context.Context, id int64) (*Material, error) {
	return tx.store.getMaterial(id)
}

func (tx *memoryTx) SumStock(ctx context.Context, materialID int64) (Totals, error) {
	t, err := tx.store.sumStock(materialID)
	if err != nil {
		return Totals{}, err
	}
	for _, e := range tx.pending {
		if e.MaterialID == materialID {
			if t, err = t.Add(e.Produced, e.Sold); err != nil {
				return Totals{}, err
			}
		}
	}
	return t, nil
}

func (tx *memoryTx) AppendStockEvent(ctx context.Context, event *StockEvent) error {
	if _, err := tx.store.getMaterial(event.MaterialID); err != nil {
		return err
	}
	tx.pending = append(tx.pending, event)
	return nil
}
