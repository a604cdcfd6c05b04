package material

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/example/stock-ledger/internal/domain"
	"github.com/example/stock-ledger/internal/infrastructure/store"
	"go.uber.org/zap"
)

var ErrMaterialNotFound = errors.New("material not found")

type Material = store.Material

type Service struct {
	store     store.Store
	publisher domain.Publisher
	log       *zap.Logger
}

type Option func(*Service)

func WithPublisher(p domain.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{store: st, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates and persists a new material
func (s *Service) Register(ctx context.Context, name, description string, initialStock int64, unit string) (*Material, error) {
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)

	if name == "" {
		return nil, domain.Invalid("name", "must not be empty")
	}
	if unit == "" {
		return nil, domain.Invalid("unit", "must not be empty")
	}
	if initialStock < 0 {
		return nil, domain.Invalid("initial_stock", "must not be negative")
	}

	m := &Material{
		Name:         name,
		Description:  strings.TrimSpace(description),
		InitialStock: initialStock,
		Unit:         unit,
	}
	if err := s.store.CreateMaterial(ctx, m); err != nil {
		return nil, fmt.Errorf("register material: %w", err)
	}

	s.log.Info("material registered",
		zap.Int64("material_id", m.ID),
		zap.String("name", m.Name),
		zap.String("unit", m.Unit),
	)
	domain.Emit(ctx, s.publisher, s.log, m.ID, EventMaterialRegistered, MaterialRegistered{
		MaterialID:   m.ID,
		Name:         m.Name,
		Unit:         m.Unit,
		InitialStock: m.InitialStock,
		RegisteredAt: m.CreatedAt,
	})
	return m, nil
}

// List returns all materials in registration order
func (s *Service) List(ctx context.Context) ([]Material, error) {
	return s.store.ListMaterials(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Material, error) {
	m, err := s.store.GetMaterial(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrMaterialNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}
