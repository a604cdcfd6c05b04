package query

import (
	"context"

	"github.com/example/stock-ledger/internal/domain/material"
	"github.com/example/stock-ledger/internal/domain/stock"
)

type Handler struct {
	materialSvc *material.Service
	stockSvc    *stock.Service
}

func NewHandler(materialSvc *material.Service, stockSvc *stock.Service) *Handler {
	return &Handler{
		materialSvc: materialSvc,
		stockSvc:    stockSvc,
	}
}

// Materials
func (h *Handler) ListMaterials(ctx context.Context) ([]MaterialReadModel, error) {
	materials, err := h.materialSvc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MaterialReadModel, 0, len(materials))
	for _, m := range materials {
		out = append(out, toMaterialReadModel(m))
	}
	return out, nil
}

func (h *Handler) GetMaterial(ctx context.Context, id int64) (*MaterialReadModel, error) {
	m, err := h.materialSvc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rm := toMaterialReadModel(*m)
	return &rm, nil
}

// Stock
func (h *Handler) GetCurrentStock(ctx context.Context, materialID int64) (*CurrentStockReadModel, error) {
	b, err := h.stockSvc.CurrentStock(ctx, materialID)
	if err != nil {
		return nil, err
	}
	return &CurrentStockReadModel{
		Material:     b.Material.Name,
		Unit:         b.Material.Unit,
		CurrentStock: b.CurrentStock,
	}, nil
}

func (h *Handler) ListStockEvents(ctx context.Context, materialID int64) ([]StockEventReadModel, error) {
	events, err := h.stockSvc.History(ctx, materialID)
	if err != nil {
		return nil, err
	}
	out := make([]StockEventReadModel, 0, len(events))
	for _, e := range events {
		out = append(out, toStockEventReadModel(e))
	}
	return out, nil
}

func (h *Handler) ListAllStock(ctx context.Context) ([]StockLevelReadModel, error) {
	return h.stockSvc.ListAllCurrentStock(ctx)
}

// Reports
func (h *Handler) Report(ctx context.Context, startDate, endDate string) ([]ReportRowReadModel, error) {
	return h.stockSvc.Report(ctx, startDate, endDate)
}
