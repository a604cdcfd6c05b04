package command

import (
	"context"

	"github.com/example/stock-ledger/internal/domain/material"
	"github.com/example/stock-ledger/internal/domain/stock"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	materialSvc *material.Service
	stockSvc    *stock.Service
	validator   *validator.Validate
}

func NewHandler(materialSvc *material.Service, stockSvc *stock.Service) *Handler {
	return &Handler{
		materialSvc: materialSvc,
		stockSvc:    stockSvc,
		validator:   newValidator(),
	}
}

// RegisterMaterial creates a new material
func (h *Handler) RegisterMaterial(ctx context.Context, cmd RegisterMaterial) (*material.Material, error) {
	if err := h.validate(cmd); err != nil {
		return nil, err
	}
	return h.materialSvc.Register(ctx, cmd.Name, cmd.Description, *cmd.InitialStock, cmd.Unit)
}

// RecordStock appends a production/sale entry for a material
func (h *Handler) RecordStock(ctx context.Context, cmd RecordStock) (*stock.StockEvent, error) {
	if err := h.validate(cmd); err != nil {
		return nil, err
	}
	return h.stockSvc.RecordEvent(ctx, *cmd.MaterialID, cmd.Date, *cmd.Produced, *cmd.Sold)
}

// WithdrawStock takes quantity out of stock if enough is available
func (h *Handler) WithdrawStock(ctx context.Context, cmd WithdrawStock) (*stock.StockEvent, error) {
	if err := h.validate(cmd); err != nil {
		return nil, err
	}
	return h.stockSvc.Withdraw(ctx, *cmd.MaterialID, *cmd.Quantity)
}
