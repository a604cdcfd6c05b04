package query

import (
	"github.com/example/stock-ledger/internal/domain/material"
	"github.com/example/stock-ledger/internal/domain/stock"
)

// MaterialReadModel is the API view of a material
type MaterialReadModel struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	InitialStock int64  `json:"initial_stock"`
	Unit         string `json:"unit"`
}

// CurrentStockReadModel is the API view of one material's balance
type CurrentStockReadModel struct {
	Material     string `json:"material"`
	Unit         string `json:"unit"`
	CurrentStock int64  `json:"current_stock"`
}

// StockEventReadModel is the API view of a ledger entry
type StockEventReadModel struct {
	ID         int64  `json:"id"`
	MaterialID int64  `json:"material_id"`
	Date       string `json:"date"`
	Produced   int64  `json:"produced"`
	Sold       int64  `json:"sold"`
	Kind       string `json:"kind"`
}

type StockLevelReadModel = stock.StockLevel
type ReportRowReadModel = stock.ReportRow

func toMaterialReadModel(m material.Material) MaterialReadModel {
	return MaterialReadModel{
		ID:           m.ID,
		Name:         m.Name,
		Description:  m.Description,
		InitialStock: m.InitialStock,
		Unit:         m.Unit,
	}
}

func toStockEventReadModel(e stock.StockEvent) StockEventReadModel {
	return StockEventReadModel{
		ID:         e.ID,
		MaterialID: e.MaterialID,
		Date:       stock.FormatDate(e.Date),
		Produced:   e.Produced,
		Sold:       e.Sold,
		Kind:       e.Kind,
	}
}
