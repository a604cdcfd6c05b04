package report

import (
	"fmt"
	"io"

	"github.com/example/stock-ledger/internal/domain/stock"
	"github.com/xuri/excelize/v2"
)

const (
	ReportSheet = "Report"
	StockSheet  = "Stock"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// WriteReport renders period totals as a workbook: a title row naming the
// period, a header row, then one row per (name, unit) group
func WriteReport(w io.Writer, startDate, endDate string, rows []stock.ReportRow) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), ReportSheet); err != nil {
		return err
	}

	title := []any{fmt.Sprintf("Production and sales %s - %s", startDate, endDate)}
	if err := f.SetSheetRow(ReportSheet, "A1", &title); err != nil {
		return fmt.Errorf("write title: %w", err)
	}
	header := []any{"name", "unit", "total_produced", "total_sold"}
	if err := writeHeader(f, ReportSheet, 2, header); err != nil {
		return err
	}

	for i, r := range rows {
		line := []any{r.Name, r.Unit, r.TotalProduced, r.TotalSold}
		if err := writeRow(f, ReportSheet, i+3, line); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// WriteStockLevels renders the current stock of every material
func WriteStockLevels(w io.Writer, levels []stock.StockLevel) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), StockSheet); err != nil {
		return err
	}

	header := []any{"name", "unit", "current_stock"}
	if err := writeHeader(f, StockSheet, 1, header); err != nil {
		return err
	}
	for i, l := range levels {
		line := []any{l.Name, l.Unit, l.CurrentStock}
		if err := writeRow(f, StockSheet, i+2, line); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeHeader(f *excelize.File, sheet string, row int, header []any) error {
	if err := writeRow(f, sheet, row, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	first, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, first, last, bold)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
