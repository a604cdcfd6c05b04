package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/example/stock-ledger/internal/report"
)

func (h *Handlers) ExportReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, end := q.Get("start_date"), q.Get("end_date")

	rows, err := h.queryHandler.Report(r.Context(), start, end)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteReport(&buf, start, end, rows); err != nil {
		h.respondError(w, r, fmt.Errorf("render report workbook: %w", err))
		return
	}
	writeWorkbook(w, fmt.Sprintf("report_%s_%s.xlsx", start, end), buf.Bytes())
}

func (h *Handlers) ExportStock(w http.ResponseWriter, r *http.Request) {
	levels, err := h.queryHandler.ListAllStock(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteStockLevels(&buf, levels); err != nil {
		h.respondError(w, r, fmt.Errorf("render stock workbook: %w", err))
		return
	}
	writeWorkbook(w, "stock.xlsx", buf.Bytes())
}

func writeWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
