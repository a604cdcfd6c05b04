package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/stock-ledger/internal/domain"
	"github.com/example/stock-ledger/internal/domain/material"
	"github.com/example/stock-ledger/internal/domain/stock"
	"go.uber.org/zap"
)

// Error classification codes returned to clients
const (
	CodeValidation        = "validation_error"
	CodeMaterialNotFound  = "material_not_found"
	CodeInsufficientStock = "insufficient_stock"
	CodeInternal          = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError maps domain errors onto status codes. Unclassified errors are
// logged and hidden behind a generic message.
func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, CodeValidation, verr.Error())
	case errors.Is(err, material.ErrMaterialNotFound):
		writeError(w, http.StatusNotFound, CodeMaterialNotFound, material.ErrMaterialNotFound.Error())
	case errors.Is(err, stock.ErrInsufficientStock):
		writeError(w, http.StatusBadRequest, CodeInsufficientStock, err.Error())
	default:
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
