package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/example/stock-ledger/internal/command"
	"github.com/example/stock-ledger/internal/domain"
	"github.com/example/stock-ledger/internal/domain/material"
	"github.com/example/stock-ledger/internal/query"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	log          *zap.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, log *zap.Logger) *Handlers {
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		log:          log,
	}
}

type createdResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// Material Handlers

func (h *Handlers) RegisterMaterial(w http.ResponseWriter, r *http.Request) {
	var cmd command.RegisterMaterial
	if !h.decode(w, r, &cmd) {
		return
	}

	m, err := h.cmdHandler.RegisterMaterial(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, createdResponse{Message: "material created", ID: m.ID})
}

func (h *Handlers) ListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.queryHandler.ListMaterials(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, materials)
}

func (h *Handlers) GetMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := h.materialID(w, r)
	if !ok {
		return
	}

	m, err := h.queryHandler.GetMaterial(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}

// Stock Handlers

func (h *Handlers) RecordStock(w http.ResponseWriter, r *http.Request) {
	var cmd command.RecordStock
	if !h.decode(w, r, &cmd) {
		return
	}

	event, err := h.cmdHandler.RecordStock(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, createdResponse{Message: "stock event recorded", ID: event.ID})
}

func (h *Handlers) GetStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.materialID(w, r)
	if !ok {
		return
	}

	balance, err := h.queryHandler.GetCurrentStock(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, balance)
}

func (h *Handlers) GetStockEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := h.materialID(w, r)
	if !ok {
		return
	}

	events, err := h.queryHandler.ListStockEvents(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, events)
}

func (h *Handlers) WithdrawStock(w http.ResponseWriter, r *http.Request) {
	var cmd command.WithdrawStock
	if !h.decode(w, r, &cmd) {
		return
	}

	event, err := h.cmdHandler.WithdrawStock(r.Context(), cmd)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, createdResponse{Message: "stock withdrawn", ID: event.ID})
}

func (h *Handlers) ListAllStock(w http.ResponseWriter, r *http.Request) {
	levels, err := h.queryHandler.ListAllStock(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, levels)
}

// Report Handlers

func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.queryHandler.Report(r.Context(), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

// Helper functions

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(w, r, domain.Invalid("body", "must not exceed 1 MiB"))
			return false
		}
		h.respondError(w, r, domain.Invalid("body", "must be a valid JSON object"))
		return false
	}
	return true
}

// materialID reads the {id} path segment; anything that is not an integer
// cannot name a material and is answered as not found
func (h *Handlers) materialID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, r, material.ErrMaterialNotFound)
		return 0, false
	}
	return id, true
}
