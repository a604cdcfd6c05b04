package api

import (
	"net/http"

	"github.com/example/stock-ledger/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Handlers      *Handlers
	Logger        *zap.Logger
	ExposeMetrics bool
	WebDir        string
}

func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.Handlers
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.StripSlashes)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if cfg.ExposeMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Materials
	r.Route("/materials", func(r chi.Router) {
		r.Get("/", h.ListMaterials)
		r.Post("/", h.RegisterMaterial)
		r.Get("/{id}", h.GetMaterial)
	})

	// Stock
	r.Route("/stock", func(r chi.Router) {
		r.Post("/", h.RecordStock)
		r.Post("/withdraw", h.WithdrawStock)
		r.Get("/all", h.ListAllStock)
		r.Get("/all/export", h.ExportStock)
		r.Get("/{id}", h.GetStock)
		r.Get("/{id}/events", h.GetStockEvents)
	})

	// Reports
	r.Get("/report", h.GetReport)
	r.Get("/report/export", h.ExportReport)

	// Static files (web UI)
	if cfg.WebDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.WebDir)))
	}

	return r
}
