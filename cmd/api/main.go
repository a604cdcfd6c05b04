package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/example/stock-ledger/internal/api"
	"github.com/example/stock-ledger/internal/command"
	"github.com/example/stock-ledger/internal/config"
	"github.com/example/stock-ledger/internal/domain"
	"github.com/example/stock-ledger/internal/domain/material"
	"github.com/example/stock-ledger/internal/domain/stock"
	"github.com/example/stock-ledger/internal/infrastructure/kafka"
	"github.com/example/stock-ledger/internal/infrastructure/store"
	"github.com/example/stock-ledger/internal/logger"
	"github.com/example/stock-ledger/internal/query"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/example.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "stock-ledger: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	var publisher domain.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() { _ = producer.Close() }()
		publisher = producer
		log.Info("event feed enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// Initialize domain services
	materialSvc := material.NewService(st,
		material.WithPublisher(publisher),
		material.WithLogger(log.Named("material")),
	)
	stockSvc := stock.NewService(st,
		stock.WithPublisher(publisher),
		stock.WithLogger(log.Named("stock")),
		stock.WithLocation(cfg.Location()),
	)

	// Initialize handlers
	cmdHandler := command.NewHandler(materialSvc, stockSvc)
	queryHandler := query.NewHandler(materialSvc, stockSvc)
	handlers := api.NewHandlers(cmdHandler, queryHandler, log.Named("api"))

	router := api.NewRouter(api.RouterConfig{
		Handlers:      handlers,
		Logger:        log.Named("http"),
		ExposeMetrics: cfg.Metrics.Enabled,
		WebDir:        cfg.Web.Dir,
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server started", zap.String("addr", cfg.HTTP.Addr), zap.String("storage", cfg.Storage.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("graceful shutdown complete")
	return nil
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Store, error) {
	if cfg.Storage.Driver == config.DriverMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		return store.NewMemoryStore(), nil
	}

	if err := store.Migrate(cfg.Postgres.DSN); err != nil {
		return nil, err
	}
	log.Info("migrations applied")

	pool, err := store.ConnectPostgres(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	log.Info("connected to PostgreSQL")
	return store.NewPostgresStore(pool), nil
}
