package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/prathap24reddy/billsplit-complete/internal/auth"
	"github.com/prathap24reddy/billsplit-complete/internal/config"
	"github.com/prathap24reddy/billsplit-complete/internal/events"
	"github.com/prathap24reddy/billsplit-complete/internal/events/kafka"
	"github.com/prathap24reddy/billsplit-complete/internal/httpapi"
	"github.com/prathap24reddy/billsplit-complete/internal/ledger"
	"github.com/prathap24reddy/billsplit-complete/internal/metrics"
	"github.com/prathap24reddy/billsplit-complete/internal/middleware"
	"github.com/prathap24reddy/billsplit-complete/internal/service"
	"github.com/prathap24reddy/billsplit-complete/internal/storage"
	"github.com/prathap24reddy/billsplit-complete/internal/storage/postgres"
	"github.com/prathap24reddy/billsplit-complete/internal/storage/sqlite"
	"github.com/prathap24reddy/billsplit-complete/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("Storage initialized", "driver", cfg.DBDriver)

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("Publishing ledger events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gateway := ledger.New(store,
		ledger.WithPublisher(publisher),
		ledger.WithMetrics(metrics.New(registry)),
		ledger.WithLogger(logger),
		ledger.WithBalancePolicy(cfg.BalancePolicy),
	)
	defer func() {
		if err := gateway.Close(); err != nil {
			logger.Error("Failed to close gateway", "error", err)
		}
	}()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	ledgerPath, ledgerHandler := service.NewLedgerServiceHandler(
		service.NewLedgerService(gateway, logger),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor()),
	)
	authPath, authHandler := service.NewAuthServiceHandler(
		service.NewAuthService(authenticator, jwtManager, store, logger),
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	)

	router := httpapi.NewRouter(
		httpapi.New(gateway, authenticator, jwtManager, logger),
		httpapi.Mount{Pattern: ledgerPath + "*", Handler: ledgerHandler},
		httpapi.Mount{Pattern: authPath + "*", Handler: authHandler},
		httpapi.Mount{Pattern: "/metrics", Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{})},
	)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		// Wrap with h2c for HTTP/2 without TLS (required for Connect)
		Handler:           h2c.NewHandler(router, &http2.Server{}),
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", server.Addr, "url", fmt.Sprintf("http://localhost:%s", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		store, err := postgres.New(ctx, postgres.Config{
			DatabaseURL: cfg.DatabaseURL,
			MaxConns:    cfg.DBMaxConns,
			TxTimeout:   cfg.TxTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres storage: %w", err)
		}
		return store, nil
	default:
		store, err := sqlite.New(cfg.DBPath, sqlite.WithTxTimeout(cfg.TxTimeout))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize sqlite storage: %w", err)
		}
		return store, nil
	}
}
