package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/kevin07696/checkout-service/internal/adapters/channel"
	"github.com/kevin07696/checkout-service/internal/adapters/gateway"
	"github.com/kevin07696/checkout-service/internal/adapters/postgres"
	"github.com/kevin07696/checkout-service/internal/config"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
	checkoutHandler "github.com/kevin07696/checkout-service/internal/handlers/checkout"
	internalmiddleware "github.com/kevin07696/checkout-service/internal/middleware"
	checkoutService "github.com/kevin07696/checkout-service/internal/services/checkout"
	pkghttp "github.com/kevin07696/checkout-service/pkg/http"
	"github.com/kevin07696/checkout-service/pkg/logging"
	"github.com/kevin07696/checkout-service/pkg/middleware"
	"github.com/kevin07696/checkout-service/pkg/observability"
	"github.com/kevin07696/checkout-service/pkg/shutdown"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	logger, err := logging.NewLogger(cfg.Logger.Development, cfg.Logger.Level)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()
	zapLogger := logger.Zap()

	logger.Info("starting checkout service",
		ports.String("addr", cfg.Server.Addr),
		ports.Int("metrics_port", cfg.Server.MetricsPort))

	shutdownMgr := shutdown.NewManager(zapLogger, 30*time.Second)

	// Optional attempt audit log
	var recorder ports.AttemptRecorder
	var dbPool *pgxpool.Pool
	if cfg.Database.URL != "" {
		dbPool, err = initDatabase(cfg)
		if err != nil {
			logger.Error("failed to connect attempt audit database", ports.Err(err))
			panic(err)
		}
		recorder = postgres.NewAttemptRepository(dbPool)
		shutdownMgr.Register("database", func(ctx context.Context) error {
			dbPool.Close()
			return nil
		})
		logger.Info("attempt audit log enabled")
	}

	// Submission gateway client
	gatewayClient := gateway.NewSubmitAdapter(
		cfg.Gateway.BaseURL,
		pkghttp.NewHTTPClient(pkghttp.GatewayClientConfig(), cfg.Gateway.Timeout),
		logger,
	)

	// Channel hub with origin verification and rate limiting
	verifier := buildVerifier(cfg)
	limiter := middleware.NewRateLimiter(cfg.Server.ChannelRatePerSec, cfg.Server.ChannelRateBurst)
	shutdownMgr.Register("rate-limiter", func(ctx context.Context) error {
		limiter.Shutdown()
		return nil
	})
	hub := channel.NewHub(verifier, limiter, logger)

	// Checkout state machine
	service := checkoutService.NewService(checkoutService.Config{
		PublicKey:      cfg.Checkout.PublicKey,
		InitGraceDelay: cfg.Checkout.InitGraceDelay,
		AutoCloseDelay: cfg.Checkout.AutoCloseDelay,
		SubmitTimeout:  cfg.Gateway.Timeout,
	}, gatewayClient, recorder, logger)
	// Every close path, auto-close included, unbinds the hub entry.
	service.OnClose(hub.Remove)
	shutdownMgr.Register("checkout-sessions", func(ctx context.Context) error {
		service.CloseAll()
		return nil
	})

	// Metrics and health
	healthChecker := observability.NewHealthChecker(dbPool, service)
	metricsServer := observability.StartMetricsServer(strconv.Itoa(cfg.Server.MetricsPort), healthChecker)
	shutdownMgr.Register("metrics-server", func(ctx context.Context) error {
		return observability.ShutdownMetricsServer(metricsServer)
	})

	// HTTP API
	handler := checkoutHandler.NewSessionHandler(service, hub, logger)
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))
	secHeaders := internalmiddleware.NewSecurityHeaders(cfg.Logger.Development, cfg.Checkout.AllowedOrigins)
	router.Use(secHeaders.Middleware)
	router.Mount("/api/v1/checkout", handler.Routes())
	router.Mount("/channel", hub.Routes())

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  90 * time.Second,
	}
	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		return server.Shutdown(ctx)
	})

	go func() {
		logger.Info("http server listening", ports.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("http server failed", zap.Error(err))
		}
	}()

	shutdownMgr.WaitForShutdown()
}

func buildVerifier(cfg *config.Config) ports.OriginVerifier {
	for _, o := range cfg.Checkout.AllowedOrigins {
		if o == "*" {
			return channel.AllowAnyOrigin()
		}
	}
	return channel.AllowedOrigins(cfg.Checkout.AllowedOrigins...)
}

func initDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = cfg.Database.MaxConns

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
