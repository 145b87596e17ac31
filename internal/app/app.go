package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JossueJativa/websocket/internal/app/migrations"
	"github.com/JossueJativa/websocket/internal/config"
	"github.com/JossueJativa/websocket/internal/event"
	handler "github.com/JossueJativa/websocket/internal/handler/http"
	wshandler "github.com/JossueJativa/websocket/internal/handler/ws"
	"github.com/JossueJativa/websocket/internal/repository/postgres"
	"github.com/JossueJativa/websocket/internal/room"
	"github.com/JossueJativa/websocket/internal/service"
	"github.com/JossueJativa/websocket/pkg/database"
	"github.com/JossueJativa/websocket/pkg/health"
	pkgkafka "github.com/JossueJativa/websocket/pkg/kafka"
	"github.com/JossueJativa/websocket/pkg/middleware"
)

// App wires together all dependencies and runs the desk order service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pgCfg := database.PostgresConfig{
		Host:            cfg.PostgresHost,
		Port:            cfg.PostgresPort,
		User:            cfg.PostgresUser,
		Password:        cfg.PostgresPass,
		DBName:          cfg.PostgresDB,
		SSLMode:         cfg.PostgresSSL,
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	database.RegisterPoolMetrics(pool, "deskorder")

	// Kafka producer. Optional: without brokers, domain events are skipped.
	var kafkaProducer *pkgkafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		kafkaProducer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("kafka brokers not configured, domain events disabled")
	}

	// Build the dependency graph.
	hub := room.NewHub(logger)
	repo := postgres.NewOrderDetailRepository(pool)
	eventProducer := event.NewProducer(kafkaProducer, logger)
	orderService := service.NewOrderService(repo, wshandler.NewHubBroadcaster(hub, logger), eventProducer, logger)
	wsHandler := wshandler.NewHandler(hub, orderService, logger, cfg.AllowedOrigins)

	// Health checks. Kafka is non-critical: the service keeps serving desks
	// when the broker is down, it only stops emitting domain events.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if kafkaProducer != nil {
		healthHandler.RegisterNonCritical("kafka", kafkaProducer.Ping)
	}

	// HTTP router.
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowedOrigins = cfg.AllowedOrigins
	corsConfig.Environment = cfg.Environment

	router := handler.NewRouter(wsHandler, handler.NewOrderHandler(orderService, logger), healthHandler, corsConfig, logger)

	httpServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: it would sever long-lived WebSocket connections.
		IdleTimeout: 60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		producer:   kafkaProducer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return nil
}
