package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	_ "github.com/tair/stock-reservations/docs"
	"github.com/tair/stock-reservations/internal/reservation"
	grpcDelivery "github.com/tair/stock-reservations/internal/reservation/delivery/grpc"
	httpDelivery "github.com/tair/stock-reservations/internal/reservation/delivery/http"
	"github.com/tair/stock-reservations/internal/reservation/domain"
	"github.com/tair/stock-reservations/internal/reservation/metrics"
	"github.com/tair/stock-reservations/internal/reservation/repository"
	"github.com/tair/stock-reservations/internal/reservation/sweeper"
	"github.com/tair/stock-reservations/kafka"
	"github.com/tair/stock-reservations/pkg/clock"
	"github.com/tair/stock-reservations/pkg/config"
	"github.com/tair/stock-reservations/pkg/database"
	"github.com/tair/stock-reservations/pkg/logger"
	"github.com/tair/stock-reservations/pkg/tracing"
)

const (
	serviceVersion  = "1.0.0"
	shutdownTimeout = 15 * time.Second
	healthInterval  = 5 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("reservation-service", true)
		logger.Logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	logger.Init(cfg.ServiceName, cfg.IsDevelopment())
	logger.SetLevel(cfg.LogLevel)

	logger.Logger.Info().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Str("log_level", cfg.LogLevel).
		Msg("Starting reservation service")

	// Initialize tracer
	tp, err := tracing.InitTracer(cfg.ServiceName, cfg.JaegerEndpoint, serviceVersion)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize tracer")
	}

	// Connect to database
	db, err := database.NewGormConnection(cfg.Database)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to get database instance")
	}
	defer sqlDB.Close()

	// Run migrations
	if err := repository.NewGormReservationRepository(db).AutoMigrate(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Logger.Info().Msg("Database initialized successfully")

	m := metrics.New(prometheus.DefaultRegisterer)
	clk := clock.NewSystem()

	var publisher domain.EventPublisher = domain.NopPublisher{}
	var kafkaPublisher *kafka.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err = kafka.NewPublisher(cfg.KafkaBrokers)
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to initialize Kafka publisher")
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		logger.Logger.Warn().Msg("KAFKA_BROKERS not set, reservation events are discarded")
	}

	// Initialize service with Wire DI
	svc, err := reservation.InitializeService(db, cfg.Reservation, publisher, clk, m)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("Failed to initialize service")
	}

	var lease sweeper.Lease = sweeper.NoopLease{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer rdb.Close()
		lease = sweeper.NewRedisLease(rdb, "")
		logger.Logger.Info().Str("redis", cfg.RedisAddr).Msg("Sweeper lease backed by Redis")
	}

	sw := sweeper.New(svc.Commands.SweepExpired, lease, m, sweeper.Config{
		Interval: cfg.Reservation.SweepInterval,
		Timeout:  cfg.Reservation.SweepTimeout,
		LeaseTTL: cfg.Reservation.SweepLeaseTTL,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           newRouter(svc, sqlDB, m, cfg),
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		logger.Logger.Info().
			Str("port", cfg.HTTPPort).
			Str("metrics_endpoint", "/metrics").
			Msg("HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	hs := grpcDelivery.NewHealthServer(sqlDB)
	grpcServer := grpcDelivery.NewServer(hs, m)
	g.Go(func() error {
		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return err
		}
		logger.Logger.Info().Str("port", cfg.GRPCPort).Msg("gRPC server started")
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		return hs.Run(ctx, healthInterval)
	})

	g.Go(func() error {
		return sw.Run(ctx)
	})

	if len(cfg.KafkaBrokers) > 0 {
		consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, []string{kafka.TopicCheckoutOutcomes})
		if err != nil {
			logger.Logger.Fatal().Err(err).Msg("Failed to initialize Kafka consumer")
		}
		svc.Checkout.Register(consumer)
		g.Go(func() error {
			defer consumer.Close()
			return consumer.Run(ctx)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		logger.Logger.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		grpcServer.GracefulStop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Logger.Error().Err(err).Msg("HTTP server shutdown failed")
		}
		if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
			logger.Logger.Error().Err(err).Msg("Tracer shutdown failed")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Logger.Error().Err(err).Msg("Reservation service stopped with error")
		os.Exit(1)
	}
	logger.Logger.Info().Msg("Reservation service stopped")
}

func newRouter(svc *reservation.Service, db httpDelivery.Pinger, m *metrics.Metrics, cfg config.Config) http.Handler {
	router := mux.NewRouter()

	mwConfig := httpDelivery.DefaultMiddlewareConfig(m, cfg.RequestTimeout)
	httpDelivery.RegisterMiddlewares(router, mwConfig)

	// Register routes
	svc.HTTP.RegisterRoutes(router)

	// Health check endpoint
	svc.HTTP.RegisterHealthCheck(router, db)

	// Swagger documentation
	httpDelivery.RegisterSwaggerDocs(router)

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	if mwConfig.EnableCORS {
		return httpDelivery.SetupCORS(mwConfig)(router)
	}
	return router
}
