package grpc

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/tair/stock-reservations/internal/reservation/metrics"
	"github.com/tair/stock-reservations/pkg/logger"
)

// ServiceName is the health-check service name orchestrators probe.
const ServiceName = "reservation.ReservationService"

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthServer publishes database reachability over the standard gRPC
// health protocol.
type HealthServer struct {
	health *health.Server
	db     Pinger
}

// NewHealthServer creates a health server that starts as NOT_SERVING until
// the first successful probe.
func NewHealthServer(db Pinger) *HealthServer {
	h := health.NewServer()
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	h.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{health: h, db: db}
}

// Probe pings the database once and updates the serving status.
func (s *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.PingContext(ctx); err != nil {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		logger.Warn(ctx).Err(err).Msg("gRPC health: database unreachable")
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
	return status
}

// Run probes every interval until ctx is done, then reports NOT_SERVING so
// load balancers drain the instance during shutdown.
func (s *HealthServer) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		probeCtx, cancel := context.WithTimeout(ctx, interval)
		s.Probe(probeCtx)
		cancel()

		select {
		case <-ctx.Done():
			s.health.Shutdown()
			return nil
		case <-ticker.C:
		}
	}
}

// NewServer builds the gRPC server with tracing, health and reflection.
func NewServer(hs *HealthServer, m *metrics.Metrics) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{RecoveryInterceptor, LoggingInterceptor}
	if m != nil {
		interceptors = append(interceptors, MetricsInterceptor(m))
	}
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(interceptors...),
	)
	healthpb.RegisterHealthServer(server, hs.health)
	reflection.Register(server)
	return server
}
