package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"ozo-backend/pkg/logger"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer implements grpc.health.v1.Health on top of a store ping.
type HealthServer struct {
	healthpb.UnimplementedHealthServer
	db      Pinger
	service string
	log     *zap.Logger
}

// NewHealthServer creates a new gRPC health server. service is the name
// accepted in addition to the empty (overall) service name.
func NewHealthServer(db Pinger, service string, log *zap.Logger) *HealthServer {
	return &HealthServer{db: db, service: service, log: log}
}

// Check handles grpc.health.v1.Health/Check
func (s *HealthServer) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if name := req.GetService(); name != "" && name != s.service {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", name)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.Ping(pingCtx); err != nil {
		logger.WithContext(ctx, s.log).Warn("health check failed", zap.Error(err))
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
