package server

import (
	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	grpcadapter "ozo-backend/internal/adapter/grpc"
	"ozo-backend/pkg/logger"
)

// SetupGRPC creates and configures the gRPC server
func SetupGRPC(db grpcadapter.Pinger, service string, l *zap.Logger) *grpc.Server {
	// Create gRPC server with request ID and logging interceptors
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			logger.LoggingInterceptor(l),
		),
	)
	healthpb.RegisterHealthServer(grpcServer, grpcadapter.NewHealthServer(db, service, l))

	return grpcServer
}
