package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"ozo-backend/cmd/api/di"
	"ozo-backend/internal/config"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	Gin    *http.Server
	GRPC   *grpc.Server // nil when GRPC_PORT is empty
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	s := &Server{
		Config: cfg,
		Logger: l,
	}
	s.Gin = SetupGinServer(c, s.httpAddress(), l)
	if cfg.App.GRPCPort != "" {
		s.GRPC = SetupGRPC(c.Pinger, cfg.Logger.ServiceName, l)
	}
	return s
}

// Start starts the HTTP server and, when configured, the gRPC server.
// It blocks until one of them stops and returns nil if that stop was a shutdown.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 2)

	if s.GRPC != nil {
		lis, err := (&net.ListenConfig{}).Listen(ctx, "tcp", s.grpcAddress())
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", s.grpcAddress(), err)
		}
		go func() {
			s.Logger.Info("gRPC server running", zap.String("address", s.grpcAddress()))
			if err := s.GRPC.Serve(lis); err != nil {
				errCh <- fmt.Errorf("failed to start gRPC server: %w", err)
				return
			}
			errCh <- nil
		}()
	}

	go func() {
		s.Logger.Info("REST API running", zap.String("address", s.httpAddress()))
		if err := s.Gin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
		errCh <- nil
	}()

	return <-errCh
}

// grpcAddress returns the gRPC server address
func (s *Server) grpcAddress() string {
	return ":" + s.Config.App.GRPCPort
}

// httpAddress returns the HTTP server address
func (s *Server) httpAddress() string {
	return ":" + s.Config.App.HTTPPort
}
