package server

import (
	"context"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"ozo-backend/cmd/api/di"
	"ozo-backend/internal/config"
)

func testContainer(t *testing.T, grpcPort string) (*config.Config, *di.Container) {
	t.Helper()
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	cfg.DB.URL = "sqlite:///" + filepath.Join(t.TempDir(), "ozo.db")
	cfg.Auth.BcryptCost = 4
	cfg.App.HTTPPort = "0"
	cfg.App.GRPCPort = grpcPort

	c, err := di.NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return cfg, c
}

func TestNew(t *testing.T) {
	t.Run("http only", func(t *testing.T) {
		cfg, c := testContainer(t, "")
		s := New(cfg, zaptest.NewLogger(t), c)

		assert.NotNil(t, s.Gin)
		assert.Nil(t, s.GRPC)
		assert.Equal(t, ":0", s.Gin.Addr)
	})

	t.Run("with grpc", func(t *testing.T) {
		cfg, c := testContainer(t, "0")
		s := New(cfg, zaptest.NewLogger(t), c)

		assert.NotNil(t, s.GRPC)
		assert.Contains(t, s.GRPC.GetServiceInfo(), "grpc.health.v1.Health")
	})
}

func TestStart_ReturnsNilOnShutdown(t *testing.T) {
	cfg, c := testContainer(t, "")
	s := New(cfg, zaptest.NewLogger(t), c)

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	// Shutdown may race ListenAndServe; retry until Start returns.
	require.Eventually(t, func() bool {
		_ = s.Gin.Shutdown(context.Background())
		select {
		case err := <-done:
			assert.NoError(t, err)
			return true
		default:
			return false
		}
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWithSignal(t *testing.T) {
	ctx, stop := WithSignal(context.Background(), zaptest.NewLogger(t))
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not canceled by SIGTERM")
	}
}
