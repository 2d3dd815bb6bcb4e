package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"ozo-backend/cmd/api/di"
	ginrouter "ozo-backend/internal/adapter/gin/router"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(c *di.Container, ginAddr string, l *zap.Logger) *http.Server {
	router := ginrouter.SetupRouter(
		ginrouter.Handlers{
			Auth:   c.AuthHandler,
			User:   c.UserHandler,
			Item:   c.ItemHandler,
			Health: c.HealthHandler,
		},
		c.AuthUC,
		ginrouter.Options{
			AllowOrigins: c.Config.App.AllowOrigins,
			Release:      c.Config.IsProduction(),
		},
		l,
	)

	l.Info("Gin REST API configured", zap.String("address", ginAddr))
	l.Info("Swagger UI available at", zap.String("url", "http://localhost"+ginAddr+"/swagger/index.html"))

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
