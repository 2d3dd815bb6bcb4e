// Command initdb creates the users table and seeds the default admin account.
package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"ozo-backend/cmd/api/infrastructure"
	"ozo-backend/internal/adapter/db/sqlstore"
	"ozo-backend/internal/config"
	"ozo-backend/pkg/logger"
	"ozo-backend/pkg/security"
)

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatalf("initdb failed: %v", err)
	}
}

func run(ctx context.Context) error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "."
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	l, err := logger.NewWithConfig(logger.Config{
		Level:          cfg.Logger.Level,
		Format:         cfg.Logger.Format,
		OutputPath:     cfg.Logger.OutputPath,
		ServiceName:    cfg.Logger.ServiceName,
		ServiceVersion: cfg.Logger.ServiceVersion,
		Environment:    cfg.Env,
	})
	if err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	// initdb always migrates, regardless of DB_AUTO_MIGRATE
	cfg.DB.AutoMigrate = true
	db, err := infrastructure.NewDatabase(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer func() { _ = infrastructure.CloseDatabase(db) }()

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	repo := sqlstore.NewUserRepo(db, hasher, l)

	created, err := sqlstore.Seed(ctx, repo, hasher, sqlstore.DefaultAdmin, l)
	if err != nil {
		return err
	}

	l.Info("database initialized", zap.Bool("admin_created", created))
	return nil
}
