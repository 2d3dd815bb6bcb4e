package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ozo-backend/cmd/api/infrastructure"
	"ozo-backend/internal/adapter/cache"
	"ozo-backend/internal/adapter/db/sqlstore"
	ginhandler "ozo-backend/internal/adapter/gin/handler"
	"ozo-backend/internal/adapter/repository/cached"
	"ozo-backend/internal/config"
	domain "ozo-backend/internal/domain/user"
	"ozo-backend/internal/usecase/auth"
	"ozo-backend/internal/usecase/user"
	redisclient "ozo-backend/pkg/redis"
	"ozo-backend/pkg/security"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	Pinger      *sqlstore.Pinger
	RedisClient *redisclient.Client
	AuthUC      *auth.Usecase
	UserUC      *user.Usecase

	AuthHandler   *ginhandler.AuthHandler
	UserHandler   *ginhandler.UserHandler
	ItemHandler   *ginhandler.ItemHandler
	HealthHandler *ginhandler.HealthHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Built before any connection is opened so a failure here has nothing to release
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	issuer, err := security.NewJWTIssuer(security.TokenConfig{
		SecretKey: cfg.Auth.SecretKey,
		Algorithm: cfg.Auth.Algorithm,
		TTL:       cfg.Auth.AccessTokenTTL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}

	db, err := infrastructure.NewDatabase(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = infrastructure.CloseDatabase(db)
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// Initialize repository, read-through cached when Redis is enabled
	var repo domain.Repository = sqlstore.NewUserRepo(db, hasher, l)
	if rdb != nil {
		userCache := cache.NewRedisUserCache(rdb.Client, cfg.Redis.CacheTTL(), l)
		repo = cached.NewCachedUserRepository(repo, userCache, l)
	}

	authUC := auth.New(repo, hasher, issuer, l)
	userUC := user.New(repo, l)
	pinger := sqlstore.NewPinger(db)

	return &Container{
		Config:      cfg,
		Logger:      l,
		DB:          db,
		Pinger:      pinger,
		RedisClient: rdb,
		AuthUC:      authUC,
		UserUC:      userUC,

		AuthHandler:   ginhandler.NewAuthHandler(authUC, l),
		UserHandler:   ginhandler.NewUserHandler(userUC, l),
		ItemHandler:   ginhandler.NewItemHandler(l),
		HealthHandler: ginhandler.NewHealthHandler(pinger, cfg.Logger.ServiceName, l),
	}, nil
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
