package cached

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"ozo-backend/internal/adapter/cache"
	domain "ozo-backend/internal/domain/user"
	"ozo-backend/pkg/logger"
)

// CachedUserRepository implements user.Repository with caching support.
// It wraps a persistent repository (DB) and a cache implementation.
type CachedUserRepository struct {
	dbRepo domain.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

// NewCachedUserRepository creates a new instance of CachedUserRepository.
func NewCachedUserRepository(dbRepo domain.Repository, cache cache.UserCache, log *zap.Logger) *CachedUserRepository {
	return &CachedUserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Create delegates to the DB repository.
func (r *CachedUserRepository) Create(ctx context.Context, in domain.NewUser) (*domain.User, error) {
	return r.dbRepo.Create(ctx, in)
}

// GetByID retrieves a user by ID using Cache-Aside pattern.
func (r *CachedUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	log := logger.WithContext(ctx, r.log)

	if r.cache != nil {
		cachedUser, err := r.cache.Get(ctx, id)
		if err != nil {
			log.Warn("cache get error, falling back to database", zap.Int64("id", id), zap.Error(err))
		} else if cachedUser != nil {
			return cachedUser, nil
		}
	}

	// Concurrent misses for the same id share one database read
	result, err, _ := r.group.Do(cache.Key(id), func() (any, error) {
		u, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, u); err != nil {
				log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
			}
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers may mutate what they get back
	shared := *result.(*domain.User)
	return &shared, nil
}

// GetByEmail always reads the DB repository. Ownership checks depend on it
// never returning a cached row.
func (r *CachedUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.dbRepo.GetByEmail(ctx, email)
}

// Update updates the user in DB and invalidates the cache.
func (r *CachedUserRepository) Update(ctx context.Context, id int64, in domain.UserUpdate) (*domain.User, error) {
	u, err := r.dbRepo.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, id)
	return u, nil
}

// Delete deletes the user from DB and invalidates the cache.
func (r *CachedUserRepository) Delete(ctx context.Context, id int64) (*domain.User, error) {
	u, err := r.dbRepo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, id)
	return u, nil
}

func (r *CachedUserRepository) invalidate(ctx context.Context, id int64) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, id); err != nil {
		logger.WithContext(ctx, r.log).Warn("failed to invalidate cached user", zap.Int64("id", id), zap.Error(err))
	}
}
