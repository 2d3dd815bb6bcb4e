package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ozo-backend/internal/domain/user"
	pkgerrors "ozo-backend/pkg/errors"
	"ozo-backend/pkg/logger"
	"ozo-backend/pkg/security"
)

const (
	msgEmailRegistered = "Email already registered"
	msgUsernameTaken   = "Username already taken"
	msgUserNotFound    = "User not found"

	pgUniqueViolation = "23505"
)

// UserRepo implements user.Repository with GORM on postgres or sqlite.
type UserRepo struct {
	db     *gorm.DB                // GORM database connection
	hasher security.PasswordHasher // Rehashes passwords supplied to Update
	log    *zap.Logger             // Structured logger for database operations
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, hasher security.PasswordHasher, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, hasher: hasher, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID             int64   `gorm:"primaryKey;autoIncrement"`
	Username       string  `gorm:"not null;uniqueIndex"`
	Email          string  `gorm:"not null;uniqueIndex"`
	FullName       *string `gorm:"column:full_name"`
	HashedPassword string  `gorm:"column:hashed_password;not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

func (m *UserSchema) toDomain() *user.User {
	return &user.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		FullName:     m.FullName,
		PasswordHash: m.HashedPassword,
	}
}

// Migrate creates or updates the users table and its unique indexes.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

// Create inserts a new user. The uniqueness check and the insert share a
// transaction; a concurrent duplicate that slips past the check is rejected
// by the unique index and reported as the same ConflictError.
func (r *UserRepo) Create(ctx context.Context, in user.NewUser) (*user.User, error) {
	if in.PasswordHash == "" {
		return nil, errors.New("password hash must not be empty")
	}

	model := UserSchema{
		Username:       in.Username,
		Email:          in.Email,
		FullName:       in.FullName,
		HashedPassword: in.PasswordHash,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkUnique(tx, 0, &in.Username, &in.Email); err != nil {
			return err
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		if conflict := asConflict(err); conflict != nil {
			logger.WithContext(ctx, r.log).Warn("user create conflict", zap.String("field", conflict.Field))
			return nil, conflict
		}
		logger.WithContext(ctx, r.log).Error("failed to create user in db", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.WithContext(ctx, r.log).Info("user created in db", zap.Int64("id", model.ID))
	return model.toDomain(), nil
}

// GetByID retrieves a user by their unique ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithContext(ctx, r.log).Debug("user not found", zap.Int64("id", id))
			return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
		}
		logger.WithContext(ctx, r.log).Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return model.toDomain(), nil
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithContext(ctx, r.log).Debug("user not found by email")
			return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
		}
		logger.WithContext(ctx, r.log).Error("failed to get user by email from db", zap.Error(err))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return model.toDomain(), nil
}

// Update applies the non-nil fields of in and clears full_name when asked.
// A supplied password is hashed before it is written.
func (r *UserRepo) Update(ctx context.Context, id int64, in user.UserUpdate) (*user.User, error) {
	var model UserSchema

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, id).Error; err != nil {
			return err
		}
		if err := checkUnique(tx, id, in.Username, in.Email); err != nil {
			return err
		}

		updates := map[string]any{}
		if in.Username != nil {
			updates["username"] = *in.Username
			model.Username = *in.Username
		}
		if in.Email != nil {
			updates["email"] = *in.Email
			model.Email = *in.Email
		}
		switch {
		case in.ClearFullName:
			updates["full_name"] = nil
			model.FullName = nil
		case in.FullName != nil:
			updates["full_name"] = *in.FullName
			fullName := *in.FullName
			model.FullName = &fullName
		}
		if in.Password != nil {
			hash, err := r.hasher.Hash(*in.Password)
			if err != nil {
				return pkgerrors.NewValidationError("password", err.Error())
			}
			updates["hashed_password"] = hash
			model.HashedPassword = hash
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&UserSchema{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		var validationErr *pkgerrors.ValidationError
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
		case errors.As(err, &validationErr):
			return nil, validationErr
		}
		if conflict := asConflict(err); conflict != nil {
			logger.WithContext(ctx, r.log).Warn("user update conflict", zap.Int64("id", id), zap.String("field", conflict.Field))
			return nil, conflict
		}
		logger.WithContext(ctx, r.log).Error("failed to update user in db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logger.WithContext(ctx, r.log).Info("user updated in db", zap.Int64("id", id))
	return model.toDomain(), nil
}

// Delete removes a user and returns the deleted record.
func (r *UserRepo) Delete(ctx context.Context, id int64) (*user.User, error) {
	var model UserSchema

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&model, id).Error; err != nil {
			return err
		}
		return tx.Delete(&UserSchema{}, id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewNotFoundError("user", msgUserNotFound)
		}
		logger.WithContext(ctx, r.log).Error("failed to delete user in db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	logger.WithContext(ctx, r.log).Info("user deleted in db", zap.Int64("id", id))
	return model.toDomain(), nil
}

// checkUnique fails with a ConflictError when another row (id != excludeID)
// already holds email or username. Email is checked first.
func checkUnique(tx *gorm.DB, excludeID int64, username, email *string) error {
	if email != nil {
		taken, err := exists(tx, excludeID, "email", *email)
		if err != nil {
			return err
		}
		if taken {
			return pkgerrors.NewConflictError("email", msgEmailRegistered)
		}
	}
	if username != nil {
		taken, err := exists(tx, excludeID, "username", *username)
		if err != nil {
			return err
		}
		if taken {
			return pkgerrors.NewConflictError("username", msgUsernameTaken)
		}
	}
	return nil
}

func exists(tx *gorm.DB, excludeID int64, column, value string) (bool, error) {
	var count int64
	err := tx.Model(&UserSchema{}).
		Where(column+" = ? AND id <> ?", value, excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check %s uniqueness: %w", column, err)
	}
	return count > 0, nil
}

// asConflict returns err as a ConflictError if it already is one or if it is
// a unique index violation reported by postgres or sqlite.
func asConflict(err error) *pkgerrors.ConflictError {
	var conflict *pkgerrors.ConflictError
	if errors.As(err, &conflict) {
		return conflict
	}

	hint := ""
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		hint = pgErr.ConstraintName + " " + pgErr.Detail
	case errors.Is(err, gorm.ErrDuplicatedKey), strings.Contains(err.Error(), "UNIQUE constraint failed"):
		hint = err.Error()
	default:
		return nil
	}

	if strings.Contains(strings.ToLower(hint), "username") {
		return pkgerrors.NewConflictError("username", msgUsernameTaken)
	}
	return pkgerrors.NewConflictError("email", msgEmailRegistered)
}
