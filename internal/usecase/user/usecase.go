package user

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "ozo-backend/internal/domain/user"
	"ozo-backend/internal/usecase"
	pkgerrors "ozo-backend/pkg/errors"
	"ozo-backend/pkg/logger"
)

const msgNotOwner = "Not enough permissions"

// Usecase implements the business logic for user management operations.
// It provides a clean separation between the transport layer and data layer.
type Usecase struct {
	repo     domain.Repository   // Repository for data access
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
}

// New creates a new instance of Usecase with the provided repository and logger.
func New(r domain.Repository, log *zap.Logger) *Usecase {
	return &Usecase{repo: r, log: log, validate: usecase.NewValidator()}
}

// GetUser retrieves a user by ID.
func (uc *Usecase) GetUser(ctx context.Context, in GetUserRequest) (*User, error) {
	log := logger.WithContext(ctx, uc.log)

	if in.ID <= 0 {
		log.Warn("get user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, pkgerrors.NewNotFoundError("user", "User not found")
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, uc.wrap(log, "failed to get user", in.ID, err)
	}
	return toDTO(u), nil
}

// GetUserByEmail retrieves the user registered under email.
func (uc *Usecase) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	u, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, uc.wrap(logger.WithContext(ctx, uc.log), "failed to get user by email", 0, err)
	}
	return toDTO(u), nil
}

// UpdateUser applies a partial update on behalf of Actor, who must own the account.
func (uc *Usecase) UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("updating user", zap.Int64("id", in.ID))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, usecase.FormatValidationError(err)
	}

	if err := uc.authorize(ctx, in.ID, in.Actor); err != nil {
		return nil, err
	}

	u, err := uc.repo.Update(ctx, in.ID, domain.UserUpdate{
		Username: in.Username,
		Email:    in.Email,
		FullName: in.FullName,
		Password: in.Password,

		ClearFullName: in.ClearFullName,
	})
	if err != nil {
		return nil, uc.wrap(log, "failed to update user", in.ID, err)
	}

	log.Info("user updated", zap.Int64("id", in.ID))
	return toDTO(u), nil
}

// DeleteUser removes the account on behalf of Actor, who must own it,
// and returns the deleted record.
func (uc *Usecase) DeleteUser(ctx context.Context, in DeleteUserRequest) (*User, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("deleting user", zap.Int64("id", in.ID))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, usecase.FormatValidationError(err)
	}

	if err := uc.authorize(ctx, in.ID, in.Actor); err != nil {
		return nil, err
	}

	u, err := uc.repo.Delete(ctx, in.ID)
	if err != nil {
		return nil, uc.wrap(log, "failed to delete user", in.ID, err)
	}

	log.Info("user deleted", zap.Int64("id", in.ID))
	return toDTO(u), nil
}

// authorize loads the target so a missing user reports 404 before ownership is judged.
// Ownership is decided on the actor's row read by email, which is never cached, so a
// stale cached target cannot keep an old email authorized.
func (uc *Usecase) authorize(ctx context.Context, id int64, actor string) error {
	log := logger.WithContext(ctx, uc.log)

	if _, err := uc.repo.GetByID(ctx, id); err != nil {
		return uc.wrap(log, "failed to load user", id, err)
	}

	caller, err := uc.repo.GetByEmail(ctx, actor)
	switch {
	case pkgerrors.IsNotFound(err):
		log.Warn("caller no longer exists", zap.Int64("id", id))
		return pkgerrors.NewForbiddenError(msgNotOwner)
	case err != nil:
		return uc.wrap(log, "failed to load caller", id, err)
	case caller.ID != id:
		log.Warn("caller does not own user", zap.Int64("id", id))
		return pkgerrors.NewForbiddenError(msgNotOwner)
	}
	return nil
}

// wrap passes typed errors through and hides store failures behind an InternalError.
func (uc *Usecase) wrap(log *zap.Logger, msg string, id int64, err error) error {
	if pkgerrors.StatusOf(err) < 500 {
		log.Info(msg, zap.Int64("id", id), zap.Error(err))
		return err
	}
	log.Error(msg, zap.Int64("id", id), zap.Error(err))
	return pkgerrors.NewInternalError(msg, err)
}
