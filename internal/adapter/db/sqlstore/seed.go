package sqlstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"ozo-backend/internal/domain/user"
	pkgerrors "ozo-backend/pkg/errors"
	"ozo-backend/pkg/security"
)

// SeedUser describes an account created by initdb.
type SeedUser struct {
	Username string
	Email    string
	Password string
	FullName string
}

// DefaultAdmin is the account seeded into a fresh database.
var DefaultAdmin = SeedUser{
	Username: "admin",
	Email:    "admin@example.com",
	Password: "adminpass",
	FullName: "Admin User",
}

// Seed inserts s unless a user with the same email exists. It reports whether
// a row was created, so running it twice is harmless.
func Seed(ctx context.Context, repo user.Repository, hasher security.PasswordHasher, s SeedUser, log *zap.Logger) (bool, error) {
	_, err := repo.GetByEmail(ctx, s.Email)
	switch {
	case err == nil:
		log.Info("seed user already present", zap.String("email", s.Email))
		return false, nil
	case !pkgerrors.IsNotFound(err):
		return false, fmt.Errorf("failed to look up seed user: %w", err)
	}

	digest, err := hasher.Hash(s.Password)
	if err != nil {
		return false, fmt.Errorf("failed to hash seed password: %w", err)
	}

	in := user.NewUser{Username: s.Username, Email: s.Email, PasswordHash: digest}
	if s.FullName != "" {
		in.FullName = &s.FullName
	}

	created, err := repo.Create(ctx, in)
	if err != nil {
		return false, fmt.Errorf("failed to create seed user: %w", err)
	}

	log.Info("seed user created", zap.Int64("id", created.ID), zap.String("username", created.Username))
	return true, nil
}
