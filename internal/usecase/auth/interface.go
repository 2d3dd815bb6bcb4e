package auth

import (
	"context"

	domain "ozo-backend/internal/domain/user"
)

// Service defines the interface for account authentication operations.
type Service interface {
	Signup(ctx context.Context, in SignupRequest) (*SignupResponse, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, in LoginRequest) (*LoginResponse, error)
	VerifyToken(ctx context.Context, token string) (string, error)
}

var _ Service = (*Usecase)(nil)
