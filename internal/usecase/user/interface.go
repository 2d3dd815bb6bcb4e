package user

import "context"

// Service defines the interface for user business logic operations.
type Service interface {
	GetUser(ctx context.Context, in GetUserRequest) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, in UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, in DeleteUserRequest) (*User, error)
}

var _ Service = (*Usecase)(nil)
