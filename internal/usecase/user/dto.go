package user

import domain "ozo-backend/internal/domain/user"

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	ID int64
}

// UpdateUserRequest represents a partial update. Nil fields are left unchanged.
// Actor is the token subject (email) of the caller. ClearFullName sets
// full_name to null and takes precedence over FullName.
type UpdateUserRequest struct {
	ID            int64   `validate:"gt=0"`
	Actor         string  `validate:"required"`
	Username      *string `validate:"omitnil,min=1,max=50"`
	Email         *string `validate:"omitnil,email,max=255"`
	FullName      *string `validate:"omitnil,max=100"`
	Password      *string `validate:"omitnil,min=1,max=72"`
	ClearFullName bool
}

// DeleteUserRequest represents the request payload for deleting a user.
type DeleteUserRequest struct {
	ID    int64  `validate:"gt=0"`
	Actor string `validate:"required"`
}

// User represents a user DTO (Data Transfer Object) for API responses.
// It never carries the password hash.
type User struct {
	ID       int64
	Username string
	Email    string
	FullName *string
}

func toDTO(u *domain.User) *User {
	return &User{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
	}
}
