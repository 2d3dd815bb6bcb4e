package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("email", "must be a valid email"), http.StatusBadRequest},
		{"conflict", NewConflictError("email", "Email already registered"), http.StatusBadRequest},
		{"auth", NewAuthError(""), http.StatusUnauthorized},
		{"unauthorized", NewUnauthorizedError(""), http.StatusUnauthorized},
		{"forbidden", NewForbiddenError(""), http.StatusForbidden},
		{"not found", NewNotFoundError("user", "User not found"), http.StatusNotFound},
		{"internal", NewInternalError("boom", errors.New("db down")), http.StatusInternalServerError},
		{"wrapped conflict", fmt.Errorf("create user: %w", NewConflictError("username", "")), http.StatusBadRequest},
		{"untyped", errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "Invalid credentials", NewAuthError("").Error())
	assert.Equal(t, "user not found", NewNotFoundError("user", "").Error())
	assert.Equal(t, "username already exists", NewConflictError("username", "").Error())
	assert.Equal(t, "validation failed: email - bad", NewValidationError("email", "bad").Error())
	assert.Equal(t, "validation failed: bad", NewValidationError("", "bad").Error())
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewInternalError("failed to get user", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("wrap: %w", NewNotFoundError("user", ""))))
	assert.False(t, IsNotFound(errors.New("x")))
	assert.True(t, IsConflict(fmt.Errorf("wrap: %w", NewConflictError("email", ""))))
	assert.False(t, IsConflict(NewNotFoundError("user", "")))
}
