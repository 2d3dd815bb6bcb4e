package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "ozo-backend/internal/domain/user"
	"ozo-backend/internal/usecase/auth"
	pkgerrors "ozo-backend/pkg/errors"
)

// MockAuthUsecase is a mock implementation of auth.Service
type MockAuthUsecase struct {
	mock.Mock
}

func (m *MockAuthUsecase) Signup(ctx context.Context, in auth.SignupRequest) (*auth.SignupResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.SignupResponse), args.Error(1)
}

func (m *MockAuthUsecase) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthUsecase) Login(ctx context.Context, in auth.LoginRequest) (*auth.LoginResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.LoginResponse), args.Error(1)
}

func (m *MockAuthUsecase) VerifyToken(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func setupAuthTest(t *testing.T) (*gin.Engine, *MockAuthUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockAuthUsecase)
	handler := NewAuthHandler(mockUsecase, zaptest.NewLogger(t))

	r := gin.New()
	r.POST("/auth/signup", handler.Signup)
	r.POST("/auth/login", handler.Login)
	return r, mockUsecase
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSignup(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupAuthTest(t)
		reqBody := SignupRequest{Username: "testuser", Email: "test@example.com", Password: "testpass"}

		mockUsecase.On("Signup", mock.Anything, auth.SignupRequest{
			Username: "testuser",
			Email:    "test@example.com",
			Password: "testpass",
		}).Return(&auth.SignupResponse{ID: 1, Username: "testuser", Email: "test@example.com"}, nil)

		w := postJSON(r, "/auth/signup", reqBody)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":1,"username":"testuser","email":"test@example.com","full_name":null}`, w.Body.String())
		mockUsecase.AssertExpectations(t)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		r, mockUsecase := setupAuthTest(t)

		mockUsecase.On("Signup", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewConflictError("email", "Email already registered"))

		w := postJSON(r, "/auth/signup", SignupRequest{Username: "u", Email: "test@example.com", Password: "p"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, ErrorResponse{Error: "conflict", Message: "Email already registered"}, decodeError(t, w))
	})

	t.Run("ValidationError", func(t *testing.T) {
		r, mockUsecase := setupAuthTest(t)

		mockUsecase.On("Signup", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.NewValidationError("email", "Email must be a valid email"))

		w := postJSON(r, "/auth/signup", SignupRequest{Username: "u", Email: "nope", Password: "p"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation_error", decodeError(t, w).Error)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		r, mockUsecase := setupAuthTest(t)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUsecase.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, mockUsecase := setupAuthTest(t)

		mockUsecase.On("Login", mock.Anything, auth.LoginRequest{Email: "test@example.com", Password: "testpass"}).
			Return(&auth.LoginResponse{AccessToken: "tok", TokenType: "bearer"}, nil)

		w := postJSON(r, "/auth/login", LoginRequest{Email: "test@example.com", Password: "testpass"})

		assert.Equal(t, http.StatusOK, w.Code)
		var resp TokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, TokenResponse{AccessToken: "tok", TokenType: "bearer"}, resp)
	})

	t.Run("InvalidCredentials", func(t *testing.T) {
		r, mockUsecase := setupAuthTest(t)

		mockUsecase.On("Login", mock.Anything, mock.Anything).Return(nil, pkgerrors.NewAuthError(""))

		w := postJSON(r, "/auth/login", LoginRequest{Email: "test@example.com", Password: "wrong"})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		assert.Equal(t, ErrorResponse{Error: "invalid_credentials", Message: "Invalid credentials"}, decodeError(t, w))
	})
}
